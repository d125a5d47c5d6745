// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package events

import (
	"time"

	"weathercore/pkg/eventbus"
)

var TopicWeather eventbus.Topic = "weather"

// WeatherUpdate is published on the bus whenever the proxy installs a new
// snapshot field set, so downstream consumers (the forwarder) don't have to
// poll Snapshot().
type WeatherUpdate struct {
	Time            time.Time
	TemperatureC    *float64
	SurfacePressure *float64
	Humidity        *float64
	Precipitation   *float64
	WindSpeedKMH    *float64
	WindDirectionDg *float64
	CloudCoverPct   *float64
	UVIndex         *float64
	WeatherCode     *int
	Summary         string
	Kind            string // "daily" or "current"
}
