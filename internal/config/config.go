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

package config

import (
	"log"
	"os"

	"weathercore/pkg/eventbus"

	"gopkg.in/yaml.v3"
)

// WeatherConfig is the §6 configuration record: latitude/longitude pin the
// fixed Location the proxy fetches for, APIHost/APIPort address the remote
// Open-Meteo-compatible server, and LockWaitBudgetMS bounds every
// try-acquire the proxy performs (default 100ms).
type WeatherConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	APIHost string `yaml:"api_host"`
	APIPort uint16 `yaml:"api_port"`

	LockWaitBudgetMS int `yaml:"lock_wait_budget_ms"`

	DailyPollIntervalSeconds   int `yaml:"daily_poll_interval_seconds"`
	CurrentPollIntervalSeconds int `yaml:"current_poll_interval_seconds"`
	ForecastDays               int `yaml:"forecast_days"`

	// Thresholds used by the derived summary string (§4.2).
	HeavyRainMM float64 `yaml:"heavy_rain_mm"`
	HighUVIndex float64 `yaml:"high_uv_index"`
}

// ForwarderConfig configures the optional downstream snapshot forwarder.
type ForwarderConfig struct {
	Addr            string `yaml:"addr"`
	APIKey          string `yaml:"apikey"`
	Node            string `yaml:"node"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

type Config struct {
	Weather   WeatherConfig   `yaml:"weather"`
	Forwarder ForwarderConfig `yaml:"forwarder"`

	// not loaded from file, but added here to pass to all services
	// alongside config
	EventBus *eventbus.Bus `yaml:"-"`
	DataDir  string        `yaml:"-"`
	RootDir  string        `yaml:"-"`
}

func LoadFile(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("open config: %v", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		log.Fatalf("decode config: %v", err)
	}

	// apply defaults
	if c.Weather.LockWaitBudgetMS == 0 {
		c.Weather.LockWaitBudgetMS = 100
	}
	if c.Weather.DailyPollIntervalSeconds == 0 {
		c.Weather.DailyPollIntervalSeconds = 3600
	}
	if c.Weather.CurrentPollIntervalSeconds == 0 {
		c.Weather.CurrentPollIntervalSeconds = 300
	}
	if c.Weather.ForecastDays == 0 {
		c.Weather.ForecastDays = 1
	}
	if c.Weather.HeavyRainMM == 0 {
		c.Weather.HeavyRainMM = 7.5
	}
	if c.Weather.HighUVIndex == 0 {
		c.Weather.HighUVIndex = 8
	}
	if c.Forwarder.IntervalSeconds == 0 {
		c.Forwarder.IntervalSeconds = 60
	}

	return &c
}
