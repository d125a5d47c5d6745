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

package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"weathercore/internal/decode"
	"weathercore/internal/events"
	"weathercore/pkg/eventbus"
	"weathercore/pkg/logger"
	"weathercore/pkg/meteoclient"
)

// Params bundles the tunables a Proxy is constructed with, mirroring the §6
// configuration record (minus the address, which is already baked into the
// meteoclient.Client).
type Params struct {
	Location       Location
	ForecastDays   int
	LockWaitBudget time.Duration
	HeavyRainMM    float64
	HighUVIndex    float64
}

// Proxy is the §4.2 WeatherProxy. The zero value is not usable; construct
// with New.
type Proxy struct {
	client *meteoclient.Client
	bus    *eventbus.Bus
	params Params
	log    *logger.Logger

	mu          sync.RWMutex
	snapshot    WeatherSnapshot
	lastDay     *decode.Date
	lastWeather *decode.Timestamp
}

// New constructs a Proxy bound to client, publishing installs onto bus (bus
// may be nil, in which case installs are silently not broadcast).
func New(client *meteoclient.Client, bus *eventbus.Bus, params Params) *Proxy {
	if params.LockWaitBudget <= 0 {
		params.LockWaitBudget = 100 * time.Millisecond
	}
	if params.ForecastDays <= 0 {
		params.ForecastDays = 1
	}
	return &Proxy{
		client: client,
		bus:    bus,
		params: params,
		log:    logger.New("WeatherProxy"),
	}
}

// FetchDaily implements §4.2's fetch_daily. It returns true only when a new
// sunrise/sunset pair was installed.
func (p *Proxy) FetchDaily(ctx context.Context) bool {
	today := decode.Today()

	if last, ok := p.peekLastDay(); ok && !last.Before(today) {
		return false
	}

	body, err := p.client.Get(ctx, p.dailyURL())
	if err != nil {
		p.log.Error("fetch_daily: transport: %v", err)
		return false
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		p.log.Error("fetch_daily: parse: %v", err)
		return false
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		p.log.Error("fetch_daily: expected JSON object, got %T", raw)
		return false
	}

	rec, err := decode.DecodeObject(obj, "", func() *dailyRecord {
		return &dailyRecord{ForecastDays: p.params.ForecastDays}
	})
	if err != nil {
		p.log.Error("fetch_daily: %v", err)
		return false
	}
	if !rec.Date.Equal(today) {
		p.log.Debug("fetch_daily: remote date %s != today %s, no install", rec.Date, today)
		return false
	}

	if !p.tryWrite(func() {
		p.snapshot.Sunrise = rec.Sunrise
		p.snapshot.Sunset = rec.Sunset
		p.lastDay = &today
	}) {
		p.log.Error("fetch_daily: writer lock timed out")
		return false
	}

	p.publish(events.WeatherUpdate{
		Time: time.Now(),
		Kind: "daily",
	})
	return true
}

// FetchCurrent implements §4.2's fetch_current: a cheap timecheck GET gates
// the expensive extended GET.
func (p *Proxy) FetchCurrent(ctx context.Context) bool {
	body, err := p.client.Get(ctx, p.currentTimecheckURL())
	if err != nil {
		p.log.Error("fetch_current: timecheck transport: %v", err)
		return false
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		p.log.Error("fetch_current: timecheck parse: %v", err)
		return false
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		p.log.Error("fetch_current: expected JSON object, got %T", raw)
		return false
	}

	tc, err := decode.DecodeObject(obj, "", func() *timecheckRecord { return &timecheckRecord{} })
	if err != nil {
		p.log.Error("fetch_current: timecheck: %v", err)
		return false
	}

	if last, ok := p.peekLastWeather(); ok && !tc.Time.After(last) {
		return false
	}

	body, err = p.client.Get(ctx, p.currentExtendedURL())
	if err != nil {
		p.log.Error("fetch_current: extended transport: %v", err)
		return false
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		p.log.Error("fetch_current: extended parse: %v", err)
		return false
	}
	obj, ok = raw.(map[string]any)
	if !ok {
		p.log.Error("fetch_current: expected JSON object, got %T", raw)
		return false
	}

	rec, err := decode.DecodeObject(obj, "", func() *extendedRecord { return &extendedRecord{} })
	if err != nil {
		p.log.Error("fetch_current: extended: %v", err)
		return false
	}

	summary := buildSummary(rec, p.params.HeavyRainMM, p.params.HighUVIndex)
	ts := rec.Time

	if !p.tryWrite(func() {
		p.snapshot.TemperatureC = rec.TemperatureC
		p.snapshot.SurfacePressureHPa = rec.SurfacePressure
		p.snapshot.RelativeHumidityPct = rec.Humidity
		p.snapshot.PrecipitationMM = rec.Precipitation
		p.snapshot.WindSpeedKMH = rec.WindSpeedKMH
		p.snapshot.WindDirectionDeg = rec.WindDirection
		p.snapshot.CloudCoverPct = rec.CloudCoverPct
		p.snapshot.UVIndex = rec.UVIndex
		p.snapshot.WeatherCode = rec.WeatherCode
		p.snapshot.Summary = summary
		p.lastWeather = &ts
	}) {
		p.log.Error("fetch_current: writer lock timed out")
		return false
	}

	p.publish(events.WeatherUpdate{
		Time:            ts.Time,
		TemperatureC:    rec.TemperatureC,
		SurfacePressure: rec.SurfacePressure,
		Humidity:        rec.Humidity,
		Precipitation:   rec.Precipitation,
		WindSpeedKMH:    rec.WindSpeedKMH,
		WindDirectionDg: rec.WindDirection,
		CloudCoverPct:   rec.CloudCoverPct,
		UVIndex:         rec.UVIndex,
		WeatherCode:     rec.WeatherCode,
		Summary:         summary,
		Kind:            "current",
	})
	return true
}

// Snapshot implements §4.2's snapshot reader accessor: a bounded shared-lock
// acquisition followed by a deep copy.
func (p *Proxy) Snapshot() (WeatherSnapshot, bool) {
	if !tryRLockTimeout(&p.mu, p.params.LockWaitBudget) {
		return WeatherSnapshot{}, false
	}
	defer p.mu.RUnlock()
	return p.snapshot.clone(), true
}

func (p *Proxy) peekLastDay() (decode.Date, bool) {
	if !tryRLockTimeout(&p.mu, p.params.LockWaitBudget) {
		return decode.Date{}, false
	}
	defer p.mu.RUnlock()
	if p.lastDay == nil {
		return decode.Date{}, false
	}
	return *p.lastDay, true
}

func (p *Proxy) peekLastWeather() (decode.Timestamp, bool) {
	if !tryRLockTimeout(&p.mu, p.params.LockWaitBudget) {
		return decode.Timestamp{}, false
	}
	defer p.mu.RUnlock()
	if p.lastWeather == nil {
		return decode.Timestamp{}, false
	}
	return *p.lastWeather, true
}

// tryWrite runs install under a bounded writer-lock acquisition, per §4.2's
// "time-bounded try-acquire (~100ms)". It reports whether the lock was
// obtained (and install therefore ran).
func (p *Proxy) tryWrite(install func()) bool {
	if !tryLockTimeout(&p.mu, p.params.LockWaitBudget) {
		return false
	}
	defer p.mu.Unlock()
	install()
	return true
}

func (p *Proxy) publish(ev events.WeatherUpdate) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(events.TopicWeather, ev)
}

func (p *Proxy) dailyURL() string {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", p.params.Location.Latitude))
	q.Set("longitude", fmt.Sprintf("%g", p.params.Location.Longitude))
	q.Set("daily", "sunrise,sunset")
	q.Set("timezone", "auto")
	q.Set("forecast_days", fmt.Sprintf("%d", p.params.ForecastDays))
	return "/v1/forecast?" + q.Encode()
}

func (p *Proxy) currentTimecheckURL() string {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", p.params.Location.Latitude))
	q.Set("longitude", fmt.Sprintf("%g", p.params.Location.Longitude))
	q.Set("current", "temperature_2m")
	q.Set("timezone", "auto")
	return "/v1/forecast?" + q.Encode()
}

func (p *Proxy) currentExtendedURL() string {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", p.params.Location.Latitude))
	q.Set("longitude", fmt.Sprintf("%g", p.params.Location.Longitude))
	q.Set("current", "temperature_2m,surface_pressure,relative_humidity_2m,precipitation,windspeed_10m,winddirection_10m,cloudcover,uv_index,weather_code")
	q.Set("timezone", "auto")
	return "/v1/forecast?" + q.Encode()
}
