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

// Package forwarder periodically relays the latest installed weather
// update to an external EmonCMS-compatible input/post sink, the outward
// middleware binding §1 treats as an opaque external collaborator.
package forwarder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"weathercore/internal/config"
	"weathercore/internal/events"
	"weathercore/pkg/eventbus"
	"weathercore/pkg/logger"
)

type Forwarder struct {
	addr     string
	apiKey   string
	node     string
	interval time.Duration
	bus      *eventbus.Bus
	log      *logger.Logger

	mu   sync.Mutex
	last *events.WeatherUpdate
}

// New builds a Forwarder from ForwarderConfig. An empty Addr disables
// posting; flush() then becomes a no-op rather than a failing no-recipient
// request.
func New(appConfig *config.Config) *Forwarder {
	interval := time.Duration(appConfig.Forwarder.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Forwarder{
		addr:     appConfig.Forwarder.Addr,
		apiKey:   appConfig.Forwarder.APIKey,
		node:     appConfig.Forwarder.Node,
		interval: interval,
		bus:      appConfig.EventBus,
		log:      logger.New("Forwarder"),
	}
}

// Run implements service.Runnable: it subscribes to the weather topic to
// keep the most recent update and flushes it to the sink on a ticker,
// mirroring the logging collaborator's poll-then-post shape.
func (f *Forwarder) Run(ctx context.Context) {
	f.log.Info("Running...")
	defer f.log.Info("Stopped.")

	ch, unsub := f.bus.Subscribe(ctx, events.TopicWeather, true)
	defer unsub()

	tick := time.NewTicker(f.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			update, ok := ev.(events.WeatherUpdate)
			if !ok {
				continue
			}
			f.mu.Lock()
			f.last = &update
			f.mu.Unlock()
		case <-tick.C:
			f.flush()
		}
	}
}

func (f *Forwarder) flush() {
	if f.addr == "" {
		return
	}

	f.mu.Lock()
	update := f.last
	f.mu.Unlock()
	if update == nil {
		return
	}

	if err := f.post(f.node, toFields(update)); err != nil {
		f.log.Error("post: %v", err)
	}
}

func toFields(u *events.WeatherUpdate) map[string]float64 {
	out := make(map[string]float64)
	add := func(key string, v *float64) {
		if v != nil {
			out[key] = *v
		}
	}
	add("temperature_c", u.TemperatureC)
	add("surface_pressure", u.SurfacePressure)
	add("humidity", u.Humidity)
	add("precipitation", u.Precipitation)
	add("wind_speed_kmh", u.WindSpeedKMH)
	add("wind_direction_deg", u.WindDirectionDg)
	add("cloud_cover_pct", u.CloudCoverPct)
	add("uv_index", u.UVIndex)
	if u.WeatherCode != nil {
		out["weather_code"] = float64(*u.WeatherCode)
	}
	return out
}

func (f *Forwarder) post(node string, data map[string]float64) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	request := fmt.Sprintf("%s/input/post?node=%s&apikey=%s&fulljson=%s",
		f.addr, node, f.apiKey, string(bytes))

	resp, err := http.Get(request)
	if err != nil {
		return fmt.Errorf("http.Get: %w", err)
	}
	defer resp.Body.Close()
	return nil
}
