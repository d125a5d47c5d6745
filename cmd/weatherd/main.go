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

package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"

	"weathercore/internal/config"
	"weathercore/internal/forwarder"
	"weathercore/internal/scheduler"
	"weathercore/internal/weather"
	"weathercore/pkg/appctx"
	"weathercore/pkg/eventbus"
	"weathercore/pkg/logger"
	"weathercore/pkg/meteoclient"
	"weathercore/pkg/rootserv"
	"weathercore/pkg/service"
)

func main() {
	_ = godotenv.Load()

	rootdir := os.Getenv("PROJECT_ROOT")
	if rootdir == "" {
		rootdir = "."
	}

	logger.Init(filepath.Join(rootdir, "var/logs/weatherd.log"))

	appConf := config.LoadFile(filepath.Join(rootdir, "var/config/weatherd.yml"))
	appConf.EventBus = eventbus.New()
	appConf.DataDir = filepath.Join(rootdir, "var/cache")
	appConf.RootDir = rootdir

	ctx, ctxCancel := appctx.New()

	client := meteoclient.New(appConf.Weather.APIHost, appConf.Weather.APIPort)
	proxy := weather.New(client, appConf.EventBus, weather.Params{
		Location: weather.Location{
			Latitude:  appConf.Weather.Latitude,
			Longitude: appConf.Weather.Longitude,
		},
		ForecastDays:   appConf.Weather.ForecastDays,
		LockWaitBudget: time.Duration(appConf.Weather.LockWaitBudgetMS) * time.Millisecond,
		HeavyRainMM:    appConf.Weather.HeavyRainMM,
		HighUVIndex:    appConf.Weather.HighUVIndex,
	})

	driver := newFetchDriver(proxy, appConf)
	forwarderService := forwarder.New(appConf)

	server := rootserv.New(":80")
	server.Attach("/logger", "Logger", logger.WebService())
	server.Attach("/weather", "Weather Data", weather.NewHandler(proxy))

	exitCh := service.Start(ctx, ctxCancel, []service.Runnable{
		driver,
		forwarderService,
		server,
	})

	os.Exit(<-exitCh)
}

// fetchDriver is the "external driver loop" §2 describes: it calls the
// Scheduler's blocking wait, and on each fired event invokes the matching
// Proxy fetch, then reschedules itself.
type fetchDriver struct {
	sched   *scheduler.Scheduler
	proxy   *weather.Proxy
	running atomic.Bool

	dailyInterval   time.Duration
	currentInterval time.Duration
}

func newFetchDriver(proxy *weather.Proxy, appConf *config.Config) *fetchDriver {
	d := &fetchDriver{
		sched:           scheduler.New(),
		proxy:           proxy,
		dailyInterval:   time.Duration(appConf.Weather.DailyPollIntervalSeconds) * time.Second,
		currentInterval: time.Duration(appConf.Weather.CurrentPollIntervalSeconds) * time.Second,
	}
	d.running.Store(true)
	return d
}

func (d *fetchDriver) Run(ctx context.Context) {
	now := time.Now()
	d.sched.Add(scheduler.ScheduledEvent{When: now, Trigger: func() { d.runDaily(ctx) }})
	d.sched.Add(scheduler.ScheduledEvent{When: now, Trigger: func() { d.runCurrent(ctx) }})

	go func() {
		<-ctx.Done()
		d.running.Store(false)
	}()

	for {
		ev, ok := d.sched.WaitNext(&d.running)
		if !ok {
			return
		}
		ev.Trigger()
	}
}

func (d *fetchDriver) runDaily(ctx context.Context) {
	d.proxy.FetchDaily(ctx)
	d.sched.Add(scheduler.ScheduledEvent{
		When:    time.Now().Add(d.dailyInterval),
		Trigger: func() { d.runDaily(ctx) },
	})
}

func (d *fetchDriver) runCurrent(ctx context.Context) {
	d.proxy.FetchCurrent(ctx)
	d.sched.Add(scheduler.ScheduledEvent{
		When:    time.Now().Add(d.currentInterval),
		Trigger: func() { d.runCurrent(ctx) },
	})
}
