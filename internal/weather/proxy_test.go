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
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathercore/internal/decode"
	"weathercore/pkg/meteoclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *meteoclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return meteoclient.New(host, uint16(port))
}

func newTestProxy(t *testing.T, handler http.HandlerFunc) *Proxy {
	client := newTestClient(t, handler)
	return New(client, nil, Params{
		Location:       Location{Latitude: 45.4, Longitude: -75.7},
		ForecastDays:   1,
		LockWaitBudget: 100 * time.Millisecond,
		HeavyRainMM:    7.5,
		HighUVIndex:    8,
	})
}

// S3: a full current-extended install is observable via Snapshot().
func TestFetchCurrent_InstallsExtendedReading(t *testing.T) {
	today := decode.Today()
	timeStr := fmt.Sprintf("%sT13:00", today)

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("current") == "temperature_2m" {
			fmt.Fprintf(w, `{"current": {"time": "%s"}}`, timeStr)
			return
		}
		fmt.Fprintf(w, `{"current": {
			"time": "%s", "temperature_2m": 21.4, "surface_pressure": 1013.2,
			"relative_humidity_2m": 58, "precipitation": 0, "windspeed_10m": 12.3,
			"winddirection_10m": 210, "cloudcover": 40, "uv_index": 5, "weather_code": 3
		}}`, timeStr)
	}

	p := newTestProxy(t, handler)
	ok := p.FetchCurrent(context.Background())
	require.True(t, ok)

	snap, ok := p.Snapshot()
	require.True(t, ok)
	require.NotNil(t, snap.TemperatureC)
	assert.Equal(t, 21.4, *snap.TemperatureC)
	require.NotNil(t, snap.SurfacePressureHPa)
	assert.Equal(t, 1013.2, *snap.SurfacePressureHPa)
	require.NotNil(t, snap.RelativeHumidityPct)
	assert.Equal(t, 58.0, *snap.RelativeHumidityPct)
	require.NotNil(t, snap.WindSpeedKMH)
	assert.Equal(t, 12.3, *snap.WindSpeedKMH)
}

// S4: the same timecheck timestamp twice in a row skips the extended GET
// and returns false.
func TestFetchCurrent_SkipsWhenTimestampUnchanged(t *testing.T) {
	today := decode.Today()
	timeStr := fmt.Sprintf("%sT13:00", today)
	extendedCalls := 0

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("current") == "temperature_2m" {
			fmt.Fprintf(w, `{"current": {"time": "%s"}}`, timeStr)
			return
		}
		extendedCalls++
		fmt.Fprintf(w, `{"current": {"time": "%s", "temperature_2m": 20}}`, timeStr)
	}

	p := newTestProxy(t, handler)
	require.True(t, p.FetchCurrent(context.Background()))
	assert.Equal(t, 1, extendedCalls)

	ok := p.FetchCurrent(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 1, extendedCalls, "extended GET must not be repeated for an unchanged timestamp")
}

// S5: a daily response whose time[0] differs from today installs nothing.
func TestFetchDaily_WrongDateNoInstall(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"daily": {"time": ["2020-01-01"], "sunrise": ["2020-01-01T06:00"], "sunset": ["2020-01-01T20:00"]}}`)
	}

	p := newTestProxy(t, handler)
	ok := p.FetchDaily(context.Background())
	assert.False(t, ok)

	_, hasDay := p.peekLastDay()
	assert.False(t, hasDay)
}

func TestFetchDaily_TodayInstallsSunriseSunset(t *testing.T) {
	today := decode.Today()
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"daily": {"time": ["%s"], "sunrise": ["%sT06:00"], "sunset": ["%sT20:00"]}}`, today, today, today)
	}

	p := newTestProxy(t, handler)
	ok := p.FetchDaily(context.Background())
	require.True(t, ok)

	snap, ok := p.Snapshot()
	require.True(t, ok)
	require.NotNil(t, snap.Sunrise)
	assert.Equal(t, 6*3600, snap.Sunrise.SecondsInDay)
	require.NotNil(t, snap.Sunset)
	assert.Equal(t, 20*3600, snap.Sunset.SecondsInDay)

	// a second call the same day is a no-op (last_day unchanged).
	ok = p.FetchDaily(context.Background())
	assert.False(t, ok)
}

func TestFetchDaily_EmptySeriesNoInstall(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"daily": {"time": [], "sunrise": [], "sunset": []}}`)
	}
	p := newTestProxy(t, handler)
	assert.False(t, p.FetchDaily(context.Background()))
}

func TestSnapshot_EmptyBeforeAnyFetch(t *testing.T) {
	p := newTestProxy(t, func(w http.ResponseWriter, r *http.Request) {})
	snap, ok := p.Snapshot()
	require.True(t, ok)
	assert.Nil(t, snap.TemperatureC)
	assert.Nil(t, snap.Sunrise)
}

func TestBuildSummary_Thresholds(t *testing.T) {
	code := 3
	uv := 9.0
	rain := 10.0
	rec := &extendedRecord{WeatherCode: &code, UVIndex: &uv, Precipitation: &rain}
	summary := buildSummary(rec, 7.5, 8)
	assert.Contains(t, summary, "high UV")
	assert.Contains(t, summary, "heavy rain")
}
