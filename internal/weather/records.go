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
	"fmt"

	"weathercore/internal/decode"
)

// dailyRecord is the §6 "Daily" response: a top-level daily object whose
// fields are parallel arrays indexed by day. Only index 0 ("today" per the
// server's timezone) is ever consulted, per the open question in §9.
type dailyRecord struct {
	ForecastDays int

	Date    decode.Date
	Sunrise *decode.TimeOfDay
	Sunset  *decode.TimeOfDay
}

// DecodeJSON implements decode.Decoder. obj is the whole response body
// (already JSON-object-shaped); the "daily" key nests the per-field arrays.
// ForecastDays must be set by the caller before this runs.
func (r *dailyRecord) DecodeJSON(obj map[string]any, path string) error {
	dailyPath := decode.FmtPath(path, "daily")
	daily, ok := obj["daily"].(map[string]any)
	if !ok {
		return decode.NewShapeError(dailyPath, fmt.Errorf("expected object, got %T", obj["daily"]))
	}

	timeArr, ok := daily["time"].([]any)
	if !ok {
		return decode.NewShapeError(decode.FmtPath(dailyPath, "time"), fmt.Errorf("expected array, got %T", daily["time"]))
	}
	if len(timeArr) == 0 {
		return decode.NewShapeError(decode.FmtPath(dailyPath, "time"), fmt.Errorf("empty series"))
	}

	validator := decode.ForecastDayValidator{Today: decode.Today(), Days: r.ForecastDays}
	date, err := decode.Element[decode.Date](timeArr, 0, decode.FmtPath(dailyPath, "time"), validator)
	if err != nil {
		return err
	}
	r.Date = date

	if sunriseArr, ok := daily["sunrise"].([]any); ok {
		sunrise, err := decode.OptionalElement[decode.TimeOfDay](sunriseArr, 0, decode.FmtPath(dailyPath, "sunrise"), decode.Any[decode.TimeOfDay]{})
		if err != nil {
			return err
		}
		r.Sunrise = sunrise
	}
	if sunsetArr, ok := daily["sunset"].([]any); ok {
		sunset, err := decode.OptionalElement[decode.TimeOfDay](sunsetArr, 0, decode.FmtPath(dailyPath, "sunset"), decode.Any[decode.TimeOfDay]{})
		if err != nil {
			return err
		}
		r.Sunset = sunset
	}
	return nil
}

// timecheckRecord is the minimal §6 "current timecheck" response: only the
// remote's current timestamp is consulted.
type timecheckRecord struct {
	Time decode.Timestamp
}

func (r *timecheckRecord) DecodeJSON(obj map[string]any, path string) error {
	current, ok := obj["current"].(map[string]any)
	if !ok {
		return decode.NewShapeError(decode.FmtPath(path, "current"), fmt.Errorf("expected object, got %T", obj["current"]))
	}
	ts, err := decode.Field[decode.Timestamp](current, "time", decode.FmtPath(path, "current"), decode.Any[decode.Timestamp]{})
	if err != nil {
		return err
	}
	r.Time = ts
	return nil
}

// extendedRecord is the §6 "current extended" response: every field may
// independently be JSON null.
type extendedRecord struct {
	Time            decode.Timestamp
	TemperatureC    *float64
	SurfacePressure *float64
	Humidity        *float64
	Precipitation   *float64
	WindSpeedKMH    *float64
	WindDirection   *float64
	CloudCoverPct   *float64
	UVIndex         *float64
	WeatherCode     *int
}

func (r *extendedRecord) DecodeJSON(obj map[string]any, path string) error {
	current, ok := obj["current"].(map[string]any)
	if !ok {
		return decode.NewShapeError(decode.FmtPath(path, "current"), fmt.Errorf("expected object, got %T", obj["current"]))
	}
	p := decode.FmtPath(path, "current")

	ts, err := decode.Field[decode.Timestamp](current, "time", p, decode.Any[decode.Timestamp]{})
	if err != nil {
		return err
	}
	r.Time = ts

	fields := []struct {
		key string
		dst **float64
	}{
		{"temperature_2m", &r.TemperatureC},
		{"surface_pressure", &r.SurfacePressure},
		{"relative_humidity_2m", &r.Humidity},
		{"precipitation", &r.Precipitation},
		{"windspeed_10m", &r.WindSpeedKMH},
		{"winddirection_10m", &r.WindDirection},
		{"cloudcover", &r.CloudCoverPct},
		{"uv_index", &r.UVIndex},
	}
	for _, f := range fields {
		v, err := decode.OptionalField[float64](current, f.key, p, decode.Any[float64]{})
		if err != nil {
			return err
		}
		*f.dst = v
	}

	code, err := decode.OptionalField[int](current, "weather_code", p, decode.Any[int]{})
	if err != nil {
		return err
	}
	r.WeatherCode = code
	return nil
}
