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

// Package weather implements the §4.2 WeatherProxy: a cache that owns the
// most recent weather snapshot, drives fetches against the remote
// Open-Meteo-compatible server through a meteoclient.Client, skips
// redundant fetches via two watermarks, and exposes reader access under a
// bounded multiple-reader/single-writer discipline.
package weather

import "weathercore/internal/decode"

// Location is the fixed (latitude, longitude) pair a Proxy is constructed
// with.
type Location struct {
	Latitude  float64
	Longitude float64
}

// WeatherSnapshot is the all-optional cached record of §3. Every field may
// independently be absent, either because the remote returned null or
// because that field's fetch path has never installed it.
type WeatherSnapshot struct {
	Sunrise *decode.TimeOfDay
	Sunset  *decode.TimeOfDay

	TemperatureC        *float64
	SurfacePressureHPa  *float64
	RelativeHumidityPct *float64
	PrecipitationMM     *float64
	WindSpeedKMH        *float64
	WindDirectionDeg    *float64
	CloudCoverPct       *float64
	UVIndex             *float64
	WeatherCode         *int

	Summary string
}

// clone returns a deep-enough copy: the struct is already all-scalar or
// pointer-to-scalar, so copying the struct value and re-pointing its
// pointer fields at fresh storage is sufficient to sever aliasing with the
// cached snapshot.
func (s WeatherSnapshot) clone() WeatherSnapshot {
	out := s
	out.Sunrise = cloneTimeOfDay(s.Sunrise)
	out.Sunset = cloneTimeOfDay(s.Sunset)
	out.TemperatureC = cloneFloat(s.TemperatureC)
	out.SurfacePressureHPa = cloneFloat(s.SurfacePressureHPa)
	out.RelativeHumidityPct = cloneFloat(s.RelativeHumidityPct)
	out.PrecipitationMM = cloneFloat(s.PrecipitationMM)
	out.WindSpeedKMH = cloneFloat(s.WindSpeedKMH)
	out.WindDirectionDeg = cloneFloat(s.WindDirectionDeg)
	out.CloudCoverPct = cloneFloat(s.CloudCoverPct)
	out.UVIndex = cloneFloat(s.UVIndex)
	if s.WeatherCode != nil {
		v := *s.WeatherCode
		out.WeatherCode = &v
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimeOfDay(p *decode.TimeOfDay) *decode.TimeOfDay {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
