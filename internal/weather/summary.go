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

import "fmt"

// wmoCodeText is a small interpretation of the WMO weather_code values the
// Open-Meteo current-extended response carries. It is not exhaustive; codes
// it doesn't recognize fall back to a numeric label.
var wmoCodeText = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	71: "slight snow",
	73: "moderate snow",
	75: "heavy snow",
	80: "rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	95: "thunderstorm",
	96: "thunderstorm with hail",
	99: "thunderstorm with heavy hail",
}

// buildSummary implements §4.2's "derived summary string": an
// interpretation of weather_code plus warnings when the reading crosses the
// configured UV or heavy-rain thresholds. The exact text is not pinned by
// any external contract (§9 open question).
func buildSummary(rec *extendedRecord, heavyRainMM, highUVIndex float64) string {
	text := "conditions unknown"
	if rec.WeatherCode != nil {
		if s, ok := wmoCodeText[*rec.WeatherCode]; ok {
			text = s
		} else {
			text = fmt.Sprintf("code %d", *rec.WeatherCode)
		}
	}

	if rec.TemperatureC != nil {
		text = fmt.Sprintf("%s, %.1f°C", text, *rec.TemperatureC)
	}

	var warnings []string
	if rec.UVIndex != nil && *rec.UVIndex >= highUVIndex {
		warnings = append(warnings, fmt.Sprintf("high UV (%.1f)", *rec.UVIndex))
	}
	if rec.Precipitation != nil && *rec.Precipitation >= heavyRainMM {
		warnings = append(warnings, fmt.Sprintf("heavy rain (%.1fmm)", *rec.Precipitation))
	}
	for _, w := range warnings {
		text = fmt.Sprintf("%s; %s", text, w)
	}
	return text
}
