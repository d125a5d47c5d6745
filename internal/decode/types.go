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

package decode

import (
	"fmt"
	"time"
)

// Date is a calendar date, year/month/day in the local zone.
type Date struct {
	Year  int
	Month int
	Day   int
}

func DateFromTime(t time.Time) Date {
	t = t.Local()
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

func Today() Date { return DateFromTime(time.Now()) }

func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
	return DateFromTime(t.AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func parseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("not an ISO date: %q", s)
	}
	return DateFromTime(t), nil
}

// TimeOfDay is a wall-clock time of day at one-second resolution, stored as
// seconds elapsed since local midnight, in [0, 86400).
type TimeOfDay struct {
	SecondsInDay int
}

func (t TimeOfDay) String() string {
	h := t.SecondsInDay / 3600
	m := (t.SecondsInDay % 3600) / 60
	s := t.SecondsInDay % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func parseTimeOfDayFromISO(s string) (TimeOfDay, error) {
	// Accepts "YYYY-MM-DDTHH:MM" (and tolerates seconds if present); only
	// the time component is used.
	layouts := []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
			return TimeOfDay{SecondsInDay: secs}, nil
		}
		lastErr = err
	}
	return TimeOfDay{}, fmt.Errorf("not an ISO date-time: %q: %w", s, lastErr)
}

func timeOfDayFromSeconds(secs int64) (TimeOfDay, error) {
	if secs < 0 || secs >= 86400 {
		return TimeOfDay{}, fmt.Errorf("seconds-in-day %d out of range [0, 86400)", secs)
	}
	return TimeOfDay{SecondsInDay: int(secs)}, nil
}

// Timestamp is an instant at one-second resolution, UTC-anchored.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Second)}
}

// After reports whether t is strictly later than other.
func (t Timestamp) After(other Timestamp) bool {
	return t.Time.After(other.Time)
}

func parseTimestamp(raw any, path string) (Timestamp, error) {
	switch v := raw.(type) {
	case string:
		layouts := []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}
		var lastErr error
		for _, layout := range layouts {
			// Open-Meteo's "time" fields are local to the requested
			// timezone and carry no offset; interpret them in local time
			// the same way the scheduler does (§4.1).
			t, err := time.ParseInLocation(layout, v, time.Local)
			if err == nil {
				return NewTimestamp(t), nil
			}
			lastErr = err
		}
		return Timestamp{}, conversionErr(path, fmt.Errorf("not an ISO date-time: %q: %w", v, lastErr))
	case float64:
		return NewTimestamp(time.Unix(int64(v), 0)), nil
	default:
		return Timestamp{}, conversionErr(path, fmt.Errorf("cannot convert %T to timestamp", raw))
	}
}
