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
	"strconv"
	"strings"
)

// ValueFromJSON converts an untyped JSON value (as produced by
// encoding/json's map[string]any/[]any/float64/string/bool/nil decoding)
// into T, then applies validator.Check. See convertTo for the accepted
// JSON forms per T, mirroring the table in §4.3.
func ValueFromJSON[T any, V Validator[T]](raw any, path string, validator V) (T, error) {
	val, err := convertTo[T](raw, path)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := validator.Check(val); err != nil {
		var zero T
		return zero, validationErr(path, err)
	}
	return val, nil
}

// OptionalFromJSON is identical to ValueFromJSON except a JSON null (or a
// Go nil) yields (nil, nil) instead of an error.
func OptionalFromJSON[T any, V Validator[T]](raw any, path string, validator V) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := ValueFromJSON[T, V](raw, path, validator)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Field looks up key in obj and converts it; a missing key is a ShapeError.
func Field[T any, V Validator[T]](obj map[string]any, key, path string, validator V) (T, error) {
	raw, ok := obj[key]
	if !ok {
		var zero T
		return zero, shapeErr(fmtPath(path, key), fmt.Errorf("missing field %q", key))
	}
	v, err := ValueFromJSON[T, V](raw, fmtPath(path, key), validator)
	if err != nil {
		return v, wrapKey(key, err)
	}
	return v, nil
}

// OptionalField is Field's optional counterpart: a missing key or a JSON
// null both yield (nil, nil).
func OptionalField[T any, V Validator[T]](obj map[string]any, key, path string, validator V) (*T, error) {
	raw, ok := obj[key]
	if !ok {
		return nil, nil
	}
	v, err := OptionalFromJSON[T, V](raw, fmtPath(path, key), validator)
	if err != nil {
		return nil, wrapKey(key, err)
	}
	return v, nil
}

// Element is Field's array counterpart; an out-of-range index is a
// ShapeError.
func Element[T any, V Validator[T]](arr []any, index int, path string, validator V) (T, error) {
	if index < 0 || index >= len(arr) {
		var zero T
		return zero, shapeErr(fmt.Sprintf("%s[%d]", path, index), fmt.Errorf("index out of range (len=%d)", len(arr)))
	}
	return ValueFromJSON[T, V](arr[index], fmt.Sprintf("%s[%d]", path, index), validator)
}

// OptionalElement is Element's optional counterpart.
func OptionalElement[T any, V Validator[T]](arr []any, index int, path string, validator V) (*T, error) {
	if index < 0 || index >= len(arr) {
		return nil, nil
	}
	return OptionalFromJSON[T, V](arr[index], fmt.Sprintf("%s[%d]", path, index), validator)
}

// Decoder is the open-dispatch capability a record type implements so that
// DecodeObject can fill it in from a JSON object without a central
// registry: new record types are added by writing a new DecodeJSON method,
// never by touching this package.
type Decoder interface {
	DecodeJSON(obj map[string]any, path string) error
}

// DecodeObject decodes a whole record given a caller-supplied constructor.
// raw must be a JSON object (map[string]any); anything else is a
// ShapeError.
func DecodeObject[R Decoder](raw any, path string, newRecord func() R) (R, error) {
	var zero R
	obj, ok := raw.(map[string]any)
	if !ok {
		return zero, shapeErr(path, fmt.Errorf("expected object, got %T", raw))
	}
	rec := newRecord()
	if err := rec.DecodeJSON(obj, path); err != nil {
		return zero, err
	}
	return rec, nil
}

func fmtPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// FmtPath is fmtPath exported for record types that navigate nested
// objects/arrays themselves before delegating scalars to Field/Element.
func FmtPath(base, key string) string { return fmtPath(base, key) }

func wrapKey(key string, err error) error {
	var de *Error
	if asDecodeError(err, &de) {
		return de
	}
	return err
}

// convertTo dispatches on the zero value's concrete type (a generic function
// that type-switches on the requested Go type).
func convertTo[T any](raw any, path string) (T, error) {
	var zero T
	switch any(zero).(type) {
	case bool:
		v, err := toBool(raw, path)
		return any(v).(T), err
	case int:
		v, err := toInt64(raw, path, -1<<63, 1<<63-1)
		return any(int(v)).(T), err
	case int32:
		v, err := toInt64(raw, path, -1<<31, 1<<31-1)
		return any(int32(v)).(T), err
	case int64:
		v, err := toInt64(raw, path, -1<<63, 1<<63-1)
		return any(v).(T), err
	case uint:
		v, err := toUint64(raw, path, 1<<64-1)
		return any(uint(v)).(T), err
	case uint16:
		v, err := toUint64(raw, path, 1<<16-1)
		return any(uint16(v)).(T), err
	case uint32:
		v, err := toUint64(raw, path, 1<<32-1)
		return any(uint32(v)).(T), err
	case float32:
		v, err := toFloat64(raw, path)
		return any(float32(v)).(T), err
	case float64:
		v, err := toFloat64(raw, path)
		return any(v).(T), err
	case string:
		v, err := toString(raw, path)
		return any(v).(T), err
	case Date:
		v, err := toDate(raw, path)
		return any(v).(T), err
	case TimeOfDay:
		v, err := toTimeOfDay(raw, path)
		return any(v).(T), err
	case Timestamp:
		v, err := parseTimestamp(raw, path)
		return any(v).(T), err
	default:
		return zero, shapeErr(path, fmt.Errorf("unsupported target type %T", zero))
	}
}

func toBool(raw any, path string) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	default:
		return false, conversionErr(path, fmt.Errorf("cannot convert %T to bool", raw))
	}
}

func toInt64(raw any, path string, lo, hi int64) (int64, error) {
	f, ok := raw.(float64)
	if !ok {
		return 0, conversionErr(path, fmt.Errorf("cannot convert %T to integer", raw))
	}
	if f != float64(int64(f)) {
		return 0, conversionErr(path, fmt.Errorf("%v is not an integer", f))
	}
	n := int64(f)
	if n < lo || n > hi {
		return 0, conversionErr(path, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi))
	}
	return n, nil
}

func toUint64(raw any, path string, hi uint64) (uint64, error) {
	f, ok := raw.(float64)
	if !ok {
		return 0, conversionErr(path, fmt.Errorf("cannot convert %T to unsigned integer", raw))
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, conversionErr(path, fmt.Errorf("%v is not a non-negative integer", f))
	}
	n := uint64(f)
	if n > hi {
		return 0, conversionErr(path, fmt.Errorf("%d out of range [0, %d]", n, hi))
	}
	return n, nil
}

func toFloat64(raw any, path string) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case string:
		f, err := normalizeAndParseFloat(v)
		if err != nil {
			return 0, conversionErr(path, err)
		}
		return f, nil
	default:
		return 0, conversionErr(path, fmt.Errorf("cannot convert %T to float", raw))
	}
}

func toString(raw any, path string) (string, error) {
	v, ok := raw.(string)
	if !ok {
		return "", conversionErr(path, fmt.Errorf("cannot convert %T to string", raw))
	}
	return v, nil
}

func toDate(raw any, path string) (Date, error) {
	s, ok := raw.(string)
	if !ok {
		return Date{}, conversionErr(path, fmt.Errorf("cannot convert %T to date", raw))
	}
	d, err := parseDate(s)
	if err != nil {
		return Date{}, conversionErr(path, err)
	}
	return d, nil
}

func toTimeOfDay(raw any, path string) (TimeOfDay, error) {
	switch v := raw.(type) {
	case string:
		t, err := parseTimeOfDayFromISO(v)
		if err != nil {
			return TimeOfDay{}, conversionErr(path, err)
		}
		return t, nil
	case float64:
		if v != float64(int64(v)) {
			return TimeOfDay{}, conversionErr(path, fmt.Errorf("%v is not an integer number of seconds", v))
		}
		t, err := timeOfDayFromSeconds(int64(v))
		if err != nil {
			return TimeOfDay{}, conversionErr(path, err)
		}
		return t, nil
	default:
		return TimeOfDay{}, conversionErr(path, fmt.Errorf("cannot convert %T to time-of-day", raw))
	}
}

var currencyMarkers = []string{"€", "$", "CHF", "EUR", "USD"}

// normalizeAndParseFloat implements §4.3's string-to-float normalization:
// strip whitespace and currency markers, then disambiguate comma as a
// decimal separator (European style) or a thousands separator.
func normalizeAndParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")

	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number", s)
	}
	return f, nil
}
