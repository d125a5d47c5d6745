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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFromJSON_Scalars(t *testing.T) {
	f, err := ValueFromJSON[float64](21.4, "temp", Any[float64]{})
	require.NoError(t, err)
	assert.Equal(t, 21.4, f)

	s, err := ValueFromJSON[string]("hello", "name", Any[string]{})
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	b, err := ValueFromJSON[bool](true, "flag", Any[bool]{})
	require.NoError(t, err)
	assert.True(t, b)
}

func TestValueFromJSON_WrongType(t *testing.T) {
	_, err := ValueFromJSON[float64]("not a number", "temp", Any[float64]{})
	require.Error(t, err)

	var de *Error
	require.True(t, asDecodeError(err, &de))
	assert.Equal(t, KindConversion, de.Kind)
}

func TestOptionalFromJSON_Null(t *testing.T) {
	v, err := OptionalFromJSON[float64](nil, "temp", Any[float64]{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestField_MissingIsShapeError(t *testing.T) {
	obj := map[string]any{"a": 1.0}
	_, err := Field[float64](obj, "b", "root", Any[float64]{})
	require.Error(t, err)

	var de *Error
	require.True(t, asDecodeError(err, &de))
	assert.Equal(t, KindShape, de.Kind)
	assert.Contains(t, de.Path, "b")
}

func TestElement_OutOfRangeIsShapeError(t *testing.T) {
	arr := []any{1.0, 2.0}
	_, err := Element[float64](arr, 5, "root", Any[float64]{})
	require.Error(t, err)

	var de *Error
	require.True(t, asDecodeError(err, &de))
	assert.Equal(t, KindShape, de.Kind)
}

// Boundary behaviors for RangeValidator, per §8.
func TestRangeValidator_Boundaries(t *testing.T) {
	v := RangeValidator[int]{Lo: 1, Hi: 10}
	assert.NoError(t, v.Check(1))
	assert.NoError(t, v.Check(10))
	assert.Error(t, v.Check(0))
	assert.Error(t, v.Check(11))
}

func TestForecastDayValidator_Boundaries(t *testing.T) {
	today := Today()
	v := ForecastDayValidator{Today: today, Days: 3}

	assert.NoError(t, v.Check(today))
	assert.NoError(t, v.Check(today.AddDays(3)))
	assert.Error(t, v.Check(today.AddDays(-1)))
	assert.Error(t, v.Check(today.AddDays(4)))
}

func TestTimeOfDay_SecondsBoundaries(t *testing.T) {
	_, err := timeOfDayFromSeconds(0)
	assert.NoError(t, err)

	_, err = timeOfDayFromSeconds(86399)
	assert.NoError(t, err)

	_, err = timeOfDayFromSeconds(86400)
	assert.Error(t, err)

	_, err = timeOfDayFromSeconds(-1)
	assert.Error(t, err)
}

// S6: currency/comma normalization for string-to-float conversion.
func TestNormalizeAndParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1 234,56 €", 1234.56},
		{"1,234.56", 1234.56},
		{"$42.50", 42.50},
		{"CHF 7,5", 7.5},
	}
	for _, c := range cases {
		got, err := normalizeAndParseFloat(c.in)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.want, got, 0.0001, c.in)
	}

	_, err := normalizeAndParseFloat("abc")
	assert.Error(t, err)
}

func TestToFloat64_StringGoesThroughNormalization(t *testing.T) {
	f, err := ValueFromJSON[float64]("1,234.56", "amount", Any[float64]{})
	require.NoError(t, err)
	assert.InDelta(t, 1234.56, f, 0.0001)

	_, err = ValueFromJSON[float64]("abc", "amount", Any[float64]{})
	require.Error(t, err)
	var de *Error
	require.True(t, asDecodeError(err, &de))
	assert.Equal(t, KindConversion, de.Kind)
}

// P7: round-trip consistency on scalar types.
func TestRoundTrip_Date(t *testing.T) {
	d := Today()
	s := d.String()
	got, err := ValueFromJSON[Date](s, "date", Any[Date]{})
	require.NoError(t, err)
	assert.True(t, d.Equal(got))
}

func TestRoundTrip_TimeOfDay(t *testing.T) {
	original := TimeOfDay{SecondsInDay: 3723} // 01:02:03
	got, err := timeOfDayFromSeconds(int64(original.SecondsInDay))
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestValidationError_Kind(t *testing.T) {
	_, err := ValueFromJSON[int](100.0, "n", RangeValidator[int]{Lo: 0, Hi: 10})
	require.Error(t, err)
	var de *Error
	require.True(t, asDecodeError(err, &de))
	assert.Equal(t, KindValidation, de.Kind)
}

func TestDecodeObject_NonObjectIsShapeError(t *testing.T) {
	type rec struct{}
	_, err := DecodeObject[*decodeStub](42, "root", func() *decodeStub { return &decodeStub{} })
	require.Error(t, err)
	var de *Error
	require.True(t, asDecodeError(err, &de))
	assert.Equal(t, KindShape, de.Kind)
	_ = rec{}
}

type decodeStub struct{ seen bool }

func (d *decodeStub) DecodeJSON(obj map[string]any, path string) error {
	d.seen = true
	return nil
}

func TestDecodeObject_DelegatesToRecord(t *testing.T) {
	rec, err := DecodeObject[*decodeStub](map[string]any{}, "root", func() *decodeStub { return &decodeStub{} })
	require.NoError(t, err)
	assert.True(t, rec.seen)
}
