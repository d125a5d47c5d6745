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
	"cmp"
	"fmt"
)

// Validator is the policy object every decode is parametrized by. The zero
// value of Any accepts everything.
type Validator[T any] interface {
	Check(v T) error
}

// Any is the default validator: it accepts any successfully converted value.
type Any[T any] struct{}

func (Any[T]) Check(T) error { return nil }

// RangeValidator accepts values within [Lo, Hi] inclusive.
type RangeValidator[T cmp.Ordered] struct {
	Lo, Hi T
}

func (r RangeValidator[T]) Check(v T) error {
	if v < r.Lo || v > r.Hi {
		return fmt.Errorf("%v out of range [%v, %v]", v, r.Lo, r.Hi)
	}
	return nil
}

// ForecastDayValidator accepts only dates within [Today, Today+N] — the
// "forecast window" of the glossary.
type ForecastDayValidator struct {
	Today Date
	Days  int
}

func (f ForecastDayValidator) Check(d Date) error {
	lo := f.Today
	hi := f.Today.AddDays(f.Days)
	if d.Before(lo) || hi.Before(d) {
		return fmt.Errorf("date %s outside forecast window [%s, %s]", d, lo, hi)
	}
	return nil
}
