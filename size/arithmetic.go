/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package size

import (
	"fmt"
	"math"
)

// Mul multiplies s by f in place, rounding up and capping at the maximum
// Size on overflow. A negative f is treated as zero.
func (s *Size) Mul(f float64) {
	_ = s.MulErr(f)
}

// MulErr is Mul, returning an error instead of silently capping on
// overflow.
func (s *Size) MulErr(f float64) error {
	if f < 0 {
		f = 0
	}
	r := math.Ceil(float64(*s) * f)
	if r > math.MaxUint64 || math.IsInf(r, 1) {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size: multiplication overflow")
	}
	*s = Size(r)
	return nil
}

// Div divides s by f in place, rounding up. A non-positive f leaves s
// unchanged.
func (s *Size) Div(f float64) {
	_ = s.DivErr(f)
}

// DivErr is Div, returning an error for a non-positive divisor or an
// overflowing result instead of silently no-oping or capping.
func (s *Size) DivErr(f float64) error {
	if f <= 0 {
		return fmt.Errorf("size: invalid diviser %v", f)
	}
	r := math.Ceil(float64(*s) / f)
	if r > math.MaxUint64 {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size: division overflow")
	}
	if r < 0 {
		r = 0
	}
	*s = Size(r)
	return nil
}

// Add increases s by v in place, capping at the maximum Size on overflow.
func (s *Size) Add(v uint64) {
	_ = s.AddErr(v)
}

// AddErr is Add, returning an error instead of silently capping on
// overflow.
func (s *Size) AddErr(v uint64) error {
	cur := uint64(*s)
	if v > math.MaxUint64-cur {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size: addition overflow")
	}
	*s = Size(cur + v)
	return nil
}

// Sub decreases s by v in place, capping at zero on underflow.
func (s *Size) Sub(v uint64) {
	_ = s.SubErr(v)
}

// SubErr is Sub, returning an error instead of silently capping at zero
// on underflow.
func (s *Size) SubErr(v uint64) error {
	cur := uint64(*s)
	if v > cur {
		*s = SizeNul
		return fmt.Errorf("size: invalid substractor %v", v)
	}
	*s = Size(cur - v)
	return nil
}
