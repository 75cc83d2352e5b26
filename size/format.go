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

import "fmt"

// Format renders s, scaled to its natural unit, using fmtStr as a
// fmt-style verb for the remaining float (e.g. FormatRound2).
func (s Size) Format(fmtStr string) string {
	factor, _ := s.scale()
	v := float64(s) / float64(factor)
	return fmt.Sprintf(fmtStr, v)
}

// String renders s at 2 decimals of precision followed by its unit code,
// e.g. "5.50KB".
func (s Size) String() string {
	return s.Format(FormatRound2) + s.Unit(0)
}

// Unit returns the natural-scale prefix ("", "K", "M", ...) followed by r,
// or by 'B' when r is zero.
func (s Size) Unit(r rune) string {
	_, prefix := s.scale()
	if r == 0 {
		r = 'B'
	}
	return prefix + string(r)
}

// Code is Unit, but falls back to the package's default unit rune (see
// SetDefaultUnit) instead of 'B' when r is zero.
func (s Size) Code(r rune) string {
	_, prefix := s.scale()
	if r == 0 {
		r = _defaultUnit
	}
	return prefix + string(r)
}

func (s Size) KiloBytes() uint64 { return uint64(s) / uint64(SizeKilo) }
func (s Size) MegaBytes() uint64 { return uint64(s) / uint64(SizeMega) }
func (s Size) GigaBytes() uint64 { return uint64(s) / uint64(SizeGiga) }
func (s Size) TeraBytes() uint64 { return uint64(s) / uint64(SizeTera) }
func (s Size) PetaBytes() uint64 { return uint64(s) / uint64(SizePeta) }
func (s Size) ExaBytes() uint64  { return uint64(s) / uint64(SizeExa) }
