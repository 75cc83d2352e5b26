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

// Package size parses and formats byte quantities ("10MB", "2.5GB") used
// throughout the reflector's file and buffer size configuration fields.
package size

// Size is a byte count, stored as a raw uint64 so it participates directly
// in arithmetic with other integer byte counts.
type Size uint64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo Size = SizeUnit << 10
	SizeMega Size = SizeKilo << 10
	SizeGiga Size = SizeMega << 10
	SizeTera Size = SizeGiga << 10
	SizePeta Size = SizeTera << 10
	SizeExa  Size = SizePeta << 10
)

const (
	FormatRound0 = "%.0f"
	FormatRound1 = "%.1f"
	FormatRound2 = "%.2f"
	FormatRound3 = "%.3f"
)

var _defaultUnit rune = 'B'

// SetDefaultUnit sets the rune appended by Code when called with a zero
// rune. Passing 0 resets it to 'B'.
func SetDefaultUnit(r rune) {
	if r == 0 {
		r = 'B'
	}
	_defaultUnit = r
}

type sizeScale struct {
	factor Size
	prefix string
}

var scales = []sizeScale{
	{SizeExa, "E"},
	{SizePeta, "P"},
	{SizeTera, "T"},
	{SizeGiga, "G"},
	{SizeMega, "M"},
	{SizeKilo, "K"},
}

// scale returns the largest binary-power factor not greater than s, along
// with the letter prefix used for that scale ("" at byte granularity).
func (s Size) scale() (Size, string) {
	for _, sc := range scales {
		if s >= sc.factor {
			return sc.factor, sc.prefix
		}
	}
	return SizeUnit, ""
}
