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
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([A-Za-z]*)$`)

var unitFactors = map[string]float64{
	"B":  1,
	"K":  float64(SizeKilo),
	"KB": float64(SizeKilo),
	"M":  float64(SizeMega),
	"MB": float64(SizeMega),
	"G":  float64(SizeGiga),
	"GB": float64(SizeGiga),
	"T":  float64(SizeTera),
	"TB": float64(SizeTera),
	"P":  float64(SizePeta),
	"PB": float64(SizePeta),
	"E":  float64(SizeExa),
	"EB": float64(SizeExa),
}

// Parse converts a human size string ("10MB", "1.5GB", " 5MB ", `"5MB"`)
// into a Size. Quotes and surrounding whitespace are stripped, the
// comparison is case-insensitive, and a leading '+' is accepted. Negative
// values are rejected.
func Parse(s string) (Size, error) {
	t := strings.TrimSpace(s)
	if len(t) >= 2 {
		first, last := t[0], t[len(t)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			t = strings.TrimSpace(t[1 : len(t)-1])
		}
	}

	if t == "" {
		return SizeNul, fmt.Errorf("size: invalid size: empty input %q", s)
	}

	if strings.HasPrefix(t, "-") {
		return SizeNul, fmt.Errorf("size: negative sizes are not supported: %q", s)
	}
	t = strings.TrimPrefix(t, "+")

	m := sizePattern.FindStringSubmatch(t)
	if m == nil {
		return SizeNul, fmt.Errorf("size: invalid size format: %q", s)
	}

	unit := strings.ToUpper(m[2])
	if unit == "" {
		return SizeNul, fmt.Errorf("size: missing unit in size string: %q", s)
	}

	factor, ok := unitFactors[unit]
	if !ok {
		return SizeNul, fmt.Errorf("size: unknown unit %q in %q", unit, s)
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return SizeNul, fmt.Errorf("size: invalid numeric value %q: %w", s, err)
	}

	v := n * factor
	if math.IsInf(v, 1) || v > math.MaxUint64 {
		return SizeNul, fmt.Errorf("size: value overflows: %q", s)
	}

	return Size(v), nil
}

// ParseByte is Parse over a []byte, for decoders that hand back raw bytes.
func ParseByte(b []byte) (Size, error) {
	return Parse(string(b))
}

// ParseSize is a deprecated alias of Parse.
func ParseSize(s string) (Size, error) {
	return Parse(s)
}

// ParseByteAsSize is a deprecated alias of ParseByte.
func ParseByteAsSize(b []byte) (Size, error) {
	return ParseByte(b)
}

// GetSize is a deprecated alias of Parse that reports success as a bool
// instead of an error.
func GetSize(s string) (Size, bool) {
	v, err := Parse(s)
	if err != nil {
		return SizeNul, false
	}
	return v, true
}
