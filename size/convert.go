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

import "math"

// ParseInt64 converts v to its absolute value as a Size.
func ParseInt64(v int64) Size {
	if v < 0 {
		if v == math.MinInt64 {
			return Size(math.MaxUint64)
		}
		v = -v
	}
	return Size(uint64(v))
}

// SizeFromInt64 is a deprecated alias of ParseInt64.
func SizeFromInt64(v int64) Size {
	return ParseInt64(v)
}

// ParseUint64 converts v directly to a Size.
func ParseUint64(v uint64) Size {
	return Size(v)
}

// ParseFloat64 floors f, takes its absolute value, and converts it to a
// Size, capping at the maximum Size on overflow.
func ParseFloat64(f float64) Size {
	f = math.Floor(f)
	if f < 0 {
		f = -f
	}
	if f > math.MaxUint64 || math.IsInf(f, 1) {
		return Size(math.MaxUint64)
	}
	return Size(uint64(f))
}

// SizeFromFloat64 is a deprecated alias of ParseFloat64.
func SizeFromFloat64(f float64) Size {
	return ParseFloat64(f)
}

func (s Size) Uint64() uint64 { return uint64(s) }

func (s Size) Uint32() uint32 {
	if uint64(s) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(s)
}

func (s Size) Uint() uint {
	if uint64(s) > math.MaxUint {
		return math.MaxUint
	}
	return uint(s)
}

func (s Size) Int64() int64 {
	if uint64(s) > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(s)
}

func (s Size) Int32() int32 {
	if uint64(s) > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(s)
}

func (s Size) Int() int {
	if uint64(s) > math.MaxInt {
		return math.MaxInt
	}
	return int(s)
}

func (s Size) Float64() float64 {
	return float64(s)
}

func (s Size) Float32() float32 {
	return float32(s)
}
