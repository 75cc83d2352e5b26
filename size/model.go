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
	"reflect"

	libmap "github.com/mitchellh/mapstructure"
)

// ViperDecoderHook returns a DecodeHookFunc for Viper configuration
// decoding, converting strings, byte slices, and any integer or float
// kind into a Size. Values of any other kind, or a source kind that
// doesn't match the data's actual type, pass through unchanged.
func ViperDecoderHook() libmap.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Size(0)) {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			s, ok := data.(string)
			if !ok {
				return data, nil
			}
			return Parse(s)

		case reflect.Slice:
			b, ok := data.([]byte)
			if !ok {
				return data, nil
			}
			return ParseByte(b)

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			rv := reflect.ValueOf(data)
			if rv.Kind() < reflect.Int || rv.Kind() > reflect.Int64 {
				return data, nil
			}
			return ParseInt64(rv.Int()), nil

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			rv := reflect.ValueOf(data)
			if rv.Kind() < reflect.Uint || rv.Kind() > reflect.Uintptr {
				return data, nil
			}
			return ParseUint64(rv.Uint()), nil

		case reflect.Float32, reflect.Float64:
			rv := reflect.ValueOf(data)
			if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
				return data, nil
			}
			return ParseFloat64(rv.Float()), nil

		default:
			return data, nil
		}
	}
}
