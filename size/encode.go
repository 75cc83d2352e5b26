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
	"encoding/binary"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalJSON returns the JSON encoding of s, as its String() form.
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a JSON-encoded size into s.
func (s *Size) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, err := Parse(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalYAML returns the YAML encoding of s.
func (s Size) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML parses a YAML-encoded size into s.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	v, err := Parse(value.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalTOML returns the TOML encoding of s, equivalent to MarshalJSON.
func (s Size) MarshalTOML() ([]byte, error) {
	return s.MarshalJSON()
}

// UnmarshalTOML parses a TOML-encoded size into s. The value is expected
// to be either a byte slice or a string.
func (s *Size) UnmarshalTOML(i interface{}) error {
	if b, k := i.([]byte); k {
		return s.UnmarshalText(b)
	}

	if str, k := i.(string); k {
		v, err := Parse(str)
		if err != nil {
			return err
		}
		*s = v
		return nil
	}

	return fmt.Errorf("size: value not in valid format")
}

// MarshalText returns the text encoding of s.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a text-encoded size into s.
func (s *Size) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalBinary encodes s as a fixed 8-byte big-endian value.
func (s Size) MarshalBinary() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(s))
	return b, nil
}

// UnmarshalBinary decodes a fixed 8-byte big-endian value into s.
func (s *Size) UnmarshalBinary(b []byte) error {
	if len(b) != 8 {
		return fmt.Errorf("size: invalid binary length %d", len(b))
	}
	*s = Size(binary.BigEndian.Uint64(b))
	return nil
}
