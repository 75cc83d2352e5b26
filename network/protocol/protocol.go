/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package protocol enumerates the network dial protocols ("tcp", "udp",
// "unix", ...) accepted by the syslog hook and other network-facing
// config options, with string/int round-tripping for config files.
package protocol

import (
	"math"
	"strconv"
	"strings"
)

// NetworkProtocol identifies a net.Dial-compatible network family.
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

// String returns the net.Dial network name, or "" for NetworkEmpty or an
// out-of-range value.
func (n NetworkProtocol) String() string {
	switch n {
	case NetworkUnix:
		return "unix"
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkIP:
		return "ip"
	case NetworkIP4:
		return "ip4"
	case NetworkIP6:
		return "ip6"
	case NetworkUnixGram:
		return "unixgram"
	default:
		return ""
	}
}

// Code is an alias of String kept for config fields that want a
// lowercase wire code distinct from a possible future display String.
func (n NetworkProtocol) Code() string {
	return n.String()
}

func (n NetworkProtocol) Int() int       { return int(n) }
func (n NetworkProtocol) Int64() int64   { return int64(n) }
func (n NetworkProtocol) Uint() uint     { return uint(n) }
func (n NetworkProtocol) Uint64() uint64 { return uint64(n) }

// Parse maps a protocol name to its NetworkProtocol, trimming
// surrounding whitespace and a single layer of quoting
// ("...", '...', `...`) and matching case-insensitively. Unknown input
// returns NetworkEmpty.
func Parse(s string) NetworkProtocol {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = s[1 : len(s)-1]
		}
	}

	switch strings.ToLower(s) {
	case "unix":
		return NetworkUnix
	case "tcp":
		return NetworkTCP
	case "tcp4":
		return NetworkTCP4
	case "tcp6":
		return NetworkTCP6
	case "udp":
		return NetworkUDP
	case "udp4":
		return NetworkUDP4
	case "udp6":
		return NetworkUDP6
	case "ip":
		return NetworkIP
	case "ip4":
		return NetworkIP4
	case "ip6":
		return NetworkIP6
	case "unixgram":
		return NetworkUnixGram
	default:
		return NetworkEmpty
	}
}

// ParseBytes is Parse over a []byte, for decoders that hand back raw bytes.
func ParseBytes(b []byte) NetworkProtocol {
	return Parse(string(b))
}

// ParseInt64 maps a raw ordinal back to its NetworkProtocol. Values
// outside the valid [1, NetworkUnixGram] range, including negatives and
// anything beyond a uint8, return NetworkEmpty.
func ParseInt64(v int64) NetworkProtocol {
	if v <= 0 || v > math.MaxUint8 {
		return NetworkEmpty
	}
	n := NetworkProtocol(v)
	if n > NetworkUnixGram {
		return NetworkEmpty
	}
	return n
}

func (n NetworkProtocol) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(n.String())), nil
}

func (n *NetworkProtocol) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		s = string(b)
	}
	*n = Parse(s)
	return nil
}

func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *NetworkProtocol) UnmarshalText(b []byte) error {
	*n = ParseBytes(b)
	return nil
}
