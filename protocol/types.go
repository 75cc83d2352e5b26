/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package protocol

// TCP message type codes. 1-99 are administrative, >=100 are user-level.
// Numbering matches the original SvxReflector wire protocol exactly so
// that a packet capture can be cross-checked against its C++ source.
const (
	TypeHeartbeat             uint16 = 1
	TypeProtoVer              uint16 = 5
	TypeProtoVerDowngrade     uint16 = 6
	TypeAuthChallenge         uint16 = 10
	TypeAuthResponse          uint16 = 11
	TypeAuthOk                uint16 = 12
	TypeError                 uint16 = 13
	TypeStartEncryptionReq    uint16 = 14
	TypeStartEncryption       uint16 = 15
	TypeClientCsrRequest      uint16 = 16
	TypeClientCsr             uint16 = 17
	TypeClientCert            uint16 = 18
	TypeCAInfo                uint16 = 19
	TypeCABundleRequest       uint16 = 20
	TypeCABundle              uint16 = 21
	TypeServerInfo            uint16 = 100
	TypeNodeList              uint16 = 101
	TypeNodeJoined            uint16 = 102
	TypeNodeLeft              uint16 = 103
	TypeTalkerStart           uint16 = 104
	TypeTalkerStop            uint16 = 105
	TypeSelectTG              uint16 = 106
	TypeTgMonitor             uint16 = 107
	TypeNodeInfoJSON          uint16 = 108
	TypeRequestQsy            uint16 = 109
	TypeStateEvent            uint16 = 110
	TypeNodeInfoV3            uint16 = 111
	TypeSignalStrengthValues  uint16 = 112
	TypeTxStatus              uint16 = 113
	TypeStartUdpEncryption    uint16 = 114
)

// UDP message type codes. Independent numbering space from TCP.
const (
	UDPTypeHeartbeat         uint16 = 1
	UDPTypeAudio             uint16 = 101
	UDPTypeFlushSamples      uint16 = 102
	UDPTypeAllSamplesFlushed uint16 = 103
	UDPTypeSignalStrength    uint16 = 104
)

// Per-phase TCP frame size ceilings (§4.1).
const (
	MaxPreAuthFrameSize    = 64
	MaxPreSSLSetupFrame    = 4096
	MaxPostSSLSetupFrame   = 16384
	MaxPostAuthFrameSize   = 32768
)

// AES-128-GCM UDP framing constants (§4.2, §6).
const (
	UDPAADLen = 4
	UDPTagLen = 8
	UDPIVLen  = 12
	UDPKeyLen = 16
	// UDPIVRandLen is IVLEN - sizeof(counter) - sizeof(client-id): the
	// random prefix fills whatever the counter and client-id don't.
	UDPIVRandLen = UDPIVLen - 4 - 2
)

// CurrentProtoVersion is the highest protocol version this server speaks.
var CurrentProtoVersion = ProtoVer{Major: 3, Minor: 0}

// ProtoVer represents a (major, minor) protocol version pair and supports
// the ordering used throughout the session FSM and broadcast filters.
type ProtoVer struct {
	Major uint16
	Minor uint16
}

func (v ProtoVer) IsValid() bool { return v.Major > 0 || v.Minor > 0 }

func (v ProtoVer) Equal(o ProtoVer) bool { return v.Major == o.Major && v.Minor == o.Minor }

func (v ProtoVer) Less(o ProtoVer) bool {
	return v.Major < o.Major || (v.Major == o.Major && v.Minor < o.Minor)
}

func (v ProtoVer) Greater(o ProtoVer) bool { return o.Less(v) }

func (v ProtoVer) LessEqual(o ProtoVer) bool { return v.Equal(o) || v.Less(o) }

func (v ProtoVer) GreaterEqual(o ProtoVer) bool { return v.Equal(o) || v.Greater(o) }

// ProtoVerRange checks whether a version falls within [Min, Max] inclusive.
type ProtoVerRange struct {
	Min ProtoVer
	Max ProtoVer
}

func (r ProtoVerRange) IsValid() bool { return r.Min.IsValid() && r.Max.IsValid() }

func (r ProtoVerRange) Contains(v ProtoVer) bool {
	return v.GreaterEqual(r.Min) && v.LessEqual(r.Max)
}

// V2Boundary is the protocol version below which the legacy, unencrypted
// UDP framing and HMAC-SHA1 authentication are used instead of TLS + AEAD.
var V2Boundary = ProtoVer{Major: 3, Minor: 0}
