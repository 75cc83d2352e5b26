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

// Phase names the session FSM states from spec.md §4.4. Defined here
// (rather than in package session) so both the codec's phase-legality
// table and the session package can depend on it without a cycle.
type Phase int

const (
	PhaseExpectProtoVer Phase = iota
	PhaseExpectStartEncryption
	PhaseExpectSSLConReady
	PhaseExpectCSR
	PhaseExpectAuthResponse
	PhaseConnected
	PhaseExpectDisconnect
)

func (p Phase) String() string {
	switch p {
	case PhaseExpectProtoVer:
		return "EXPECT_PROTO_VER"
	case PhaseExpectStartEncryption:
		return "EXPECT_START_ENCRYPTION"
	case PhaseExpectSSLConReady:
		return "EXPECT_SSL_CON_READY"
	case PhaseExpectCSR:
		return "EXPECT_CSR"
	case PhaseExpectAuthResponse:
		return "EXPECT_AUTH_RESPONSE"
	case PhaseConnected:
		return "CONNECTED"
	case PhaseExpectDisconnect:
		return "EXPECT_DISCONNECT"
	}
	return "UNKNOWN"
}

// MaxFrameSize returns the per-session frame size ceiling in force during
// this phase (§4.1). EXPECT_DISCONNECT reuses the post-auth ceiling since
// the peer may still be draining its write buffer.
func (p Phase) MaxFrameSize() int {
	switch p {
	case PhaseExpectProtoVer:
		return MaxPreAuthFrameSize
	case PhaseExpectStartEncryption:
		return MaxPreSSLSetupFrame
	case PhaseExpectSSLConReady, PhaseExpectCSR, PhaseExpectAuthResponse:
		return MaxPostSSLSetupFrame
	default:
		return MaxPostAuthFrameSize
	}
}

// allowedInPhase lists, for every phase, the TCP message types a peer may
// legally send. MsgError and MsgHeartbeat are allowed everywhere (§4.4,
// "any -> MsgError ...").
var allowedInPhase = map[Phase]map[uint16]bool{
	PhaseExpectProtoVer: {
		TypeProtoVer: true,
	},
	PhaseExpectStartEncryption: {
		TypeCABundleRequest:    true,
		TypeStartEncryptionReq: true,
	},
	PhaseExpectSSLConReady: {
		// driven by TLS handshake completion, not an inbound message
	},
	PhaseExpectCSR: {
		TypeClientCsr: true,
	},
	PhaseExpectAuthResponse: {
		TypeAuthResponse: true,
	},
	PhaseConnected: {
		TypeSelectTG:             true,
		TypeTgMonitor:            true,
		TypeRequestQsy:           true,
		TypeNodeInfoJSON:         true,
		TypeNodeInfoV3:           true,
		TypeStateEvent:           true,
		TypeSignalStrengthValues: true,
		TypeTxStatus:             true,
		TypeClientCsr:            true,
	},
	PhaseExpectDisconnect: {},
}

// AllowedInPhase reports whether msgType may be processed while in phase p.
func AllowedInPhase(p Phase, msgType uint16) bool {
	if msgType == TypeError || msgType == TypeHeartbeat {
		return true
	}
	m, ok := allowedInPhase[p]
	if !ok {
		return false
	}
	return m[msgType]
}
