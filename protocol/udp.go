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

import liberr "github.com/svxreflector/goreflector/errors"

// UDPMessage is the plaintext payload carried inside an AES-128-GCM
// datagram (v3) or a legacy V2 frame. The transport package owns framing,
// AAD and encryption; this package only owns the plaintext shape.
type UDPMessage interface {
	UDPType() uint16
	Pack() []byte
}

func DecodeUDP(payload []byte) (uint16, UDPMessage, liberr.Error) {
	r := NewReader(payload)
	t, e := r.U16()
	if e != nil {
		return 0, nil, e
	}
	switch t {
	case UDPTypeHeartbeat:
		return t, &MsgUdpHeartbeat{}, nil
	case UDPTypeAudio:
		m := &MsgUdpAudio{}
		if e := m.unpack(r); e != nil {
			return t, nil, e
		}
		return t, m, nil
	case UDPTypeFlushSamples:
		return t, &MsgUdpFlushSamples{}, nil
	case UDPTypeAllSamplesFlushed:
		return t, &MsgUdpAllSamplesFlushed{}, nil
	case UDPTypeSignalStrength:
		m := &MsgUdpSignalStrength{}
		if e := m.unpack(r); e != nil {
			return t, nil, e
		}
		return t, m, nil
	}
	return t, nil, ErrorUnknownType.Error(nil)
}

func EncodeUDP(m UDPMessage) []byte {
	w := NewWriter()
	w.U16(m.UDPType())
	w.Raw(m.Pack())
	return w.Bytes()
}

type MsgUdpHeartbeat struct{}

func (MsgUdpHeartbeat) UDPType() uint16 { return UDPTypeHeartbeat }
func (MsgUdpHeartbeat) Pack() []byte    { return nil }

type MsgUdpAudio struct{ Audio []byte }

func (MsgUdpAudio) UDPType() uint16   { return UDPTypeAudio }
func (m MsgUdpAudio) Pack() []byte    { return NewWriter().Blob32(m.Audio).Bytes() }
func (m *MsgUdpAudio) unpack(r *Reader) (e liberr.Error) {
	m.Audio, e = r.Blob32()
	return e
}

type MsgUdpFlushSamples struct{}

func (MsgUdpFlushSamples) UDPType() uint16 { return UDPTypeFlushSamples }
func (MsgUdpFlushSamples) Pack() []byte    { return nil }

type MsgUdpAllSamplesFlushed struct{}

func (MsgUdpAllSamplesFlushed) UDPType() uint16 { return UDPTypeAllSamplesFlushed }
func (MsgUdpAllSamplesFlushed) Pack() []byte    { return nil }

type MsgUdpSignalStrength struct {
	Siglev int16
	RxID   byte
}

func (MsgUdpSignalStrength) UDPType() uint16 { return UDPTypeSignalStrength }
func (m MsgUdpSignalStrength) Pack() []byte {
	return NewWriter().U16(uint16(m.Siglev)).U8(m.RxID).Bytes()
}
func (m *MsgUdpSignalStrength) unpack(r *Reader) liberr.Error {
	v, e := r.U16()
	if e != nil {
		return e
	}
	m.Siglev = int16(v)
	m.RxID, e = r.U8()
	return e
}

// LegacyV2Header is the unencrypted explicit sequence header used by
// protocol<3 clients in place of the AEAD counter (§4.2).
type LegacyV2Header struct {
	ClientID uint16
	Seq      uint16
}

func (h LegacyV2Header) Pack() []byte { return NewWriter().U16(h.ClientID).U16(h.Seq).Bytes() }

func DecodeLegacyV2Header(b []byte) (LegacyV2Header, []byte, liberr.Error) {
	r := NewReader(b)
	cid, e := r.U16()
	if e != nil {
		return LegacyV2Header{}, nil, e
	}
	seq, e := r.U16()
	if e != nil {
		return LegacyV2Header{}, nil, e
	}
	return LegacyV2Header{ClientID: cid, Seq: seq}, b[4:], nil
}
