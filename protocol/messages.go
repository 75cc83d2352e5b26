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

// Message is any TCP admin or user-level message. Type returns the wire
// type code; Pack serializes the payload (type code excluded, the framer
// prepends it); Unpack fills the message from a payload reader.
type Message interface {
	Type() uint16
	Pack() []byte
}

// Decode reads the u16 type code and dispatches to the matching message's
// Unpack, returning the decoded Message and its type code.
func Decode(payload []byte) (uint16, Message, liberr.Error) {
	r := NewReader(payload)
	t, e := r.U16()
	if e != nil {
		return 0, nil, e
	}
	m, e := newByType(t)
	if e != nil {
		return t, nil, e
	}
	if e := m.unpack(r); e != nil {
		return t, nil, e
	}
	return t, m, nil
}

// Encode prepends the type code to msg's packed payload.
func Encode(m Message) []byte {
	w := NewWriter()
	w.U16(m.Type())
	w.Raw(m.Pack())
	return w.Bytes()
}

type unpacker interface {
	unpack(r *Reader) liberr.Error
}

func newByType(t uint16) (interface {
	Message
	unpacker
}, liberr.Error) {
	switch t {
	case TypeHeartbeat:
		return &MsgHeartbeat{}, nil
	case TypeProtoVer:
		return &MsgProtoVer{}, nil
	case TypeProtoVerDowngrade:
		return &MsgProtoVerDowngrade{}, nil
	case TypeAuthChallenge:
		return &MsgAuthChallenge{}, nil
	case TypeAuthResponse:
		return &MsgAuthResponse{}, nil
	case TypeAuthOk:
		return &MsgAuthOk{}, nil
	case TypeError:
		return &MsgError{}, nil
	case TypeStartEncryptionReq:
		return &MsgStartEncryptionRequest{}, nil
	case TypeStartEncryption:
		return &MsgStartEncryption{}, nil
	case TypeClientCsrRequest:
		return &MsgClientCsrRequest{}, nil
	case TypeClientCsr:
		return &MsgClientCsr{}, nil
	case TypeClientCert:
		return &MsgClientCert{}, nil
	case TypeCAInfo:
		return &MsgCAInfo{}, nil
	case TypeCABundleRequest:
		return &MsgCABundleRequest{}, nil
	case TypeCABundle:
		return &MsgCABundle{}, nil
	case TypeServerInfo:
		return &MsgServerInfo{}, nil
	case TypeNodeList:
		return &MsgNodeList{}, nil
	case TypeNodeJoined:
		return &MsgNodeJoined{}, nil
	case TypeNodeLeft:
		return &MsgNodeLeft{}, nil
	case TypeTalkerStart:
		return &MsgTalkerStart{}, nil
	case TypeTalkerStop:
		return &MsgTalkerStop{}, nil
	case TypeSelectTG:
		return &MsgSelectTG{}, nil
	case TypeTgMonitor:
		return &MsgTgMonitor{}, nil
	case TypeNodeInfoJSON:
		return &MsgNodeInfoJSON{}, nil
	case TypeRequestQsy:
		return &MsgRequestQsy{}, nil
	case TypeStateEvent:
		return &MsgStateEvent{}, nil
	case TypeNodeInfoV3:
		return &MsgNodeInfoV3{}, nil
	case TypeSignalStrengthValues:
		return &MsgSignalStrengthValues{}, nil
	case TypeTxStatus:
		return &MsgTxStatus{}, nil
	case TypeStartUdpEncryption:
		return &MsgStartUdpEncryption{}, nil
	}
	return nil, ErrorUnknownType.Error(nil)
}

// ---- administrative messages (1-99) ----

type MsgHeartbeat struct{}

func (MsgHeartbeat) Type() uint16            { return TypeHeartbeat }
func (MsgHeartbeat) Pack() []byte            { return nil }
func (*MsgHeartbeat) unpack(*Reader) liberr.Error { return nil }

type MsgProtoVer struct{ Major, Minor uint16 }

func (MsgProtoVer) Type() uint16 { return TypeProtoVer }
func (m MsgProtoVer) Pack() []byte {
	return NewWriter().U16(m.Major).U16(m.Minor).Bytes()
}
func (m *MsgProtoVer) unpack(r *Reader) (e liberr.Error) {
	if m.Major, e = r.U16(); e != nil {
		return e
	}
	m.Minor, e = r.U16()
	return e
}

// MsgProtoVerDowngrade carries the highest version the server supports, so
// the client can retry MsgProtoVer with a version it now knows is safe.
type MsgProtoVerDowngrade struct{ Major, Minor uint16 }

func (MsgProtoVerDowngrade) Type() uint16 { return TypeProtoVerDowngrade }
func (m MsgProtoVerDowngrade) Pack() []byte {
	return NewWriter().U16(m.Major).U16(m.Minor).Bytes()
}
func (m *MsgProtoVerDowngrade) unpack(r *Reader) (e liberr.Error) {
	if m.Major, e = r.U16(); e != nil {
		return e
	}
	m.Minor, e = r.U16()
	return e
}

const AuthChallengeLen = 20
const AuthDigestLen = 20

type MsgAuthChallenge struct{ Challenge [AuthChallengeLen]byte }

func (MsgAuthChallenge) Type() uint16   { return TypeAuthChallenge }
func (m MsgAuthChallenge) Pack() []byte { return NewWriter().Raw(m.Challenge[:]).Bytes() }
func (m *MsgAuthChallenge) unpack(r *Reader) liberr.Error {
	b, e := r.Raw(AuthChallengeLen)
	if e != nil {
		return e
	}
	copy(m.Challenge[:], b)
	return nil
}

type MsgAuthResponse struct {
	Callsign string
	Digest   [AuthDigestLen]byte
}

func (MsgAuthResponse) Type() uint16 { return TypeAuthResponse }
func (m MsgAuthResponse) Pack() []byte {
	return NewWriter().String(m.Callsign).Raw(m.Digest[:]).Bytes()
}
func (m *MsgAuthResponse) unpack(r *Reader) (e liberr.Error) {
	if m.Callsign, e = r.String(); e != nil {
		return e
	}
	b, e := r.Raw(AuthDigestLen)
	if e != nil {
		return e
	}
	copy(m.Digest[:], b)
	return nil
}

type MsgAuthOk struct{}

func (MsgAuthOk) Type() uint16                { return TypeAuthOk }
func (MsgAuthOk) Pack() []byte                { return nil }
func (*MsgAuthOk) unpack(*Reader) liberr.Error { return nil }

type MsgError struct{ Message string }

func (MsgError) Type() uint16   { return TypeError }
func (m MsgError) Pack() []byte { return NewWriter().String(m.Message).Bytes() }
func (m *MsgError) unpack(r *Reader) (e liberr.Error) {
	m.Message, e = r.String()
	return e
}

type MsgStartEncryptionRequest struct{}

func (MsgStartEncryptionRequest) Type() uint16            { return TypeStartEncryptionReq }
func (MsgStartEncryptionRequest) Pack() []byte            { return nil }
func (*MsgStartEncryptionRequest) unpack(*Reader) liberr.Error { return nil }

type MsgStartEncryption struct{}

func (MsgStartEncryption) Type() uint16                { return TypeStartEncryption }
func (MsgStartEncryption) Pack() []byte                { return nil }
func (*MsgStartEncryption) unpack(*Reader) liberr.Error { return nil }

type MsgClientCsrRequest struct{}

func (MsgClientCsrRequest) Type() uint16                { return TypeClientCsrRequest }
func (MsgClientCsrRequest) Pack() []byte                { return nil }
func (*MsgClientCsrRequest) unpack(*Reader) liberr.Error { return nil }

type MsgClientCsr struct{ PEM string }

func (MsgClientCsr) Type() uint16   { return TypeClientCsr }
func (m MsgClientCsr) Pack() []byte { return NewWriter().String(m.PEM).Bytes() }
func (m *MsgClientCsr) unpack(r *Reader) (e liberr.Error) {
	m.PEM, e = r.String()
	return e
}

type MsgClientCert struct{ PEM string }

func (MsgClientCert) Type() uint16   { return TypeClientCert }
func (m MsgClientCert) Pack() []byte { return NewWriter().String(m.PEM).Bytes() }
func (m *MsgClientCert) unpack(r *Reader) (e liberr.Error) {
	m.PEM, e = r.String()
	return e
}

type MsgCAInfo struct {
	Size uint16
	Md   []byte // SHA-256 digest, 32 bytes
}

func (MsgCAInfo) Type() uint16   { return TypeCAInfo }
func (m MsgCAInfo) Pack() []byte { return NewWriter().U16(m.Size).Raw(m.Md).Bytes() }
func (m *MsgCAInfo) unpack(r *Reader) (e liberr.Error) {
	if m.Size, e = r.U16(); e != nil {
		return e
	}
	m.Md, e = r.Raw(32)
	return e
}

type MsgCABundleRequest struct{}

func (MsgCABundleRequest) Type() uint16                { return TypeCABundleRequest }
func (MsgCABundleRequest) Pack() []byte                { return nil }
func (*MsgCABundleRequest) unpack(*Reader) liberr.Error { return nil }

type MsgCABundle struct {
	CAPem   string
	Sig     []byte
	CertPem string
}

func (MsgCABundle) Type() uint16 { return TypeCABundle }
func (m MsgCABundle) Pack() []byte {
	return NewWriter().String(m.CAPem).Blob16(m.Sig).String(m.CertPem).Bytes()
}
func (m *MsgCABundle) unpack(r *Reader) (e liberr.Error) {
	if m.CAPem, e = r.String(); e != nil {
		return e
	}
	if m.Sig, e = r.Blob16(); e != nil {
		return e
	}
	m.CertPem, e = r.String()
	return e
}

// ---- user-level messages (>=100) ----

type MsgServerInfo struct {
	ClientID uint16
	Nodes    []string
	Codecs   []string
}

func (MsgServerInfo) Type() uint16 { return TypeServerInfo }
func (m MsgServerInfo) Pack() []byte {
	return NewWriter().U16(0 /* reserved */).U16(m.ClientID).StringVec(m.Nodes).StringVec(m.Codecs).Bytes()
}
func (m *MsgServerInfo) unpack(r *Reader) (e liberr.Error) {
	if _, e = r.U16(); e != nil { // reserved
		return e
	}
	if m.ClientID, e = r.U16(); e != nil {
		return e
	}
	if m.Nodes, e = r.StringVec(); e != nil {
		return e
	}
	m.Codecs, e = r.StringVec()
	return e
}

type MsgNodeList struct{ Nodes []string }

func (MsgNodeList) Type() uint16   { return TypeNodeList }
func (m MsgNodeList) Pack() []byte { return NewWriter().StringVec(m.Nodes).Bytes() }
func (m *MsgNodeList) unpack(r *Reader) (e liberr.Error) {
	m.Nodes, e = r.StringVec()
	return e
}

type MsgNodeJoined struct{ Callsign string }

func (MsgNodeJoined) Type() uint16   { return TypeNodeJoined }
func (m MsgNodeJoined) Pack() []byte { return NewWriter().String(m.Callsign).Bytes() }
func (m *MsgNodeJoined) unpack(r *Reader) (e liberr.Error) {
	m.Callsign, e = r.String()
	return e
}

type MsgNodeLeft struct{ Callsign string }

func (MsgNodeLeft) Type() uint16   { return TypeNodeLeft }
func (m MsgNodeLeft) Pack() []byte { return NewWriter().String(m.Callsign).Bytes() }
func (m *MsgNodeLeft) unpack(r *Reader) (e liberr.Error) {
	m.Callsign, e = r.String()
	return e
}

// MsgTalkerStart carries TG=0 for the V1 variant, which omits the field on
// the wire (V1 clients only ever hear about their single configured TG).
type MsgTalkerStart struct {
	TG       uint32
	Callsign string
	V1       bool
}

func (MsgTalkerStart) Type() uint16 { return TypeTalkerStart }
func (m MsgTalkerStart) Pack() []byte {
	w := NewWriter()
	if !m.V1 {
		w.U32(m.TG)
	}
	return w.String(m.Callsign).Bytes()
}
func (m *MsgTalkerStart) unpack(r *Reader) (e liberr.Error) {
	if !m.V1 {
		if m.TG, e = r.U32(); e != nil {
			return e
		}
	}
	m.Callsign, e = r.String()
	return e
}

type MsgTalkerStop struct {
	TG       uint32
	Callsign string
	V1       bool
}

func (MsgTalkerStop) Type() uint16 { return TypeTalkerStop }
func (m MsgTalkerStop) Pack() []byte {
	w := NewWriter()
	if !m.V1 {
		w.U32(m.TG)
	}
	return w.String(m.Callsign).Bytes()
}
func (m *MsgTalkerStop) unpack(r *Reader) (e liberr.Error) {
	if !m.V1 {
		if m.TG, e = r.U32(); e != nil {
			return e
		}
	}
	m.Callsign, e = r.String()
	return e
}

type MsgSelectTG struct{ TG uint32 }

func (MsgSelectTG) Type() uint16   { return TypeSelectTG }
func (m MsgSelectTG) Pack() []byte { return NewWriter().U32(m.TG).Bytes() }
func (m *MsgSelectTG) unpack(r *Reader) (e liberr.Error) {
	m.TG, e = r.U32()
	return e
}

type MsgTgMonitor struct{ TGs []uint32 }

func (MsgTgMonitor) Type() uint16   { return TypeTgMonitor }
func (m MsgTgMonitor) Pack() []byte { return NewWriter().U32Set(m.TGs).Bytes() }
func (m *MsgTgMonitor) unpack(r *Reader) (e liberr.Error) {
	m.TGs, e = r.U32Set()
	return e
}

// MsgNodeInfoJSON is the legacy (protocol<3 compatible) textual node-info
// carrier: a single free-form JSON blob, forwarded unparsed (C9).
type MsgNodeInfoJSON struct{ JSON string }

func (MsgNodeInfoJSON) Type() uint16   { return TypeNodeInfoJSON }
func (m MsgNodeInfoJSON) Pack() []byte { return NewWriter().String(m.JSON).Bytes() }
func (m *MsgNodeInfoJSON) unpack(r *Reader) (e liberr.Error) {
	m.JSON, e = r.String()
	return e
}

type MsgRequestQsy struct{ TG uint32 }

func (MsgRequestQsy) Type() uint16   { return TypeRequestQsy }
func (m MsgRequestQsy) Pack() []byte { return NewWriter().U32(m.TG).Bytes() }
func (m *MsgRequestQsy) unpack(r *Reader) (e liberr.Error) {
	m.TG, e = r.U32()
	return e
}

// MsgStateEvent is a free-form named event, forwarded unparsed (C9).
type MsgStateEvent struct {
	Name string
	JSON string
}

func (MsgStateEvent) Type() uint16 { return TypeStateEvent }
func (m MsgStateEvent) Pack() []byte {
	return NewWriter().String(m.Name).String(m.JSON).Bytes()
}
func (m *MsgStateEvent) unpack(r *Reader) (e liberr.Error) {
	if m.Name, e = r.String(); e != nil {
		return e
	}
	m.JSON, e = r.String()
	return e
}

// MsgNodeInfoV3 is the binary v3 node-info carrier: the client's chosen UDP
// IV-random prefix and cipher key, plus a free-form JSON metadata blob.
type MsgNodeInfoV3 struct {
	IVRand [UDPIVRandLen]byte
	UDPKey [UDPKeyLen]byte
	JSON   string
}

func (MsgNodeInfoV3) Type() uint16 { return TypeNodeInfoV3 }
func (m MsgNodeInfoV3) Pack() []byte {
	return NewWriter().Blob16(m.IVRand[:]).Blob16(m.UDPKey[:]).String(m.JSON).Bytes()
}
func (m *MsgNodeInfoV3) unpack(r *Reader) (e liberr.Error) {
	b, e := r.Blob16()
	if e != nil {
		return e
	}
	if len(b) != UDPIVRandLen {
		return ErrorBadString.Error(nil)
	}
	copy(m.IVRand[:], b)
	if b, e = r.Blob16(); e != nil {
		return e
	}
	if len(b) != UDPKeyLen {
		return ErrorBadString.Error(nil)
	}
	copy(m.UDPKey[:], b)
	m.JSON, e = r.String()
	return e
}

// RxStatus mirrors the original C++ MsgSignalStrengthValues::Rx bitfield
// layout (id, siglev, and three packed flag bits).
type RxStatus struct {
	ID       byte
	Siglev   int16
	Enabled  bool
	SqlOpen  bool
	Active   bool
}

const (
	rxBitEnabled = 1 << iota
	rxBitSqlOpen
	rxBitActive
)

type MsgSignalStrengthValues struct{ Rxs []RxStatus }

func (MsgSignalStrengthValues) Type() uint16 { return TypeSignalStrengthValues }
func (m MsgSignalStrengthValues) Pack() []byte {
	w := NewWriter().U16(uint16(len(m.Rxs)))
	for _, rx := range m.Rxs {
		var flags uint8
		if rx.Enabled {
			flags |= rxBitEnabled
		}
		if rx.SqlOpen {
			flags |= rxBitSqlOpen
		}
		if rx.Active {
			flags |= rxBitActive
		}
		w.U8(rx.ID).U16(uint16(rx.Siglev)).U8(flags)
	}
	return w.Bytes()
}
func (m *MsgSignalStrengthValues) unpack(r *Reader) liberr.Error {
	n, e := r.U16()
	if e != nil {
		return e
	}
	m.Rxs = make([]RxStatus, 0, n)
	for i := uint16(0); i < n; i++ {
		id, e := r.U8()
		if e != nil {
			return e
		}
		sig, e := r.U16()
		if e != nil {
			return e
		}
		flags, e := r.U8()
		if e != nil {
			return e
		}
		m.Rxs = append(m.Rxs, RxStatus{
			ID:      id,
			Siglev:  int16(sig),
			Enabled: flags&rxBitEnabled != 0,
			SqlOpen: flags&rxBitSqlOpen != 0,
			Active:  flags&rxBitActive != 0,
		})
	}
	return nil
}

type TxStatus struct {
	ID       byte
	Transmit bool
}

type MsgTxStatus struct{ Txs []TxStatus }

func (MsgTxStatus) Type() uint16 { return TypeTxStatus }
func (m MsgTxStatus) Pack() []byte {
	w := NewWriter().U16(uint16(len(m.Txs)))
	for _, tx := range m.Txs {
		var flags uint8
		if tx.Transmit {
			flags |= 1
		}
		w.U8(tx.ID).U8(flags)
	}
	return w.Bytes()
}
func (m *MsgTxStatus) unpack(r *Reader) liberr.Error {
	n, e := r.U16()
	if e != nil {
		return e
	}
	m.Txs = make([]TxStatus, 0, n)
	for i := uint16(0); i < n; i++ {
		id, e := r.U8()
		if e != nil {
			return e
		}
		flags, e := r.U8()
		if e != nil {
			return e
		}
		m.Txs = append(m.Txs, TxStatus{ID: id, Transmit: flags&1 != 0})
	}
	return nil
}

type MsgStartUdpEncryption struct{}

func (MsgStartUdpEncryption) Type() uint16                { return TypeStartUdpEncryption }
func (MsgStartUdpEncryption) Pack() []byte                { return nil }
func (*MsgStartUdpEncryption) unpack(*Reader) liberr.Error { return nil }
