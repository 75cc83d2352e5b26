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

package session

import (
	"net"
	"sync"
	"time"

	libatm "github.com/svxreflector/goreflector/atomic"
	liberr "github.com/svxreflector/goreflector/errors"
	"github.com/svxreflector/goreflector/protocol"
	"github.com/svxreflector/goreflector/transport"
)

// Heartbeat timing (§5, "Heartbeat discipline").
const (
	TCPHeartbeatSilence = 10 * time.Second
	TCPDeadline         = 15 * time.Second
	UDPHeartbeatSilence = 15 * time.Second
	UDPDeadline         = 120 * time.Second
)

// Session is one connected node's protocol state: its TCP control
// connection, its UDP cipher material, heartbeat clocks, current
// talk-group membership and status blobs. Exported fields are immutable
// after construction; everything that changes after the handshake is an
// atomic.Value/MapTyped so the per-connection reader goroutine and the
// talk-group dispatcher's broadcast pass never need a shared lock for
// the hot path.
type Session struct {
	ClientID uint16
	Conn     *transport.FrameConn
	RemoteIP net.IP

	phase    libatm.Value[protocol.Phase]
	protoVer libatm.Value[protocol.ProtoVer]
	callsign libatm.Value[string]

	udpMu      sync.Mutex
	udpAddr    *net.UDPAddr
	udpKey     transport.UDPKey
	udpIVRand  transport.UDPIVRand
	udpTxCntr  uint32
	udpRxWin   transport.ReplayWindow
	legacyTxSeq uint16
	legacyRxSeq uint16

	pendingUDPKey    transport.UDPKey
	pendingUDPIVRand transport.UDPIVRand
	pendingUDPSet    bool

	tcpLastRx libatm.Value[int64] // unix nano
	tcpLastTx libatm.Value[int64]
	udpLastRx libatm.Value[int64]
	udpLastTx libatm.Value[int64]

	blockedUntil libatm.Value[int64] // unix nano; zero means not blocked

	currentTG    libatm.Value[uint32]
	monitoredTGs libatm.MapTyped[uint32, struct{}]

	rxStatus libatm.MapTyped[byte, protocol.RxStatus]
	txStatus libatm.MapTyped[byte, protocol.TxStatus]

	nodeInfo libatm.Value[string]

	certRenewAt libatm.Value[time.Time]

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps an accepted, not-yet-authenticated TCP connection. clientID
// must already be reserved in the registry's allocator.
func New(clientID uint16, conn *transport.FrameConn, remoteIP net.IP) *Session {
	s := &Session{
		ClientID: clientID,
		Conn:     conn,
		RemoteIP: remoteIP,
		closed:   make(chan struct{}),

		phase:    libatm.NewValue[protocol.Phase](),
		protoVer: libatm.NewValue[protocol.ProtoVer](),
		callsign: libatm.NewValue[string](),

		tcpLastRx: libatm.NewValue[int64](),
		tcpLastTx: libatm.NewValue[int64](),
		udpLastRx: libatm.NewValue[int64](),
		udpLastTx: libatm.NewValue[int64](),

		blockedUntil: libatm.NewValue[int64](),

		currentTG:    libatm.NewValue[uint32](),
		monitoredTGs: libatm.NewMapTyped[uint32, struct{}](),

		rxStatus: libatm.NewMapTyped[byte, protocol.RxStatus](),
		txStatus: libatm.NewMapTyped[byte, protocol.TxStatus](),

		nodeInfo:    libatm.NewValue[string](),
		certRenewAt: libatm.NewValue[time.Time](),
	}
	s.phase.Store(protocol.PhaseExpectProtoVer)
	now := time.Now().UnixNano()
	s.tcpLastRx.Store(now)
	s.tcpLastTx.Store(now)
	return s
}

func (s *Session) Phase() protocol.Phase { return s.phase.Load() }

// SetPhase transitions the session and tightens/loosens the TCP frame
// ceiling to match (§4.1, §4.4).
func (s *Session) SetPhase(p protocol.Phase) {
	s.phase.Store(p)
	s.Conn.SetMaxFrameSize(p.MaxFrameSize())
}

// CheckPhase reports whether msgType is legal in the session's current
// phase, wrapped as a liberr.Error ready to send back as MsgError.
func (s *Session) CheckPhase(msgType uint16) liberr.Error {
	if !protocol.AllowedInPhase(s.phase.Load(), msgType) {
		return ErrorWrongPhase.Error(nil)
	}
	return nil
}

func (s *Session) ProtoVer() protocol.ProtoVer   { return s.protoVer.Load() }
func (s *Session) SetProtoVer(v protocol.ProtoVer) { s.protoVer.Store(v) }

func (s *Session) Callsign() string      { return s.callsign.Load() }
func (s *Session) SetCallsign(cs string) { s.callsign.Store(cs) }

// IsV1 reports whether this client speaks the pre-TG-field talker
// start/stop variant (§4.7 supplemented behavior).
func (s *Session) IsV1() bool {
	return s.protoVer.Load().Major <= 1
}

// UsesLegacyUDP reports whether this client predates protocol 3's AEAD
// UDP framing and must be served the unencrypted V2 header instead.
func (s *Session) UsesLegacyUDP() bool {
	return s.protoVer.Load().Less(protocol.V2Boundary)
}

// --- TCP heartbeat bookkeeping ---

func (s *Session) MarkTCPRx() { s.tcpLastRx.Store(time.Now().UnixNano()) }
func (s *Session) MarkTCPTx() { s.tcpLastTx.Store(time.Now().UnixNano()) }

// TCPIdle reports how long it has been since the last inbound/outbound
// TCP traffic, for the heartbeat timer to compare against
// TCPHeartbeatSilence / TCPDeadline.
func (s *Session) TCPRxIdle() time.Duration {
	return time.Since(time.Unix(0, s.tcpLastRx.Load()))
}

func (s *Session) TCPTxIdle() time.Duration {
	return time.Since(time.Unix(0, s.tcpLastTx.Load()))
}

// --- UDP peer binding, cipher material and heartbeat bookkeeping ---

// BindUDP records the client's UDP source address the first time a
// datagram arrives from it, and the per-client key/IV-rand negotiated
// over TCP during StartUdpEncryption (§4.2, §6).
func (s *Session) BindUDP(addr *net.UDPAddr, key transport.UDPKey, ivRand transport.UDPIVRand) {
	s.udpMu.Lock()
	defer s.udpMu.Unlock()
	s.udpAddr = addr
	s.udpKey = key
	s.udpIVRand = ivRand
	s.udpRxWin.Reset()
	s.udpTxCntr = 0
}

// SetPendingUDPKey records the cipher material a v3 client announced over
// TCP (MsgNodeInfoV3), ahead of seeing its UDP registration datagram.
// udpLoop consumes it via PendingUDPKey once that datagram arrives.
func (s *Session) SetPendingUDPKey(key transport.UDPKey, ivRand transport.UDPIVRand) {
	s.udpMu.Lock()
	defer s.udpMu.Unlock()
	s.pendingUDPKey = key
	s.pendingUDPIVRand = ivRand
	s.pendingUDPSet = true
}

func (s *Session) PendingUDPKey() (key transport.UDPKey, ivRand transport.UDPIVRand, ok bool) {
	s.udpMu.Lock()
	defer s.udpMu.Unlock()
	return s.pendingUDPKey, s.pendingUDPIVRand, s.pendingUDPSet
}

func (s *Session) UDPAddr() *net.UDPAddr {
	s.udpMu.Lock()
	defer s.udpMu.Unlock()
	return s.udpAddr
}

// SealNext seals plaintext with this session's UDP key/IV-rand using the
// next outbound counter, and advances the counter.
func (s *Session) SealNext(plaintext []byte) ([]byte, liberr.Error) {
	s.udpMu.Lock()
	key, ivRand := s.udpKey, s.udpIVRand
	cntr := s.udpTxCntr
	s.udpTxCntr++
	s.udpMu.Unlock()
	return transport.SealDatagram(key, ivRand, s.ClientID, cntr, plaintext)
}

// OpenIncoming decrypts a datagram addressed to this session and
// classifies its counter against the replay window. Returns the
// plaintext and whether the caller should additionally report a gap.
func (s *Session) OpenIncoming(datagram []byte) (plaintext []byte, gap bool, err liberr.Error) {
	s.udpMu.Lock()
	key, ivRand := s.udpKey, s.udpIVRand
	s.udpMu.Unlock()

	counter, plain, derr := transport.OpenDatagram(key, ivRand, s.ClientID, datagram)
	if derr != nil {
		return nil, false, derr
	}

	s.udpMu.Lock()
	decision := s.udpRxWin.Classify(counter)
	s.udpMu.Unlock()

	switch decision {
	case transport.ReplayDrop:
		return nil, false, ErrorWrongPhase.Error(nil)
	case transport.ReplayAcceptGap:
		return plain, true, nil
	default:
		return plain, false, nil
	}
}

// NextLegacyTxSeq returns and advances the V2 (unencrypted) outbound
// sequence counter for protocol <3 clients.
func (s *Session) NextLegacyTxSeq() uint16 {
	s.udpMu.Lock()
	defer s.udpMu.Unlock()
	seq := s.legacyTxSeq
	s.legacyTxSeq++
	return seq
}

// CheckLegacyRxSeq applies the same ordering policy as the AEAD path to
// the V2 header's plain sequence number, independently per direction
// (decision recorded in DESIGN.md: "Open Question decisions").
func (s *Session) CheckLegacyRxSeq(seq uint16) bool {
	s.udpMu.Lock()
	defer s.udpMu.Unlock()
	accept := seq >= s.legacyRxSeq
	if accept {
		s.legacyRxSeq = seq + 1
	}
	return accept
}

func (s *Session) MarkUDPRx() { s.udpLastRx.Store(time.Now().UnixNano()) }
func (s *Session) MarkUDPTx() { s.udpLastTx.Store(time.Now().UnixNano()) }

func (s *Session) UDPRxIdle() time.Duration {
	last := s.udpLastRx.Load()
	if last == 0 {
		return 0
	}
	return time.Since(time.Unix(0, last))
}

func (s *Session) UDPTxIdle() time.Duration {
	last := s.udpLastTx.Load()
	if last == 0 {
		return 0
	}
	return time.Since(time.Unix(0, last))
}

// --- Block state (§9 authorization: "block-in-effect") ---

func (s *Session) Block(d time.Duration) {
	s.blockedUntil.Store(time.Now().Add(d).UnixNano())
}

func (s *Session) Unblock() { s.blockedUntil.Store(0) }

func (s *Session) IsBlocked() bool {
	until := s.blockedUntil.Load()
	return until != 0 && time.Now().UnixNano() < until
}

// --- Talk-group selection and monitoring ---

func (s *Session) CurrentTG() uint32      { return s.currentTG.Load() }
func (s *Session) SetCurrentTG(tg uint32) { s.currentTG.Store(tg) }

func (s *Session) IsMonitoring(tg uint32) bool {
	_, ok := s.monitoredTGs.Load(tg)
	return ok || tg == s.currentTG.Load()
}

func (s *Session) AddMonitoredTG(tg uint32)    { s.monitoredTGs.Store(tg, struct{}{}) }
func (s *Session) RemoveMonitoredTG(tg uint32) { s.monitoredTGs.Delete(tg) }

func (s *Session) MonitoredTGs() []uint32 {
	out := make([]uint32, 0, 8)
	s.monitoredTGs.Range(func(tg uint32, _ struct{}) bool {
		out = append(out, tg)
		return true
	})
	return out
}

// --- Per-RX/TX status (§4, MsgSignalStrengthValues / MsgTxStatus) ---

func (s *Session) SetRxStatus(st protocol.RxStatus) { s.rxStatus.Store(st.ID, st) }
func (s *Session) SetTxStatus(st protocol.TxStatus) { s.txStatus.Store(st.ID, st) }

func (s *Session) RxStatuses() []protocol.RxStatus {
	out := make([]protocol.RxStatus, 0, 4)
	s.rxStatus.Range(func(_ byte, v protocol.RxStatus) bool {
		out = append(out, v)
		return true
	})
	return out
}

func (s *Session) TxStatuses() []protocol.TxStatus {
	out := make([]protocol.TxStatus, 0, 4)
	s.txStatus.Range(func(_ byte, v protocol.TxStatus) bool {
		out = append(out, v)
		return true
	})
	return out
}

func (s *Session) NodeInfo() string      { return s.nodeInfo.Load() }
func (s *Session) SetNodeInfo(blob string) { s.nodeInfo.Store(blob) }

// --- Peer certificate renewal ---

func (s *Session) SetCertRenewAt(t time.Time) { s.certRenewAt.Store(t) }
func (s *Session) CertRenewAt() time.Time     { return s.certRenewAt.Load() }
func (s *Session) CertDueForRenewal() bool {
	t := s.certRenewAt.Load()
	return !t.IsZero() && !time.Now().Before(t)
}

// --- Outbound TCP messages ---

// SendMsg encodes and writes an admin or user-level message, marking the
// TCP heartbeat clock so an otherwise-idle connection doesn't trigger a
// spurious keepalive right after a real message went out.
func (s *Session) SendMsg(m protocol.Message) liberr.Error {
	if err := s.Conn.WriteFrame(protocol.Encode(m)); err != nil {
		return err
	}
	s.MarkTCPTx()
	return nil
}

// SendUDP writes one UDP message to this session's bound peer address
// over conn, choosing AEAD v3 framing or the unencrypted legacy V2 header
// depending on the negotiated protocol version. A nil UDP address (no
// registration datagram seen yet) is a silent no-op, matching the
// broadcast engine's "best effort" fan-out semantics.
func (s *Session) SendUDP(conn *net.UDPConn, msg protocol.UDPMessage) liberr.Error {
	addr := s.UDPAddr()
	if addr == nil {
		return nil
	}
	plain := protocol.EncodeUDP(msg)

	var datagram []byte
	if s.UsesLegacyUDP() {
		hdr := protocol.LegacyV2Header{ClientID: s.ClientID, Seq: s.NextLegacyTxSeq()}
		datagram = append(hdr.Pack(), plain...)
	} else {
		d, err := s.SealNext(plain)
		if err != nil {
			return err
		}
		datagram = d
	}

	if _, werr := conn.WriteToUDP(datagram, addr); werr != nil {
		return ErrorWrongPhase.ErrorParent(werr)
	}
	s.MarkUDPTx()
	return nil
}

// --- Lifecycle ---

// Done returns a channel closed once the session is torn down, for
// heartbeat/TG timers to select on alongside their ticker.
func (s *Session) Done() <-chan struct{} { return s.closed }

func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.Conn.Close()
	})
	return err
}
