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

package main

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"time"

	"github.com/svxreflector/goreflector/logger"
	"github.com/svxreflector/goreflector/pki"
	"github.com/svxreflector/goreflector/protocol"
	"github.com/svxreflector/goreflector/session"
)

// runHandshake drives one accepted connection's session through every
// phase of §4.4 up to CONNECTED, then keeps dispatching user-level
// messages until the peer disconnects or a heartbeat deadline lapses. It
// never returns an error to its caller: every failure path sends a
// best-effort MsgError and simply returns, letting handleConn's deferred
// cleanup unwind the session (§7, "local-only" error propagation).
func (s *Server) runHandshake(sess *session.Session) {
	s.watchTCPHeartbeat(sess)

	downgradeSent := false
	var challenge [protocol.AuthChallengeLen]byte

	for {
		payload, rerr := sess.Conn.ReadFrame()
		if rerr != nil {
			return
		}
		if payload == nil {
			continue // heartbeat: zero-length frame
		}
		sess.MarkTCPRx()

		msgType, msg, derr := protocol.Decode(payload)
		if derr != nil {
			s.sendError(sess, ErrorBadFrame.Error(nil).Error())
			return
		}
		if msgType == protocol.TypeHeartbeat {
			continue
		}
		if msgType == protocol.TypeError {
			return
		}
		if cerr := sess.CheckPhase(msgType); cerr != nil {
			s.sendError(sess, cerr.Error())
			return
		}

		switch sess.Phase() {
		case protocol.PhaseExpectProtoVer:
			m := msg.(*protocol.MsgProtoVer)
			want := protocol.CurrentProtoVersion
			got := protocol.ProtoVer{Major: m.Major, Minor: m.Minor}
			if got.Greater(want) {
				if downgradeSent {
					s.sendError(sess, ErrorProtoDowngrade.Error(nil).Error())
					return
				}
				downgradeSent = true
				_ = sess.SendMsg(&protocol.MsgProtoVerDowngrade{Major: want.Major, Minor: want.Minor})
				continue
			}
			sess.SetProtoVer(got)
			if got.Less(protocol.V2Boundary) {
				if !s.beginLegacyAuth(sess, &challenge) {
					return
				}
			} else {
				sess.SetPhase(protocol.PhaseExpectStartEncryption)
			}

		case protocol.PhaseExpectStartEncryption:
			switch msg.(type) {
			case *protocol.MsgCABundleRequest:
				digest := s.ca.CABundleDigest()
				_ = sess.SendMsg(&protocol.MsgCAInfo{Size: uint16(len(s.ca.CABundlePEM())), Md: digest[:]})
				_ = sess.SendMsg(&protocol.MsgCABundle{
					CAPem: s.ca.CABundlePEM(),
					Sig:   s.ca.CABundleSignature(),
				})
			case *protocol.MsgStartEncryptionRequest:
				if err := sess.SendMsg(&protocol.MsgStartEncryption{}); err != nil {
					return
				}
				peerCN, terr := sess.Conn.UpgradeTLS(s.tlsCfg, false)
				if terr != nil {
					logger.WarnLevel.Logf("%s: client %d: %s", ErrorTLSUpgrade.Error(nil).Error(), sess.ClientID, terr.Error())
					return
				}
				sess.SetPhase(protocol.PhaseExpectSSLConReady)
				if peerCN != "" {
					if !s.completeCertAuth(sess, peerCN) {
						return
					}
				} else {
					if err := sess.SendMsg(&protocol.MsgClientCsrRequest{}); err != nil {
						return
					}
					sess.SetPhase(protocol.PhaseExpectCSR)
				}
			}

		case protocol.PhaseExpectCSR:
			m := msg.(*protocol.MsgClientCsr)
			if !s.handleClientCSR(sess, m.PEM, &challenge) {
				return
			}

		case protocol.PhaseExpectAuthResponse:
			m := msg.(*protocol.MsgAuthResponse)
			if !s.verifyLegacyAuth(sess, m, challenge) {
				return
			}

		case protocol.PhaseConnected:
			if !s.dispatchConnected(sess, msg) {
				return
			}

		default:
			return
		}
	}
}

// beginLegacyAuth issues the HMAC-SHA1 challenge for a protocol<3 client
// (S2) and transitions to EXPECT_AUTH_RESPONSE. There is no TLS upgrade
// and no CSR flow on this path: legacy clients authenticate with a
// pre-shared group secret instead of a client certificate.
func (s *Server) beginLegacyAuth(sess *session.Session, challenge *[protocol.AuthChallengeLen]byte) bool {
	if _, err := rand.Read(challenge[:]); err != nil {
		return false
	}
	sess.SetPhase(protocol.PhaseExpectAuthResponse)
	return sess.SendMsg(&protocol.MsgAuthChallenge{Challenge: *challenge}) == nil
}

// completeCertAuth finishes the EXPECT_SSL_CON_READY transition once TLS
// handed back a non-empty peer certificate CN: the CN is trusted as the
// callsign directly, no CSR/auth-challenge round trip needed.
func (s *Server) completeCertAuth(sess *session.Session, peerCN string) bool {
	if !s.cfg.CallsignAllowed(peerCN) {
		s.sendError(sess, "callsign not permitted")
		return false
	}
	if err := s.reg.BindCallsign(peerCN, sess); err != nil {
		s.sendError(sess, err.Error())
		return false
	}
	sess.SetCallsign(peerCN)
	return s.enterConnected(sess)
}

// handleClientCSR drives §4.5's CSR intake from EXPECT_CSR: an
// already-signed cert short-circuits straight to disconnect (the client
// is expected to reconnect and present it over TLS next time); otherwise
// the CSR goes to the pending queue and the session falls back to the
// HMAC auth-challenge path so it can still reach CONNECTED this session.
func (s *Server) handleClientCSR(sess *session.Session, pemCSR string, challenge *[protocol.AuthChallengeLen]byte) bool {
	cn, cerr := csrCommonName(pemCSR)
	if cerr != nil {
		s.sendError(sess, "malformed certificate request")
		return false
	}
	if !s.cfg.CallsignAllowed(cn) {
		s.sendError(sess, "callsign not permitted")
		return false
	}

	result, certPEM, err := s.ca.SubmitCSR(cn, pemCSR)
	if err != nil {
		s.sendError(sess, err.Error())
		return false
	}
	if result == pki.CSRAlreadySigned {
		if werr := sess.SendMsg(&protocol.MsgClientCert{PEM: certPEM}); werr != nil {
			return false
		}
		sess.SetPhase(protocol.PhaseExpectDisconnect)
		return true
	}

	sess.SetCallsign(cn)
	return s.beginLegacyAuth(sess, challenge)
}

// verifyLegacyAuth checks the client's HMAC-SHA1 response against its
// group secret in constant time (S2) and, on success, completes the
// handshake the same way certificate auth does.
func (s *Server) verifyLegacyAuth(sess *session.Session, m *protocol.MsgAuthResponse, challenge [protocol.AuthChallengeLen]byte) bool {
	cs := m.Callsign
	if cs == "" {
		cs = sess.Callsign()
	}
	secret, ok := s.cfg.GroupSecret(cs)
	if !ok {
		s.sendError(sess, "unknown callsign or group")
		return false
	}

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(challenge[:])
	want := mac.Sum(nil)

	if subtle.ConstantTimeCompare(want, m.Digest[:]) != 1 {
		s.sendError(sess, ErrorAuthFailed.Error(nil).Error())
		return false
	}
	if !s.cfg.CallsignAllowed(cs) {
		s.sendError(sess, "callsign not permitted")
		return false
	}
	if err := s.reg.BindCallsign(cs, sess); err != nil {
		s.sendError(sess, err.Error())
		return false
	}
	sess.SetCallsign(cs)
	return s.enterConnected(sess)
}

// enterConnected sends MsgAuthOk + MsgServerInfo, announces the new node
// to everyone else already connected, and switches the phase to
// CONNECTED (§4.4, §4.6).
func (s *Server) enterConnected(sess *session.Session) bool {
	if err := sess.SendMsg(&protocol.MsgAuthOk{}); err != nil {
		return false
	}
	sess.SetPhase(protocol.PhaseConnected)

	nodes := make([]string, 0, s.reg.Count())
	s.reg.Range(func(o *session.Session) bool {
		if cs := o.Callsign(); cs != "" {
			nodes = append(nodes, cs)
		}
		return true
	})
	if err := sess.SendMsg(&protocol.MsgServerInfo{ClientID: sess.ClientID, Nodes: nodes}); err != nil {
		return false
	}

	s.disp.BroadcastMsg(&protocol.MsgNodeJoined{Callsign: sess.Callsign()}, func(o *session.Session) bool {
		return o != sess
	})
	return true
}

// dispatchConnected handles the user-level message set legal in
// CONNECTED (§4, "user-level messages"). CSR re-submission is legal even
// while connected (§4.5, certificate renewal).
func (s *Server) dispatchConnected(sess *session.Session, msg protocol.Message) bool {
	switch m := msg.(type) {
	case *protocol.MsgSelectTG:
		if err := s.disp.Switch(sess, m.TG); err != nil {
			s.sendError(sess, err.Error())
		}
	case *protocol.MsgTgMonitor:
		for _, tg := range sess.MonitoredTGs() {
			sess.RemoveMonitoredTG(tg)
		}
		for _, tg := range m.TGs {
			sess.AddMonitoredTG(tg)
		}
	case *protocol.MsgRequestQsy:
		if err := s.disp.RequestQsy(sess, m.TG); err != nil {
			s.sendError(sess, err.Error())
		}
	case *protocol.MsgNodeInfoV3:
		sess.SetPendingUDPKey(m.UDPKey, m.IVRand)
		sess.SetNodeInfo(m.JSON)
	case *protocol.MsgNodeInfoJSON:
		sess.SetNodeInfo(m.JSON)
	case *protocol.MsgStateEvent:
		logger.DebugLevel.Logf("state event from %s: %s", sess.Callsign(), m.Name)
	case *protocol.MsgSignalStrengthValues:
		for _, rx := range m.Rxs {
			sess.SetRxStatus(rx)
		}
	case *protocol.MsgTxStatus:
		for _, tx := range m.Txs {
			sess.SetTxStatus(tx)
		}
	case *protocol.MsgClientCsr:
		cn, cerr := csrCommonName(m.PEM)
		if cerr != nil {
			s.sendError(sess, "malformed certificate request")
			return false
		}
		if cn != sess.Callsign() {
			s.sendError(sess, "certificate request callsign mismatch")
			return false
		}
		result, certPEM, err := s.ca.SubmitCSR(cn, m.PEM)
		if err != nil {
			s.sendError(sess, err.Error())
			return false
		}
		if result == pki.CSRAlreadySigned {
			_ = sess.SendMsg(&protocol.MsgClientCert{PEM: certPEM})
		}
	}
	return true
}

// watchTCPHeartbeat runs for the life of the session: it sends a
// keepalive after TCPHeartbeatSilence of outbound silence and closes the
// connection after TCPDeadline of inbound silence (§5, "Heartbeat
// discipline"), forcing ReadFrame in runHandshake to unblock and return.
func (s *Server) watchTCPHeartbeat(sess *session.Session) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-sess.Done():
				return
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if sess.TCPRxIdle() >= session.TCPDeadline {
					logger.WarnLevel.Logf("%s: client %d", ErrorHandshakeTimeout.Error(nil).Error(), sess.ClientID)
					_ = sess.Close()
					return
				}
				if sess.TCPTxIdle() >= session.TCPHeartbeatSilence {
					_ = sess.SendMsg(&protocol.MsgHeartbeat{})
				}
			}
		}
	}()
}

func (s *Server) sendError(sess *session.Session, reason string) {
	_ = sess.SendMsg(&protocol.MsgError{Message: reason})
}
