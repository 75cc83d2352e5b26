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

// Command goreflectord is the SvxReflector-compatible audio reflector
// daemon: it terminates the framed TCP control channel and the AEAD UDP
// audio channel, runs the talk-group dispatcher, and hosts the operator
// PTY and CA lifecycle described by the other packages in this module.
package main

import (
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	liberr "github.com/svxreflector/goreflector/errors"
	"github.com/svxreflector/goreflector/logger"
	"github.com/svxreflector/goreflector/pki"
	"github.com/svxreflector/goreflector/protocol"
	"github.com/svxreflector/goreflector/reflcfg"
	"github.com/svxreflector/goreflector/registry"
	"github.com/svxreflector/goreflector/session"
	"github.com/svxreflector/goreflector/talkgroup"
	"github.com/svxreflector/goreflector/transport"
)

// Server owns every long-lived component of one reflector process: the
// live config, the CA, the client registry, the talk-group dispatcher,
// and the two listeners driving the session state machines.
type Server struct {
	cfg  *reflcfg.Store
	ca   *pki.Manager
	reg  *registry.Registry
	disp *talkgroup.Dispatcher

	tcpLn  net.Listener
	udpCon *net.UDPConn

	tlsCfg *tls.Config

	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// NewServer loads configPath, bootstraps the CA rooted at pkiRoot and
// wires the registry and dispatcher together. It does not open any
// socket; call Serve for that.
func NewServer(ctx context.Context, configPath, pkiRoot string) (*Server, liberr.Error) {
	cfg, err := reflcfg.New(configPath)
	if err != nil {
		return nil, ErrorConfigLoad.ErrorParent(err)
	}

	cn, sans := cfg.ServerCertSpec()
	ca := pki.New(pkiRoot, cn, sans)
	if err = ca.Bootstrap(); err != nil {
		return nil, ErrorPKIBootstrap.ErrorParent(err)
	}
	ca.SetHook(cfg.CAHookPath())

	reg := registry.New()
	disp := talkgroup.New(reg, cfg, prometheus.DefaultRegisterer)

	sctx, cancel := context.WithCancel(ctx)
	return &Server{
		cfg:    cfg,
		ca:     ca,
		reg:    reg,
		disp:   disp,
		ctx:    sctx,
		cancel: cancel,
	}, nil
}

// Serve opens the TCP and UDP sockets and blocks, driving accept and
// receive loops until ctx is cancelled or Shutdown is called.
func (s *Server) Serve() liberr.Error {
	addr := &net.TCPAddr{Port: int(s.cfg.ListenPort())}
	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return ErrorListen.ErrorParent(err)
	}
	s.tcpLn = ln

	udpAddr := &net.UDPAddr{Port: int(s.cfg.ListenPort())}
	uc, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		_ = ln.Close()
		return ErrorUDPListen.ErrorParent(err)
	}
	s.udpCon = uc

	tlsCfg, terr := s.ca.ServerTLSConfig(s.ca.RootPool)
	if terr != nil {
		_ = ln.Close()
		_ = uc.Close()
		return terr
	}
	s.tlsCfg = tlsCfg

	s.disp.Start()
	s.cfg.OnReload(func() {
		logger.InfoLevel.Logf("config reloaded from disk")
	})

	s.wg.Add(2)
	go s.acceptLoop()
	go s.udpLoop()

	<-s.ctx.Done()
	return nil
}

// Shutdown stops the accept/receive loops and closes both sockets. It
// does not forcibly close already-established sessions; those drain on
// their own heartbeat timeouts or client disconnects.
func (s *Server) Shutdown() {
	s.cancel()
	s.disp.Stop()
	if s.tcpLn != nil {
		_ = s.tcpLn.Close()
	}
	if s.udpCon != nil {
		_ = s.udpCon.Close()
	}
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.tcpLn.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				logger.ErrorLevel.Logf("accept failed: %s", err.Error())
				return
			}
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	id, err := s.reg.ReserveID()
	if err != nil {
		logger.WarnLevel.Logf("client id space exhausted, dropping connection from %s", conn.RemoteAddr())
		_ = conn.Close()
		return
	}

	remoteIP := remoteIPOf(conn)
	fc := transport.NewFrameConn(conn)
	sess := session.New(id, fc, remoteIP)
	s.reg.Add(sess)

	defer func() {
		_ = s.disp.Switch(sess, 0)
		s.reg.Remove(sess)
		_ = sess.Close()
	}()

	s.runHandshake(sess)
}

func remoteIPOf(conn net.Conn) net.IP {
	if a, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		return a.IP
	}
	return nil
}

// maxUDPDatagram is comfortably above a single Opus/GSM audio frame plus
// AEAD/legacy framing overhead; anything larger is truncated by ReadFromUDP
// and rejected downstream as a bad frame.
const maxUDPDatagram = 2048

// udpLoop reads every inbound datagram on the shared UDP socket and routes
// it to the owning session, classifying registration vs. already-bound
// peers per §4.2/§6.
func (s *Server) udpLoop() {
	defer s.wg.Done()
	buf := make([]byte, maxUDPDatagram)
	for {
		n, addr, err := s.udpCon.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				logger.ErrorLevel.Logf("udp read failed: %s", err.Error())
				return
			}
		}
		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		s.handleUDPDatagram(datagram, addr)
	}
}

func (s *Server) handleUDPDatagram(datagram []byte, addr *net.UDPAddr) {
	key := registry.UDPPeerKey{IP: addr.IP.String(), Port: addr.Port}

	if sess, ok := s.reg.ByUDPPeer(key); ok {
		s.processUDP(sess, datagram)
		return
	}

	if sess, ok := s.identifyLegacyRegistration(datagram); ok {
		sess.BindUDP(addr, transport.UDPKey{}, transport.UDPIVRand{})
		s.reg.BindUDPPeer(key, sess)
		s.processUDP(sess, datagram)
		return
	}

	if sess, ok := s.identifyAEADRegistration(datagram); ok {
		pendKey, pendIV, pok := sess.PendingUDPKey()
		if !pok {
			return
		}
		sess.BindUDP(addr, pendKey, pendIV)
		s.reg.BindUDPPeer(key, sess)
		s.processUDP(sess, datagram)
	}
}

// identifyLegacyRegistration recognizes a protocol<3 client's first
// datagram by its plaintext client-id header. Client-id 0 is never
// allocated, which disambiguates this from an AEAD registration datagram
// (whose first four bytes, the zero counter, would read as client-id 0
// under this interpretation).
func (s *Server) identifyLegacyRegistration(datagram []byte) (*session.Session, bool) {
	hdr, _, derr := protocol.DecodeLegacyV2Header(datagram)
	if derr != nil || hdr.ClientID == 0 {
		return nil, false
	}
	sess, ok := s.reg.ByClientID(hdr.ClientID)
	if !ok || !sess.UsesLegacyUDP() {
		return nil, false
	}
	return sess, true
}

func (s *Server) identifyAEADRegistration(datagram []byte) (*session.Session, bool) {
	counter, isReg, ok := transport.PeekCounter(datagram)
	if !ok || !isReg || counter != 0 {
		return nil, false
	}
	clientID, ok := transport.PeekRegistrationClientID(datagram)
	if !ok {
		return nil, false
	}
	sess, ok := s.reg.ByClientID(clientID)
	if !ok || sess.UsesLegacyUDP() {
		return nil, false
	}
	return sess, true
}

// processUDP decrypts (or, for legacy clients, strips the plaintext
// header from) one datagram already routed to sess, then dispatches its
// payload (§4.2, §4.7).
func (s *Server) processUDP(sess *session.Session, datagram []byte) {
	var plain []byte

	if sess.UsesLegacyUDP() {
		hdr, rest, derr := protocol.DecodeLegacyV2Header(datagram)
		if derr != nil {
			return
		}
		if !sess.CheckLegacyRxSeq(hdr.Seq) {
			return
		}
		plain = rest
	} else {
		p, _, oerr := sess.OpenIncoming(datagram)
		if oerr != nil {
			return
		}
		plain = p
	}
	sess.MarkUDPRx()

	msgType, msg, derr := protocol.DecodeUDP(plain)
	if derr != nil {
		return
	}

	switch msgType {
	case protocol.UDPTypeHeartbeat:
		// liveness only
	case protocol.UDPTypeAudio:
		audio := msg.(*protocol.MsgUdpAudio).Audio
		s.disp.AudioReceived(sess, sess.CurrentTG(), audio, s.udpCon)
	case protocol.UDPTypeSignalStrength:
		m := msg.(*protocol.MsgUdpSignalStrength)
		sess.SetRxStatus(protocol.RxStatus{ID: m.RxID, Siglev: m.Siglev, Enabled: true})
	case protocol.UDPTypeFlushSamples, protocol.UDPTypeAllSamplesFlushed:
		// jitter-buffer bookkeeping lives client-side; nothing to do here.
	}
}
