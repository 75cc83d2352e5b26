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

package transport

import (
	"crypto/tls"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"

	liberr "github.com/svxreflector/goreflector/errors"
	"github.com/svxreflector/goreflector/protocol"
)

// FrameConn wraps a net.Conn (plain or *tls.Conn) with u16-length-prefixed
// framing and a per-phase maximum frame size, matching §4.1. The max size
// is read atomically so the dispatcher goroutine can tighten or loosen it
// from a phase transition without racing the reader goroutine.
type FrameConn struct {
	conn    net.Conn
	maxSize atomic.Int64

	wmu sync.Mutex
}

func NewFrameConn(c net.Conn) *FrameConn {
	fc := &FrameConn{conn: c}
	fc.maxSize.Store(protocol.MaxPreAuthFrameSize)
	return fc
}

// SetMaxFrameSize adjusts the ceiling enforced by ReadFrame. Called at
// every phase transition (§4.1).
func (f *FrameConn) SetMaxFrameSize(n int) { f.maxSize.Store(int64(n)) }

func (f *FrameConn) RemoteAddr() net.Addr { return f.conn.RemoteAddr() }

// ReadFrame reads one length-prefixed frame. An over-size length is
// rejected before any payload buffer is allocated, so a malicious peer
// cannot force an allocation bigger than the phase allows (§8, boundary
// behavior: "before allocation of payload buffers >= 64 bytes").
func (f *FrameConn) ReadFrame() ([]byte, liberr.Error) {
	var hdr [2]byte
	if _, err := io.ReadFull(f.conn, hdr[:]); err != nil {
		return nil, ErrorClosed.ErrorParent(err)
	}
	n := int(binary.BigEndian.Uint16(hdr[:]))
	if n > int(f.maxSize.Load()) {
		return nil, ErrorFrameTooLarge.Error(nil)
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.conn, buf); err != nil {
		return nil, ErrorClosed.ErrorParent(err)
	}
	return buf, nil
}

// WriteFrame writes a length-prefixed frame. Any partial write is treated
// as fatal for the session (§4.1: "Failure to write a whole message must
// trigger disconnect").
func (f *FrameConn) WriteFrame(payload []byte) liberr.Error {
	if len(payload) > 0xFFFF {
		return ErrorFrameTooLarge.Error(nil)
	}
	f.wmu.Lock()
	defer f.wmu.Unlock()

	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(payload)))
	if n, err := f.conn.Write(hdr[:]); err != nil || n != len(hdr) {
		return ErrorShortWrite.ErrorParent(err)
	}
	if len(payload) == 0 {
		return nil
	}
	if n, err := f.conn.Write(payload); err != nil || n != len(payload) {
		return ErrorShortWrite.ErrorParent(err)
	}
	return nil
}

func (f *FrameConn) Close() error { return f.conn.Close() }

// UpgradeTLS wraps the underlying connection in TLS, performs the
// handshake and, when clientAuthRequired, verifies a non-empty peer
// certificate common name. The upgraded *tls.Conn replaces the plain
// conn for all subsequent ReadFrame/WriteFrame calls.
func (f *FrameConn) UpgradeTLS(cfg *tls.Config, clientAuthRequired bool) (peerCN string, err liberr.Error) {
	tc := tls.Server(f.conn, cfg)
	if e := tc.Handshake(); e != nil {
		return "", ErrorClosed.ErrorParent(e)
	}
	f.conn = tc

	state := tc.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		if clientAuthRequired {
			return "", ErrorNoPeerCert.Error(nil)
		}
		return "", nil
	}
	cn := state.PeerCertificates[0].Subject.CommonName
	if cn == "" {
		return "", ErrorBadPeerCN.Error(nil)
	}
	return cn, nil
}
