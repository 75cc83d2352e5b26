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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"

	liberr "github.com/svxreflector/goreflector/errors"
	"github.com/svxreflector/goreflector/protocol"
)

// UDPKey is the per-client AES-128-GCM key (§4.2, §6).
type UDPKey [protocol.UDPKeyLen]byte

// UDPIVRand is the random prefix a client picks once at UDP registration
// and keeps for the life of the session; it becomes part of every IV.
type UDPIVRand [protocol.UDPIVRandLen]byte

// NewUDPIVRand draws a fresh random prefix from crypto/rand.
func NewUDPIVRand() (UDPIVRand, liberr.Error) {
	var r UDPIVRand
	if _, err := rand.Read(r[:]); err != nil {
		return r, ErrorDecrypt.ErrorParent(err)
	}
	return r, nil
}

// NewUDPKey draws a fresh random AES-128 key from crypto/rand.
func NewUDPKey() (UDPKey, liberr.Error) {
	var k UDPKey
	if _, err := rand.Read(k[:]); err != nil {
		return k, ErrorDecrypt.ErrorParent(err)
	}
	return k, nil
}

// composeIV builds the 12-byte GCM IV: rand-prefix || client-id || counter,
// all big-endian, matching UdpCipher::IV in the original reflector.
func composeIV(r UDPIVRand, clientID uint16, counter uint32) [protocol.UDPIVLen]byte {
	var iv [protocol.UDPIVLen]byte
	copy(iv[:protocol.UDPIVRandLen], r[:])
	binary.BigEndian.PutUint16(iv[protocol.UDPIVRandLen:], clientID)
	binary.BigEndian.PutUint32(iv[protocol.UDPIVRandLen+2:], counter)
	return iv
}

func newAEAD(key UDPKey) (cipher.AEAD, liberr.Error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, ErrorDecrypt.ErrorParent(err)
	}
	aead, err := cipher.NewGCMWithTagSize(block, protocol.UDPTagLen)
	if err != nil {
		return nil, ErrorDecrypt.ErrorParent(err)
	}
	return aead, nil
}

// SealDatagram encrypts plaintext into a ready-to-send UDP datagram. The
// associated data is the plain, unencrypted counter (4 bytes); when
// counter is 0 (the one-time registration datagram a client sends right
// after picking its UDP port) the AAD is extended with the 2-byte
// client-id so the server can route the very first datagram before it
// has learned the peer's (ip, port) pair (§4.2, §6).
func SealDatagram(key UDPKey, ivRand UDPIVRand, clientID uint16, counter uint32, plaintext []byte) ([]byte, liberr.Error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	aad := make([]byte, protocol.UDPAADLen, protocol.UDPAADLen+2)
	binary.BigEndian.PutUint32(aad, counter)
	if counter == 0 {
		aad = binary.BigEndian.AppendUint16(aad, clientID)
	}

	iv := composeIV(ivRand, clientID, counter)
	out := make([]byte, 0, len(aad)+len(plaintext)+protocol.UDPTagLen)
	out = append(out, aad...)
	out = aead.Seal(out, iv[:], plaintext, aad)
	return out, nil
}

// PeekCounter reads the plaintext counter out of a received datagram's
// leading AAD without needing the key, so the caller can decide which
// session's key/IV-rand to decrypt with. It returns ok=false if the
// datagram is too short to hold even the 4-byte counter.
func PeekCounter(datagram []byte) (counter uint32, isRegistration bool, ok bool) {
	if len(datagram) < protocol.UDPAADLen {
		return 0, false, false
	}
	counter = binary.BigEndian.Uint32(datagram)
	return counter, counter == 0, true
}

// PeekRegistrationClientID reads the client-id out of a registration
// datagram's extended AAD (counter==0). The caller uses this to look up
// the session before it knows the peer's source (ip, port).
func PeekRegistrationClientID(datagram []byte) (clientID uint16, ok bool) {
	if len(datagram) < protocol.UDPAADLen+2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(datagram[protocol.UDPAADLen:]), true
}

// OpenDatagram authenticates and decrypts a datagram produced by
// SealDatagram, returning the counter carried in its AAD and the
// recovered plaintext.
func OpenDatagram(key UDPKey, ivRand UDPIVRand, clientID uint16, datagram []byte) (counter uint32, plaintext []byte, err liberr.Error) {
	counter, isReg, ok := PeekCounter(datagram)
	if !ok {
		return 0, nil, ErrorBadAAD.Error(nil)
	}

	aadLen := protocol.UDPAADLen
	if isReg {
		aadLen += 2
	}
	if len(datagram) < aadLen {
		return 0, nil, ErrorBadAAD.Error(nil)
	}
	aad := datagram[:aadLen]
	ciphertext := datagram[aadLen:]

	aead, aerr := newAEAD(key)
	if aerr != nil {
		return 0, nil, aerr
	}
	iv := composeIV(ivRand, clientID, counter)
	plain, e := aead.Open(nil, iv[:], ciphertext, aad)
	if e != nil {
		return 0, nil, ErrorDecrypt.ErrorParent(e)
	}
	return counter, plain, nil
}

// ReplayDecision classifies an incoming datagram's counter against the
// next counter a session expects to receive (§4.2 ordering policy).
type ReplayDecision int

const (
	// ReplayAccept means the counter matched next-expected exactly;
	// advance by one.
	ReplayAccept ReplayDecision = iota
	// ReplayAcceptGap means the counter is ahead of next-expected; some
	// datagrams were lost in transit. Accept it and report the gap, then
	// resynchronize next-expected to counter+1.
	ReplayAcceptGap
	// ReplayDrop means the counter is at or behind next-expected; this is
	// a duplicate or reordered-late datagram and must be discarded.
	ReplayDrop
)

// ReplayWindow tracks the next counter expected from one peer in one
// direction. The registration datagram (counter 0) always resets it.
type ReplayWindow struct {
	next uint32
	seen bool
}

// Classify applies the ordering policy and advances internal state for
// anything it does not drop. It is not safe for concurrent use; callers
// serialize UDP receive per session (typically via a single reader
// goroutine per session or a mutex in the owning session).
func (w *ReplayWindow) Classify(counter uint32) ReplayDecision {
	if counter == 0 {
		w.next = 1
		w.seen = true
		return ReplayAccept
	}
	if !w.seen {
		w.next = counter + 1
		w.seen = true
		return ReplayAccept
	}
	switch {
	case counter < w.next:
		return ReplayDrop
	case counter > w.next:
		w.next = counter + 1
		return ReplayAcceptGap
	default:
		w.next++
		return ReplayAccept
	}
}

// Reset returns the window to its pre-registration state, used when a
// session re-registers its UDP peer (new source port after a NAT
// rebind, for instance).
func (w *ReplayWindow) Reset() {
	w.next = 0
	w.seen = false
}
