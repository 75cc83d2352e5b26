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

package registry

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bitset"

	libatm "github.com/svxreflector/goreflector/atomic"
	liberr "github.com/svxreflector/goreflector/errors"
	"github.com/svxreflector/goreflector/session"
)

// UDPPeerKey identifies a session by its bound UDP source address, used
// once a client's registration datagram has been seen.
type UDPPeerKey struct {
	IP   string
	Port int
}

// IDAllocator hands out unique, uniformly-random 16-bit client-ids. Id 0
// is reserved and never allocated. Draws are sampled uniformly at random
// and checked against a bitset; after a bounded number of misses it falls
// back to a linear scan from the last draw so allocation always
// terminates even as the space fills up (§8 testable property).
type IDAllocator struct {
	mu   sync.Mutex
	used *bitset.BitSet
}

const (
	maxClientID = 0xFFFF
	randomTries = 64
)

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{used: bitset.New(maxClientID + 1)}
}

// Allocate reserves and returns a fresh client-id.
func (a *IDAllocator) Allocate() (uint16, liberr.Error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < randomTries; i++ {
		cand := randomClientID()
		if !a.used.Test(uint(cand)) {
			a.used.Set(uint(cand))
			return cand, nil
		}
	}

	// Fallback: deterministic linear scan guarantees termination even
	// when the id space is nearly exhausted.
	for cand := uint(1); cand <= maxClientID; cand++ {
		if !a.used.Test(cand) {
			a.used.Set(cand)
			return uint16(cand), nil
		}
	}
	return 0, ErrorIDSpaceExhausted.Error(nil)
}

// Release returns a client-id to the free pool.
func (a *IDAllocator) Release(id uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used.Clear(uint(id))
}

func randomClientID() uint16 {
	var b [2]byte
	_, _ = rand.Read(b[:])
	v := binary.BigEndian.Uint16(b[:])
	if v == 0 {
		v = 1
	}
	return v
}

// Registry indexes live sessions three ways: by client-id (authoritative
// ownership), by UDP peer address (post-registration datagram routing)
// and by callsign (duplicate-login detection, admin lookups).
type Registry struct {
	ids *IDAllocator

	byClientID libatm.MapTyped[uint16, *session.Session]
	byUDPPeer  libatm.MapTyped[UDPPeerKey, *session.Session]
	byCallsign libatm.MapTyped[string, *session.Session]
}

func New() *Registry {
	return &Registry{
		ids:        NewIDAllocator(),
		byClientID: libatm.NewMapTyped[uint16, *session.Session](),
		byUDPPeer:  libatm.NewMapTyped[UDPPeerKey, *session.Session](),
		byCallsign: libatm.NewMapTyped[string, *session.Session](),
	}
}

// ReserveID allocates a client-id for a not-yet-constructed session.
func (r *Registry) ReserveID() (uint16, liberr.Error) { return r.ids.Allocate() }

// Add indexes a constructed session by client-id. Callers bind it by
// callsign and UDP peer separately once those become known.
func (r *Registry) Add(s *session.Session) { r.byClientID.Store(s.ClientID, s) }

// BindCallsign indexes s by callsign, refusing a second live session
// under the same callsign.
func (r *Registry) BindCallsign(cs string, s *session.Session) liberr.Error {
	if existing, ok := r.byCallsign.Load(cs); ok && existing != s {
		return ErrorDuplicateCallsign.Error(nil)
	}
	r.byCallsign.Store(cs, s)
	return nil
}

func (r *Registry) BindUDPPeer(key UDPPeerKey, s *session.Session) {
	r.byUDPPeer.Store(key, s)
}

func (r *Registry) ByClientID(id uint16) (*session.Session, bool) { return r.byClientID.Load(id) }

func (r *Registry) ByUDPPeer(key UDPPeerKey) (*session.Session, bool) {
	return r.byUDPPeer.Load(key)
}

func (r *Registry) ByCallsign(cs string) (*session.Session, bool) { return r.byCallsign.Load(cs) }

// Remove deregisters s from every index and releases its client-id.
func (r *Registry) Remove(s *session.Session) {
	r.byClientID.Delete(s.ClientID)
	r.ids.Release(s.ClientID)
	if cs := s.Callsign(); cs != "" {
		if existing, ok := r.byCallsign.Load(cs); ok && existing == s {
			r.byCallsign.Delete(cs)
		}
	}
	if addr := s.UDPAddr(); addr != nil {
		r.byUDPPeer.Delete(UDPPeerKey{IP: addr.IP.String(), Port: addr.Port})
	}
}

// Range calls f for every live session, in no particular order. f
// returning false stops iteration early.
func (r *Registry) Range(f func(*session.Session) bool) {
	r.byClientID.Range(func(_ uint16, s *session.Session) bool { return f(s) })
}

// Count returns the number of currently registered sessions.
func (r *Registry) Count() int {
	n := 0
	r.Range(func(*session.Session) bool { n++; return true })
	return n
}
