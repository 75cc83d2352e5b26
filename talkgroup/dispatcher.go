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

package talkgroup

import (
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	liberr "github.com/svxreflector/goreflector/errors"
	"github.com/svxreflector/goreflector/logger"
	"github.com/svxreflector/goreflector/protocol"
	"github.com/svxreflector/goreflector/registry"
	"github.com/svxreflector/goreflector/session"
)

// Audio-timeout constants (§4.7 "Timeouts").
const (
	TalkerAudioTimeout    = 3 * time.Second
	DefaultSquelchBlock   = 60 * time.Second
	TickInterval          = 1 * time.Second
)

// TalkerObserver is notified of talker transitions, replacing the
// original signal/slot fan-out with an explicit interface (design note
// "Signal/slot").
type TalkerObserver interface {
	OnTalkerStart(tg uint32, callsign string)
	OnTalkerStop(tg uint32, callsign string)
}

// Dispatcher owns every live TalkGroup and the registry-wide broadcast
// fan-out (C7, C8, C12). It is safe for concurrent use: TG membership is
// guarded per-group, the TG index by a single mutex, and each Session's
// own hot fields by its own atomics.
type Dispatcher struct {
	reg *registry.Registry
	cfg Config

	mu  sync.Mutex
	tgs map[uint32]*TalkGroup

	pool      qsyPool
	observers []TalkerObserver
	metrics   *metrics

	ticker *timerCtl
}

func New(reg *registry.Registry, cfg Config, promReg prometheus.Registerer) *Dispatcher {
	d := &Dispatcher{
		reg:     reg,
		cfg:     cfg,
		tgs:     make(map[uint32]*TalkGroup),
		metrics: newMetrics(promReg),
	}
	d.ticker = newTimerCtl(TickInterval, d.tick)
	return d
}

func (d *Dispatcher) AddObserver(o TalkerObserver) { d.observers = append(d.observers, o) }

func (d *Dispatcher) Start() { d.ticker.Start() }
func (d *Dispatcher) Stop()  { d.ticker.Stop() }

func (d *Dispatcher) groupLocked(tg uint32) *TalkGroup {
	g, ok := d.tgs[tg]
	if !ok {
		g = newTalkGroup(tg)
		d.tgs[tg] = g
		d.metrics.activeTalkGroups.Set(float64(len(d.tgs)))
	}
	return g
}

func (d *Dispatcher) destroyIfEmptyLocked(g *TalkGroup) {
	if g.isEmpty() {
		delete(d.tgs, g.id)
		d.metrics.activeTalkGroups.Set(float64(len(d.tgs)))
	}
}

// Switch moves s to tg (0 = leave). It evaluates the per-TG allow regex
// (§4.7 "Switch"), clears the talker slot if s was holding the floor in
// its old TG, flushes remaining members' jitter buffers, and is
// idempotent: calling Switch(s, tg) twice in a row is equivalent to
// calling it once (§8 "Round-trip and idempotence").
func (d *Dispatcher) Switch(s *session.Session, tg uint32) liberr.Error {
	old := s.CurrentTG()
	if old == tg {
		return nil
	}
	if tg != 0 && !d.cfg.AllowRegex(tg, s.Callsign()) {
		return ErrorDenied.Error(nil)
	}

	d.mu.Lock()
	var oldGroup *TalkGroup
	if old != 0 {
		oldGroup = d.tgs[old]
	}
	var newGroup *TalkGroup
	if tg != 0 {
		newGroup = d.groupLocked(tg)
	}
	d.mu.Unlock()

	if oldGroup != nil {
		wasTalker := oldGroup.removeMember(s)
		if wasTalker {
			d.broadcastTalkerStop(oldGroup, s.Callsign())
		}
		d.flushOthers(oldGroup, s, nil)
		d.mu.Lock()
		d.destroyIfEmptyLocked(oldGroup)
		d.mu.Unlock()
	}

	s.SetCurrentTG(tg)
	if newGroup != nil {
		newGroup.addMember(s)
	}
	return nil
}

// AudioReceived implements talker arbitration for one UDP audio datagram
// from s addressed to tg (§4.7 "Talker arbitration"). Returns the
// plaintext audio to forward, or nil if the datagram should be dropped
// (s is blocked, not a member, or someone else is already talking).
func (d *Dispatcher) AudioReceived(s *session.Session, tg uint32, audio []byte, udpConn *net.UDPConn) []byte {
	if s.IsBlocked() {
		return nil
	}

	d.mu.Lock()
	g, ok := d.tgs[tg]
	d.mu.Unlock()
	if !ok || g.memberCount() == 0 {
		return nil
	}

	g.mu.Lock()
	if g.talker == nil {
		g.talker = s
		g.talkerSince = time.Now()
		g.lastAudio = time.Now()
		g.autoQsyDeadline = time.Time{}
		g.mu.Unlock()
		d.broadcastTalkerStart(g, s)
	} else if g.talker == s {
		g.lastAudio = time.Now()
		g.mu.Unlock()
	} else {
		g.mu.Unlock()
		return nil
	}

	if udpConn != nil {
		d.BroadcastUDPMsg(&protocol.MsgUdpAudio{Audio: audio}, Or(MonitoringTG(tg), TG(tg)), udpConn, s)
	}
	return audio
}

func (d *Dispatcher) broadcastTalkerStart(g *TalkGroup, s *session.Session) {
	logger.InfoLevel.Logf("talker start tg=%d callsign=%s", g.id, s.Callsign())
	for _, o := range d.observers {
		o.OnTalkerStart(g.id, s.Callsign())
	}
	recipients := Or(TG(g.id), MonitoringTG(g.id))
	v1 := g.id == d.cfg.V1DefaultTG()
	d.reg.Range(func(r *session.Session) bool {
		if r.Phase() != protocol.PhaseConnected || !recipients(r) {
			return true
		}
		if r.IsV1() {
			if v1 {
				_ = r.SendMsg(&protocol.MsgTalkerStart{Callsign: s.Callsign(), V1: true})
			}
			return true
		}
		if ProtoVersionAtLeast(2, 0)(r) {
			_ = r.SendMsg(&protocol.MsgTalkerStart{TG: g.id, Callsign: s.Callsign()})
		}
		return true
	})
}

func (d *Dispatcher) broadcastTalkerStop(g *TalkGroup, callsign string) {
	logger.InfoLevel.Logf("talker stop tg=%d callsign=%s", g.id, callsign)
	for _, o := range d.observers {
		o.OnTalkerStop(g.id, callsign)
	}
	recipients := Or(TG(g.id), MonitoringTG(g.id))
	v1 := g.id == d.cfg.V1DefaultTG()
	d.reg.Range(func(r *session.Session) bool {
		if r.Phase() != protocol.PhaseConnected || !recipients(r) {
			return true
		}
		if r.IsV1() {
			if v1 {
				_ = r.SendMsg(&protocol.MsgTalkerStop{Callsign: callsign, V1: true})
			}
			return true
		}
		if ProtoVersionAtLeast(2, 0)(r) {
			_ = r.SendMsg(&protocol.MsgTalkerStop{TG: g.id, Callsign: callsign})
		}
		return true
	})
}

// flushOthers sends MsgUdpFlushSamples to every member of g except
// `except`, so their jitter buffers drain promptly after a TG change or
// talker stop (§4.7 "Flush on TG change").
func (d *Dispatcher) flushOthers(g *TalkGroup, except *session.Session, udpConn *net.UDPConn) {
	if udpConn == nil {
		return
	}
	for _, m := range g.membersSnapshot() {
		if m == except {
			continue
		}
		_ = m.SendUDP(udpConn, &protocol.MsgUdpFlushSamples{})
	}
}

// tick drives the three independent 1Hz timers (§4.7 "Timeouts").
func (d *Dispatcher) tick() {
	d.mu.Lock()
	groups := make([]*TalkGroup, 0, len(d.tgs))
	for _, g := range d.tgs {
		groups = append(groups, g)
	}
	d.mu.Unlock()

	now := time.Now()
	for _, g := range groups {
		d.tickGroup(g, now)
	}
}

func (d *Dispatcher) tickGroup(g *TalkGroup, now time.Time) {
	g.mu.Lock()
	talker := g.talker
	lastAudio := g.lastAudio
	talkerSince := g.talkerSince
	deadline := g.autoQsyDeadline
	g.mu.Unlock()

	if talker != nil {
		if now.Sub(lastAudio) >= TalkerAudioTimeout {
			g.mu.Lock()
			g.talker = nil
			g.mu.Unlock()
			d.broadcastTalkerStop(g, talker.Callsign())
			return
		}
		d.metrics.talkerSeconds.Add(1)

		if sql := d.cfg.SquelchTimeout(); sql > 0 && now.Sub(talkerSince) >= sql {
			g.mu.Lock()
			g.talker = nil
			g.mu.Unlock()
			d.broadcastTalkerStop(g, talker.Callsign())
			block := d.cfg.SquelchBlockTime()
			if block <= 0 {
				block = DefaultSquelchBlock
			}
			talker.Block(block)
			return
		}
	}

	if after, ok := d.cfg.AutoQsyAfter(g.id); ok && talker == nil {
		if deadline.IsZero() {
			g.mu.Lock()
			g.autoQsyDeadline = now.Add(after)
			g.mu.Unlock()
			return
		}
		if !now.Before(deadline) {
			g.mu.Lock()
			g.autoQsyDeadline = now.Add(after)
			g.mu.Unlock()
			d.requestAutoQsy(g.id)
		}
	}
}

func (d *Dispatcher) requestAutoQsy(tg uint32) {
	d.broadcastRequestQsy(tg, 0)
}

// RequestQsy implements §4.8's `requestQsy(src, tg)`: tg==0 draws a free
// TG from the configured random pool, otherwise the caller picked an
// explicit target.
func (d *Dispatcher) RequestQsy(src *session.Session, tg uint32) liberr.Error {
	srcTG := src.CurrentTG()
	if tg == 0 {
		lo, count := d.cfg.QSYRange()
		picked, ok := d.pool.next(lo, count, func(cand uint32) bool {
			d.mu.Lock()
			g, exists := d.tgs[cand]
			d.mu.Unlock()
			return exists && g.memberCount() > 0
		})
		if !ok {
			return ErrorNoFreeTG.Error(nil)
		}
		tg = picked
	}
	d.metrics.qsyTotal.Inc()
	d.broadcastRequestQsy(srcTG, tg)
	return nil
}

func (d *Dispatcher) broadcastRequestQsy(srcTG, tg uint32) {
	filter := And(TG(srcTG), ProtoVersionAtLeast(2, 0))
	d.BroadcastMsg(&protocol.MsgRequestQsy{TG: tg}, filter)
}

// BroadcastMsg implements §4.8: one registry pass, send to every
// CONNECTED session matching filter (§8 testable property 8).
func (d *Dispatcher) BroadcastMsg(msg protocol.Message, filter Filter) {
	d.reg.Range(func(s *session.Session) bool {
		if s.Phase() == protocol.PhaseConnected && filter(s) {
			_ = s.SendMsg(msg)
		}
		return true
	})
}

// BroadcastUDPMsg is BroadcastMsg's UDP counterpart. An optional except
// session (the talker, typically) is skipped even if it matches filter.
func (d *Dispatcher) BroadcastUDPMsg(msg protocol.UDPMessage, filter Filter, conn *net.UDPConn, except *session.Session) {
	d.reg.Range(func(s *session.Session) bool {
		if s == except {
			return true
		}
		if s.Phase() == protocol.PhaseConnected && filter(s) {
			_ = s.SendUDP(conn, msg)
		}
		return true
	})
}
