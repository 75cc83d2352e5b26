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
	"sync"
	"time"

	"github.com/svxreflector/goreflector/session"
)

// TalkGroup is one channel's live state: its members, the session
// currently holding the floor (if any), and the timer state the
// dispatcher's 1Hz tick consults (§3 "TalkGroup").
type TalkGroup struct {
	mu sync.RWMutex

	id      uint32
	members map[uint16]*session.Session

	talker      *session.Session
	talkerSince time.Time
	lastAudio   time.Time

	autoQsyDeadline time.Time
}

func newTalkGroup(id uint32) *TalkGroup {
	return &TalkGroup{id: id, members: make(map[uint16]*session.Session)}
}

func (g *TalkGroup) ID() uint32 { return g.id }

func (g *TalkGroup) addMember(s *session.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[s.ClientID] = s
}

// removeMember drops s from the group. If s was the talker, the talker
// slot is cleared and the caller is told so it can broadcast TalkerStop.
func (g *TalkGroup) removeMember(s *session.Session) (wasTalker bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, s.ClientID)
	if g.talker == s {
		g.talker = nil
		wasTalker = true
	}
	return wasTalker
}

func (g *TalkGroup) isEmpty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members) == 0
}

func (g *TalkGroup) memberCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

func (g *TalkGroup) membersSnapshot() []*session.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*session.Session, 0, len(g.members))
	for _, s := range g.members {
		out = append(out, s)
	}
	return out
}

func (g *TalkGroup) Talker() *session.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.talker
}
