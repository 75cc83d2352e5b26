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
)

// timerCtl is a minimal Start/Stop/Restart/IsRunning/Uptime ticker
// runner, named after the method shapes the teacher's (implementation-
// less) runner/ticker suite describes. It drives the dispatcher's 1Hz
// tick (§4.7 "Timeouts").
type timerCtl struct {
	mu        sync.Mutex
	period    time.Duration
	fn        func()
	stop      chan struct{}
	startedAt time.Time
	running   bool
}

func newTimerCtl(period time.Duration, fn func()) *timerCtl {
	return &timerCtl{period: period, fn: fn}
}

func (t *timerCtl) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.stop = make(chan struct{})
	t.startedAt = time.Now()
	t.running = true
	stop := t.stop
	go func() {
		ticker := time.NewTicker(t.period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.fn()
			}
		}
	}()
}

func (t *timerCtl) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	close(t.stop)
	t.running = false
}

func (t *timerCtl) Restart() {
	t.Stop()
	t.Start()
}

func (t *timerCtl) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *timerCtl) Uptime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	return time.Since(t.startedAt)
}
