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

import "sync"

// qsyPool allocates a free talk-group id from a contiguous [lo, lo+count)
// range using next-fit with wraparound, so consecutive random QSYs spread
// across the range instead of always landing on the lowest free slot
// (§4.8 "requestQsy", §9 "Random QSY pool").
type qsyPool struct {
	mu   sync.Mutex
	last uint32 // last TG handed out; 0 before the first call
}

// next returns the first free TG at or after last+1 (wrapping around lo
// once hi is passed), skipping any TG that already has members according
// to occupied. Returns ok=false if every TG in the range is occupied.
func (p *qsyPool) next(lo, count uint32, occupied func(tg uint32) bool) (uint32, bool) {
	if count == 0 {
		return 0, false
	}
	hi := lo + count - 1

	p.mu.Lock()
	start := p.last + 1
	if start < lo || start > hi {
		start = lo
	}
	p.mu.Unlock()

	for i := uint32(0); i < count; i++ {
		cand := lo + (start-lo+i)%count
		if !occupied(cand) {
			p.mu.Lock()
			p.last = cand
			p.mu.Unlock()
			return cand, true
		}
	}
	return 0, false
}
