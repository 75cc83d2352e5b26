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

import "time"

// Config is the dynamic, hot-reloadable subset of §4.11's config store
// that the dispatcher needs on every audio datagram and every 1Hz tick.
// reflcfg.Store implements this directly; tests supply a stub.
type Config interface {
	// AllowRegex reports whether callsign may join tg.
	AllowRegex(tg uint32, callsign string) bool
	SquelchTimeout() time.Duration
	SquelchBlockTime() time.Duration
	AutoQsyAfter(tg uint32) (time.Duration, bool)
	V1DefaultTG() uint32
	QSYRange() (lo uint32, count uint32)
}

// StaticConfig is a fixed-value Config for tests and simple deployments
// that never need live reload.
type StaticConfig struct {
	Allow            func(tg uint32, callsign string) bool
	SqlTimeout       time.Duration
	SqlBlockTime     time.Duration
	AutoQsy          map[uint32]time.Duration
	DefaultV1TG      uint32
	QSYLow, QSYCount uint32
}

func (c StaticConfig) AllowRegex(tg uint32, callsign string) bool {
	if c.Allow == nil {
		return true
	}
	return c.Allow(tg, callsign)
}
func (c StaticConfig) SquelchTimeout() time.Duration   { return c.SqlTimeout }
func (c StaticConfig) SquelchBlockTime() time.Duration { return c.SqlBlockTime }
func (c StaticConfig) AutoQsyAfter(tg uint32) (time.Duration, bool) {
	d, ok := c.AutoQsy[tg]
	return d, ok
}
func (c StaticConfig) V1DefaultTG() uint32            { return c.DefaultV1TG }
func (c StaticConfig) QSYRange() (uint32, uint32)     { return c.QSYLow, c.QSYCount }
