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

package reflcfg

import (
	"regexp"
	"time"
)

// snapshot is the fully-parsed, validated, immutable view of one config
// generation. A Store swaps its current snapshot atomically on Load/Set,
// so readers on the hot path (dispatcher tick, session auth) never block
// a reload.
type snapshot struct {
	global GlobalSection

	rootCA     CertSection
	issuingCA  CertSection
	serverCert CertSection

	acceptRe *regexp.Regexp
	rejectRe *regexp.Regexp

	tgs map[uint32]compiledTG

	users     map[string]string // callsign -> group
	passwords map[string]string // group -> secret
}

type compiledTG struct {
	raw    TGSection
	allow  *regexp.Regexp
	auto   time.Duration
	hasAuto bool
}

func (s *snapshot) qsyLowCount() (uint32, uint32) {
	lo, count, ok := parseRange(s.global.RandomQsyRange)
	if !ok {
		return 1, 0
	}
	return lo, count
}
