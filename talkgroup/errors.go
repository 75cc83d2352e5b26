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

// Package talkgroup implements the talk-group dispatcher: membership,
// talker arbitration, squelch/audio timeouts, auto-QSY and the random
// QSY pool, plus the registry-wide broadcast fan-out (§4.7, §4.8, §4.12).
package talkgroup

import "github.com/svxreflector/goreflector/errors"

const (
	ErrorDenied errors.CodeError = iota + errors.MinPkgTalkgroup
	ErrorNoFreeTG
)

func init() {
	errors.RegisterIdFctMessage(ErrorDenied, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrorDenied:
		return "callsign not allowed on this talk group"
	case ErrorNoFreeTG:
		return "no free talk group in the configured random-QSY range"
	}
	return ""
}
