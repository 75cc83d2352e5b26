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

// Package registry indexes connected sessions by client-id, by UDP peer
// address and by callsign, and allocates collision-free 16-bit client-ids
// (§4, Session "Attributes").
package registry

import "github.com/svxreflector/goreflector/errors"

const (
	ErrorIDSpaceExhausted errors.CodeError = iota + errors.MinPkgRegistry
	ErrorDuplicateCallsign
)

func init() {
	errors.RegisterIdFctMessage(ErrorIDSpaceExhausted, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrorIDSpaceExhausted:
		return "no free client-id remains in the 16-bit space"
	case ErrorDuplicateCallsign:
		return "callsign already registered to another session"
	}
	return ""
}
