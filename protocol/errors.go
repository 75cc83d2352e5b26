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

// Package protocol implements the reflector wire protocol: tagged,
// length-framed TCP messages and the independent UDP message set, with
// deterministic pack/unpack for every admin and user-level message type.
package protocol

import "github.com/svxreflector/goreflector/errors"

const (
	ErrorTruncated errors.CodeError = iota + errors.MinPkgProtocol
	ErrorTooLarge
	ErrorUnknownType
	ErrorBadString
	ErrorBadUTF8
	ErrorWrongPhase
)

func init() {
	errors.RegisterIdFctMessage(ErrorTruncated, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrorTruncated:
		return "message truncated before expected field boundary"
	case ErrorTooLarge:
		return "message exceeds the phase's maximum frame size"
	case ErrorUnknownType:
		return "unknown message type code"
	case ErrorBadString:
		return "string field length exceeds remaining buffer"
	case ErrorBadUTF8:
		return "string field is not valid UTF-8"
	case ErrorWrongPhase:
		return "message type is not receivable in the session's current phase"
	}
	return ""
}
