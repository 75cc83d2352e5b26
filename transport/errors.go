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

// Package transport implements the two network planes of the reflector: a
// framed, optionally TLS-wrapped TCP connection (C1) with per-phase size
// caps, and an AES-128-GCM authenticated UDP socket with explicit IV
// composition and replay-ordering (C2).
package transport

import "github.com/svxreflector/goreflector/errors"

const (
	ErrorFrameTooLarge errors.CodeError = iota + errors.MinPkgTransport
	ErrorShortWrite
	ErrorClosed
	ErrorNoPeerCert
	ErrorBadPeerCN
	ErrorDecrypt
	ErrorReplay
	ErrorBadAAD
)

func init() {
	errors.RegisterIdFctMessage(ErrorFrameTooLarge, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrorFrameTooLarge:
		return "frame exceeds the phase's maximum size"
	case ErrorShortWrite:
		return "short write to peer, connection must be closed"
	case ErrorClosed:
		return "transport is closed"
	case ErrorNoPeerCert:
		return "TLS handshake completed without a peer certificate"
	case ErrorBadPeerCN:
		return "peer certificate has an empty or invalid common name"
	case ErrorDecrypt:
		return "AEAD open failed, datagram rejected"
	case ErrorReplay:
		return "UDP counter at or below last accepted value"
	case ErrorBadAAD:
		return "UDP associated data malformed"
	}
	return ""
}
