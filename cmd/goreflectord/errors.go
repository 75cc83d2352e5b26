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

package main

import "github.com/svxreflector/goreflector/errors"

const (
	ErrorListen errors.CodeError = iota + errors.MinPkgReflector
	ErrorAccept
	ErrorHandshakeTimeout
	ErrorProtoDowngrade
	ErrorBadFrame
	ErrorTLSUpgrade
	ErrorAuthFailed
	ErrorUDPListen
	ErrorConfigLoad
	ErrorPKIBootstrap
)

func init() {
	errors.RegisterIdFctMessage(ErrorListen, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrorListen:
		return "unable to open the TCP listener"
	case ErrorAccept:
		return "accept failed on the TCP listener"
	case ErrorHandshakeTimeout:
		return "client did not complete the handshake in time"
	case ErrorProtoDowngrade:
		return "client protocol version rejected"
	case ErrorBadFrame:
		return "malformed or out-of-phase frame received"
	case ErrorTLSUpgrade:
		return "TLS upgrade of the client connection failed"
	case ErrorAuthFailed:
		return "client authentication failed"
	case ErrorUDPListen:
		return "unable to open the UDP socket"
	case ErrorConfigLoad:
		return "reflector configuration could not be loaded"
	case ErrorPKIBootstrap:
		return "PKI manager bootstrap failed"
	}
	return ""
}
