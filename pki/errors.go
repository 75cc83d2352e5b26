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

// Package pki owns the embedded certificate authority: a self-signed
// root, an issuing CA signed by the root, the server's own certificate,
// and the client CSR intake/signing workflow (§4.5).
package pki

import "github.com/svxreflector/goreflector/errors"

const (
	ErrorGenerateKey errors.CodeError = iota + errors.MinPkgPKI
	ErrorGenerateCert
	ErrorPersist
	ErrorLoad
	ErrorParseCSR
	ErrorCSRKeyMismatch
	ErrorUnknownCN
	ErrorHookFailed
	ErrorHookTimeout
)

func init() {
	errors.RegisterIdFctMessage(ErrorGenerateKey, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrorGenerateKey:
		return "failed to generate private key"
	case ErrorGenerateCert:
		return "failed to generate certificate"
	case ErrorPersist:
		return "failed to persist PEM material to disk"
	case ErrorLoad:
		return "failed to load PEM material from disk"
	case ErrorParseCSR:
		return "failed to parse certificate signing request"
	case ErrorCSRKeyMismatch:
		return "incoming CSR public key differs from the stored pending CSR for this CN"
	case ErrorUnknownCN:
		return "no pending or signed CSR for this common name"
	case ErrorHookFailed:
		return "external CA hook exited non-zero"
	case ErrorHookTimeout:
		return "external CA hook exceeded its wall-clock budget"
	}
	return ""
}
