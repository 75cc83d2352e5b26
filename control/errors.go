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

// Package control implements the operator PTY: a line-oriented command
// grammar (`CFG`, `CA SIGN`, `CA RM`, `CA LS`, `CA PENDING`) answered with
// `OK` or `ERR:<reason>` (§4.10).
package control

import "github.com/svxreflector/goreflector/errors"

const (
	ErrorUnknownCommand errors.CodeError = iota + errors.MinPkgControl
	ErrorBadArgs
	ErrorDuplicateCommand
)

func init() {
	errors.RegisterIdFctMessage(ErrorUnknownCommand, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrorUnknownCommand:
		return "unknown command"
	case ErrorBadArgs:
		return "wrong number or form of arguments"
	case ErrorDuplicateCommand:
		return "a command is already registered under this name"
	}
	return ""
}
