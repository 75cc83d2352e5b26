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

package control

import (
	"io"

	liberr "github.com/svxreflector/goreflector/errors"
)

// Func is one command's body: it may write informational text to out
// (e.g. `CA LS`'s listing), and a non-nil return becomes `ERR:<message>`
// on the operator's line.
type Func func(out, err io.Writer, args []string) liberr.Error

// Command is a single named, described PTY verb.
type Command interface {
	Name() string
	Describe() string
	Run(out, err io.Writer, args []string) liberr.Error
}

type command struct {
	name string
	desc string
	fn   Func
}

// New builds a Command, mirroring the teacher's shell/command.New(name,
// describe, fn) shape with the fn signature widened to return a
// liberr.Error, since the PTY grammar's OK/ERR framing (§4.10) needs a
// verdict the teacher's fire-and-forget shape didn't carry.
func New(name, desc string, fn Func) Command {
	return &command{name: name, desc: desc, fn: fn}
}

func (c *command) Name() string     { return c.name }
func (c *command) Describe() string { return c.desc }

func (c *command) Run(out, err io.Writer, args []string) liberr.Error {
	if c.fn == nil {
		return nil
	}
	return c.fn(out, err, args)
}
