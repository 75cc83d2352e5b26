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
	"bytes"
	"sort"
	"strings"

	libatm "github.com/svxreflector/goreflector/atomic"
	liberr "github.com/svxreflector/goreflector/errors"
)

// Console is the operator PTY's command registry (§4.10). Command names
// may be one or two words ("CA SIGN" is registered whole, not as a "CA"
// command with a "SIGN" sub-dispatch) so Dispatch can match the longest
// registered prefix of the input line.
type Console struct {
	cmds libatm.MapTyped[string, Command]
}

// New builds an empty Console. Use Register to populate it before serving
// a PTY session.
func NewConsole() *Console {
	return &Console{cmds: libatm.NewMapTyped[string, Command]()}
}

// Register adds cmd under its own Name(), refusing to shadow an existing
// registration.
func (c *Console) Register(cmd Command) liberr.Error {
	key := strings.ToUpper(cmd.Name())
	if _, exists := c.cmds.Load(key); exists {
		return ErrorDuplicateCommand.Error(nil)
	}
	c.cmds.Store(key, cmd)
	return nil
}

// Get returns the command registered under name, if any.
func (c *Console) Get(name string) (Command, bool) {
	return c.cmds.Load(strings.ToUpper(name))
}

// Desc returns name's description, or "" if unregistered.
func (c *Console) Desc(name string) string {
	if cmd, ok := c.Get(name); ok {
		return cmd.Describe()
	}
	return ""
}

// Walk calls f for every registered command, in name order. f returning
// false stops the walk early.
func (c *Console) Walk(f func(name string, item Command) bool) {
	names := make([]string, 0, 8)
	c.cmds.Range(func(k string, _ Command) bool {
		names = append(names, k)
		return true
	})
	sort.Strings(names)
	for _, n := range names {
		cmd, ok := c.cmds.Load(n)
		if !ok {
			continue
		}
		if !f(n, cmd) {
			return
		}
	}
}

// Dispatch splits line into whitespace-separated tokens, matches the
// longest registered command name against a leading run of tokens
// (two-word verbs like "CA SIGN" take priority over a bare "CA"), runs
// it, and renders the result as the PTY's `OK` / `ERR:<reason>` framing
// (§4.10). A blank line dispatches to nothing and returns "".
func (c *Console) Dispatch(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}

	var (
		cmd  Command
		args []string
	)
	if len(fields) >= 2 {
		if found, ok := c.Get(fields[0] + " " + fields[1]); ok {
			cmd, args = found, fields[2:]
		}
	}
	if cmd == nil {
		if found, ok := c.Get(fields[0]); ok {
			cmd, args = found, fields[1:]
		}
	}
	if cmd == nil {
		return "ERR:" + ErrorUnknownCommand.Error(nil).Error()
	}

	var out, errw bytes.Buffer
	if rerr := cmd.Run(&out, &errw, args); rerr != nil {
		msg := rerr.Error()
		if errw.Len() > 0 {
			msg = strings.TrimSpace(errw.String())
		}
		return "ERR:" + msg
	}

	if out.Len() == 0 {
		return "OK"
	}
	return "OK\n" + strings.TrimRight(out.String(), "\n")
}
