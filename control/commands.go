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
	"fmt"
	"io"

	liberr "github.com/svxreflector/goreflector/errors"
)

// CertAuthority is the subset of pki.Manager the operator console drives.
// Declared locally (rather than importing pki) so control stays a leaf
// package the way the teacher's shell/command is — callers pass a
// *pki.Manager in, which already satisfies this.
type CertAuthority interface {
	SignCSR(cn string) (string, liberr.Error)
	RemoveClientCert(cn string) liberr.Error
	ListPending() []string
	ListSigned() []string
}

// ConfigSetter is the subset of reflcfg.Store the `CFG` command drives.
type ConfigSetter interface {
	Set(section, tag, value string) liberr.Error
}

// Bootstrap registers the five standard operator verbs (§4.10) on a fresh
// Console: CFG, CA SIGN, CA RM, CA LS, CA PENDING.
func Bootstrap(ca CertAuthority, cfg ConfigSetter) *Console {
	c := NewConsole()
	_ = c.Register(NewCfgCommand(cfg))
	_ = c.Register(NewCASignCommand(ca))
	_ = c.Register(NewCARmCommand(ca))
	_ = c.Register(NewCALsCommand(ca))
	_ = c.Register(NewCAPendingCommand(ca))
	return c
}

// NewCfgCommand implements `CFG <section> <tag> <value>` (§4.11).
func NewCfgCommand(cfg ConfigSetter) Command {
	return New("CFG", "update a dynamic config tag: CFG <section> <tag> <value>",
		func(out, errw io.Writer, args []string) liberr.Error {
			if len(args) < 3 {
				return ErrorBadArgs.Error(nil)
			}
			section, tag, value := args[0], args[1], joinRest(args[2:])
			return cfg.Set(section, tag, value)
		})
}

// NewCASignCommand implements `CA SIGN <callsign>`.
func NewCASignCommand(ca CertAuthority) Command {
	return New("CA SIGN", "sign the pending CSR for a callsign: CA SIGN <callsign>",
		func(out, errw io.Writer, args []string) liberr.Error {
			if len(args) != 1 {
				return ErrorBadArgs.Error(nil)
			}
			_, err := ca.SignCSR(args[0])
			return err
		})
}

// NewCARmCommand implements `CA RM <callsign>`.
func NewCARmCommand(ca CertAuthority) Command {
	return New("CA RM", "delete a client's signed cert and CSR: CA RM <callsign>",
		func(out, errw io.Writer, args []string) liberr.Error {
			if len(args) != 1 {
				return ErrorBadArgs.Error(nil)
			}
			return ca.RemoveClientCert(args[0])
		})
}

// NewCALsCommand implements `CA LS`: enumerate signed client certs.
func NewCALsCommand(ca CertAuthority) Command {
	return New("CA LS", "list callsigns with a currently signed client cert",
		func(out, errw io.Writer, args []string) liberr.Error {
			for _, cn := range ca.ListSigned() {
				fmt.Fprintln(out, cn)
			}
			return nil
		})
}

// NewCAPendingCommand implements `CA PENDING`: enumerate CSRs awaiting sign-off.
func NewCAPendingCommand(ca CertAuthority) Command {
	return New("CA PENDING", "list callsigns with a CSR awaiting operator sign-off",
		func(out, errw io.Writer, args []string) liberr.Error {
			for _, cn := range ca.ListPending() {
				fmt.Fprintln(out, cn)
			}
			return nil
		})
}

func joinRest(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
