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

package reflcfg

import (
	"time"

	"gopkg.in/ini.v1"

	libatm "github.com/svxreflector/goreflector/atomic"
	liberr "github.com/svxreflector/goreflector/errors"
)

// Store is the live, hot-reloadable config (§4.11). It satisfies
// talkgroup.Config directly (duck-typed, no import from talkgroup) and
// control.ConfigSetter for the operator `CFG` command.
type Store struct {
	path string
	cur  libatm.Value[*snapshot]

	onReload []func()
}

// New loads path once and returns a ready Store. Call Watch to start
// following the file for external edits.
func New(path string) (*Store, liberr.Error) {
	snap, err := loadSnapshot(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, cur: libatm.NewValue[*snapshot]()}
	s.cur.Store(snap)
	return s, nil
}

func (s *Store) snap() *snapshot { return s.cur.Load() }

// Reload re-reads the config file from disk and atomically swaps the
// live snapshot. A parse/validation failure leaves the previous snapshot
// in effect and returns the error (§4.11 "fail safe").
func (s *Store) Reload() liberr.Error {
	snap, err := loadSnapshot(s.path)
	if err != nil {
		return err
	}
	s.cur.Store(snap)
	for _, fn := range s.onReload {
		fn()
	}
	return nil
}

// OnReload registers a callback invoked after every successful Reload
// (e.g. the dispatcher re-pushing SQL_TIMEOUT into its metrics).
func (s *Store) OnReload(fn func()) { s.onReload = append(s.onReload, fn) }

// --- talkgroup.Config ---

func (s *Store) AllowRegex(tg uint32, callsign string) bool {
	snap := s.snap()
	ct, ok := snap.tgs[tg]
	if !ok || ct.allow == nil {
		return true
	}
	return ct.allow.MatchString(callsign)
}

func (s *Store) SquelchTimeout() time.Duration   { return s.snap().global.sqlTimeout() }
func (s *Store) SquelchBlockTime() time.Duration { return s.snap().global.sqlTimeoutBlock() }

func (s *Store) AutoQsyAfter(tg uint32) (time.Duration, bool) {
	ct, ok := s.snap().tgs[tg]
	if !ok {
		return 0, false
	}
	return ct.auto, ct.hasAuto
}

func (s *Store) V1DefaultTG() uint32 { return s.snap().global.TGForV1Clients }

func (s *Store) QSYRange() (uint32, uint32) { return s.snap().qsyLowCount() }

// --- Authentication / CA wiring helpers, outside the talkgroup.Config surface ---

// GroupSecret resolves callsign -> group -> shared secret for the v<3
// HMAC-SHA1 auth challenge (S2).
func (s *Store) GroupSecret(callsign string) (string, bool) {
	snap := s.snap()
	group, ok := snap.users[callsign]
	if !ok {
		return "", false
	}
	secret, ok := snap.passwords[group]
	return secret, ok
}

// CallsignAllowed applies GLOBAL/ACCEPT_CALLSIGN and GLOBAL/REJECT_CALLSIGN
// ahead of the per-TG allow regex.
func (s *Store) CallsignAllowed(callsign string) bool {
	snap := s.snap()
	if snap.rejectRe != nil && snap.rejectRe.MatchString(callsign) {
		return false
	}
	if snap.acceptRe != nil {
		return snap.acceptRe.MatchString(callsign)
	}
	return true
}

func (s *Store) ListenPort() uint16  { return s.snap().global.ListenPort }
func (s *Store) CAHookPath() string  { return s.snap().global.CertCAHook }

// ServerCertSpec returns the CN/SANs `SERVER_CERT` names, for seeding
// pki.Manager at startup.
func (s *Store) ServerCertSpec() (cn string, sans []string) {
	snap := s.snap()
	return snap.serverCert.CommonName, snap.serverCert.SubjectAltName
}

// --- control.ConfigSetter ---

// Set implements the operator `CFG <section> <tag> <value>` command
// (§4.11): it rewrites the tag in the on-disk INI file, then reloads and
// validates the whole file so a single bad edit can't leave the store in
// a half-applied state.
func (s *Store) Set(section, tag, value string) liberr.Error {
	cfg, err := ini.Load(s.path)
	if err != nil {
		return ErrorLoad.ErrorParent(err)
	}
	sec, serr := cfg.GetSection(section)
	if serr != nil {
		return ErrorUnknownSection.ErrorParent(serr)
	}
	if !sec.HasKey(tag) {
		return ErrorUnknownTag.Error(nil)
	}
	sec.Key(tag).SetValue(value)
	if werr := cfg.SaveTo(s.path); werr != nil {
		return ErrorLoad.ErrorParent(werr)
	}
	return s.Reload()
}
