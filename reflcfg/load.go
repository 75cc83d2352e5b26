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
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/ini.v1"

	liberr "github.com/svxreflector/goreflector/errors"
)

const tgSectionPrefix = "TG#"

var structValidate = validator.New()

// loadSnapshot parses path's INI content into a validated snapshot
// (§6 "Config file"): `GLOBAL`, `ROOT_CA`/`ISSUING_CA`/`SERVER_CERT`,
// every `TG#<n>` section, and `USERS`/`PASSWORDS`.
func loadSnapshot(path string) (*snapshot, liberr.Error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{AllowShadows: false}, path)
	if err != nil {
		return nil, ErrorLoad.ErrorParent(err)
	}

	snap := &snapshot{
		tgs:       make(map[uint32]compiledTG),
		users:     make(map[string]string),
		passwords: make(map[string]string),
	}

	if sec, serr := cfg.GetSection("GLOBAL"); serr == nil {
		if merr := sec.MapTo(&snap.global); merr != nil {
			return nil, ErrorParse.ErrorParent(merr)
		}
	}
	if verr := structValidate.Struct(&snap.global); verr != nil {
		return nil, ErrorValidate.ErrorParent(verr)
	}

	mapOptional := func(name string, dst *CertSection) {
		if sec, serr := cfg.GetSection(name); serr == nil {
			_ = sec.MapTo(dst)
		}
	}
	mapOptional("ROOT_CA", &snap.rootCA)
	mapOptional("ISSUING_CA", &snap.issuingCA)
	mapOptional("SERVER_CERT", &snap.serverCert)

	if snap.global.AcceptCallsign != "" {
		re, rerr := regexp.Compile(snap.global.AcceptCallsign)
		if rerr != nil {
			return nil, ErrorBadValue.ErrorParent(rerr)
		}
		snap.acceptRe = re
	}
	if snap.global.RejectCallsign != "" {
		re, rerr := regexp.Compile(snap.global.RejectCallsign)
		if rerr != nil {
			return nil, ErrorBadValue.ErrorParent(rerr)
		}
		snap.rejectRe = re
	}

	for _, sec := range cfg.Sections() {
		name := sec.Name()
		if !strings.HasPrefix(name, tgSectionPrefix) {
			continue
		}
		tg, perr := strconv.ParseUint(strings.TrimPrefix(name, tgSectionPrefix), 10, 32)
		if perr != nil {
			return nil, ErrorParse.ErrorParent(perr)
		}
		var raw TGSection
		if merr := sec.MapTo(&raw); merr != nil {
			return nil, ErrorParse.ErrorParent(merr)
		}
		ct := compiledTG{raw: raw}
		if raw.Allow != "" {
			re, rerr := regexp.Compile(raw.Allow)
			if rerr != nil {
				return nil, ErrorBadValue.ErrorParent(rerr)
			}
			ct.allow = re
		}
		ct.auto, ct.hasAuto = raw.autoQsyAfter()
		snap.tgs[uint32(tg)] = ct
	}

	if sec, serr := cfg.GetSection("USERS"); serr == nil {
		for k, v := range sec.KeysHash() {
			snap.users[k] = v
		}
	}
	if sec, serr := cfg.GetSection("PASSWORDS"); serr == nil {
		for k, v := range sec.KeysHash() {
			snap.passwords[k] = v
		}
	}

	return snap, nil
}

// parseRange parses a `<lo>:<count>` RANDOM_QSY_RANGE value.
func parseRange(s string) (lo, count uint32, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	l, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil || l < 1 {
		return 0, 0, false
	}
	c, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || c < 1 {
		return 0, 0, false
	}
	return uint32(l), uint32(c), true
}
