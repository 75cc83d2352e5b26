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

import "time"

// GlobalSection is the `GLOBAL` INI section (§4.11, §6 "Config file").
type GlobalSection struct {
	ListenPort         uint16 `ini:"LISTEN_PORT" validate:"required"`
	SqlTimeout         uint32 `ini:"SQL_TIMEOUT"`
	SqlTimeoutBlock    uint32 `ini:"SQL_TIMEOUT_BLOCKTIME"`
	RandomQsyRange     string `ini:"RANDOM_QSY_RANGE"`
	TGForV1Clients     uint32 `ini:"TG_FOR_V1_CLIENTS"`
	AcceptCallsign     string `ini:"ACCEPT_CALLSIGN"`
	RejectCallsign     string `ini:"REJECT_CALLSIGN"`
	CertCAHook         string `ini:"CERT_CA_HOOK"`
}

func (g GlobalSection) sqlTimeout() time.Duration      { return time.Duration(g.SqlTimeout) * time.Second }
func (g GlobalSection) sqlTimeoutBlock() time.Duration { return time.Duration(g.SqlTimeoutBlock) * time.Second }

// CertSection is shared by `ROOT_CA`, `ISSUING_CA` and `SERVER_CERT`
// (only `SERVER_CERT`'s fields are consulted by this server; the CA
// sections exist in the file for operator documentation/external tooling
// parity with the original config format).
type CertSection struct {
	CommonName     string   `ini:"COMMON_NAME"`
	KeyFile        string   `ini:"KEYFILE"`
	CrtFile        string   `ini:"CRTFILE"`
	SubjectAltName []string `ini:"SUBJECT_ALT_NAME" delim:","`
	EmailAddress   string   `ini:"EMAIL_ADDRESS"`
}

// TGSection is one `TG#<n>` section.
type TGSection struct {
	Allow        string `ini:"ALLOW"`
	AutoQsyAfter uint32 `ini:"AUTO_QSY_AFTER"`
	ShowActivity bool   `ini:"SHOW_ACTIVITY"`
}

func (t TGSection) autoQsyAfter() (time.Duration, bool) {
	if t.AutoQsyAfter == 0 {
		return 0, false
	}
	return time.Duration(t.AutoQsyAfter) * time.Second, true
}
