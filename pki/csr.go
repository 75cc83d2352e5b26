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

package pki

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-uuid"

	liberr "github.com/svxreflector/goreflector/errors"
	"github.com/svxreflector/goreflector/logger"
)

// CSRSubmitResult tells the session FSM / operator console what happened
// to a just-submitted CSR (§4.5, S6).
type CSRSubmitResult int

const (
	// CSRPending means the CSR (new or an update of an existing pending
	// one under the same public key) is now waiting on operator sign-off.
	CSRPending CSRSubmitResult = iota
	// CSRAlreadySigned means a currently-valid signed cert for this CN
	// already exists; the caller should send it back immediately instead
	// of waiting on the operator (§4.4 EXPECT_CSR transition).
	CSRAlreadySigned
)

// HookTimeout bounds the external CA hook's wall clock (§5 "External
// processes").
const HookTimeout = 5 * time.Minute

// CA hook environment operations (§6 "External CA hook").
const (
	HookOpPendingCreate = "PENDING_CSR_CREATE"
	HookOpPendingUpdate = "PENDING_CSR_UPDATE"
	HookOpCSRSigned     = "CSR_SIGNED"
)

// SetHook configures the external CA hook executable invoked on pending
// CSR intake and on signature. An empty path disables hook invocation.
func (m *Manager) SetHook(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hookPath = path
}

func pendingPath(root, cn string) string { return filepath.Join(root, "pending_csrs", cn+".csr") }
func signedPath(root, cn string) string  { return filepath.Join(root, "csrs", cn+".csr") }
func certPath(root, cn string) string    { return filepath.Join(root, "certs", cn+".crt") }

// SubmitCSR validates and records an incoming client CSR under cn (the
// CSR's own CommonName, which callers must already have checked matches
// the authenticating callsign). Key-change detection (§4.5 "Key-change
// detection") rejects a CSR that collides with a pending one under a
// different public key without touching any file.
func (m *Manager) SubmitCSR(cn, pemCSR string) (CSRSubmitResult, string, liberr.Error) {
	block, _ := pem.Decode([]byte(pemCSR))
	if block == nil {
		return 0, "", ErrorParseCSR.Error(nil)
	}
	csr, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		return 0, "", ErrorParseCSR.ErrorParent(err)
	}
	if err := csr.CheckSignature(); err != nil {
		return 0, "", ErrorParseCSR.ErrorParent(err)
	}
	pub, ok := csr.PublicKey.(*rsa.PublicKey)
	if !ok {
		return 0, "", ErrorParseCSR.Error(nil)
	}

	if existingPEM, ok := m.lookupSignedLocked(cn); ok {
		if samePublicKey(existingPEM, pub) {
			return CSRAlreadySigned, existingPEM, nil
		}
	}

	op := HookOpPendingCreate
	if existing, err := os.ReadFile(pendingPath(m.root, cn)); err == nil {
		if eb, _ := pem.Decode(existing); eb != nil {
			if ecsr, perr := x509.ParseCertificateRequest(eb.Bytes); perr == nil {
				if epub, ok := ecsr.PublicKey.(*rsa.PublicKey); ok && !epub.Equal(pub) {
					return 0, "", ErrorCSRKeyMismatch.Error(nil)
				}
			}
		}
		op = HookOpPendingUpdate
	}

	if err := os.WriteFile(pendingPath(m.root, cn), []byte(pemCSR), 0o600); err != nil {
		return 0, "", ErrorPersist.ErrorParent(err)
	}

	m.invokeHook(op, pemCSR, "")
	return CSRPending, "", nil
}

func (m *Manager) lookupSignedLocked(cn string) (string, bool) {
	b, err := os.ReadFile(certPath(m.root, cn))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// LookupClientCert returns the currently signed certificate for cn, if
// any.
func (m *Manager) LookupClientCert(cn string) (string, bool) {
	return m.lookupSignedLocked(cn)
}

func samePublicKey(certPEM string, pub *rsa.PublicKey) bool {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return false
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return false
	}
	existing, ok := cert.PublicKey.(*rsa.PublicKey)
	return ok && existing.Equal(pub)
}

// SignCSR moves cn's pending CSR to csrs/ and writes certs/<cn>.crt
// signed by the issuing CA with its chain appended (operator `CA SIGN`
// command, S6). Returns the signed cert PEM (with chain).
func (m *Manager) SignCSR(cn string) (string, liberr.Error) {
	pemCSR, err := os.ReadFile(pendingPath(m.root, cn))
	if err != nil {
		return "", ErrorUnknownCN.ErrorParent(err)
	}
	block, _ := pem.Decode(pemCSR)
	if block == nil {
		return "", ErrorParseCSR.Error(nil)
	}
	csr, perr := x509.ParseCertificateRequest(block.Bytes)
	if perr != nil {
		return "", ErrorParseCSR.ErrorParent(perr)
	}
	pub, ok := csr.PublicKey.(*rsa.PublicKey)
	if !ok {
		return "", ErrorParseCSR.Error(nil)
	}

	m.mu.Lock()
	cert, cerr := m.signPublicKey(pub, cn, csr.DNSNames, ServerCertValidity, true)
	var chainPEM []byte
	if cerr == nil {
		chainPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
		chainPEM = append(chainPEM, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: m.issuingCert.Raw})...)
	}
	m.mu.Unlock()
	if cerr != nil {
		return "", cerr
	}

	if err := os.WriteFile(certPath(m.root, cn), chainPEM, 0o644); err != nil {
		return "", ErrorPersist.ErrorParent(err)
	}
	if err := os.WriteFile(signedPath(m.root, cn), pemCSR, 0o600); err != nil {
		return "", ErrorPersist.ErrorParent(err)
	}
	_ = os.Remove(pendingPath(m.root, cn))

	m.invokeHook(HookOpCSRSigned, "", string(chainPEM))
	return string(chainPEM), nil
}

// RemoveClientCert deletes cn's signed cert, signed CSR and pending CSR,
// idempotently (§9 "removeClientCert").
func (m *Manager) RemoveClientCert(cn string) liberr.Error {
	for _, p := range []string{certPath(m.root, cn), signedPath(m.root, cn), pendingPath(m.root, cn)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return ErrorPersist.ErrorParent(err)
		}
	}
	return nil
}

// ListPending returns the CNs with a CSR awaiting operator sign-off,
// sorted, for the operator console's `CA PENDING` (§4.10).
func (m *Manager) ListPending() []string {
	return listCNs(filepath.Join(m.root, "pending_csrs"))
}

// ListSigned returns the CNs with a currently-signed client cert, sorted,
// for the operator console's `CA LS` (§4.10).
func (m *Manager) ListSigned() []string {
	return listCNs(filepath.Join(m.root, "certs"))
}

func listCNs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".csr" && ext != ".crt" {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ext))
	}
	sort.Strings(out)
	return out
}

// invokeHook runs the configured external CA hook with a 5-minute wall
// clock, forwarding its stdout/stderr to the server's own outputs and
// logging its exit status (§5, §6). Failures are warnings only: the CSR
// stays pending/unchanged and the operator must retry (§9 Open
// Questions).
func (m *Manager) invokeHook(op, csrPEM, crtPEM string) {
	m.mu.RLock()
	path := m.hookPath
	m.mu.RUnlock()
	if path == "" {
		return
	}

	corr, _ := uuid.GenerateUUID()

	ctx, cancel := context.WithTimeout(context.Background(), HookTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path)
	cmd.Env = append(os.Environ(),
		"CA_OP="+op,
		"CA_CORRELATION_ID="+corr,
	)
	if csrPEM != "" {
		cmd.Env = append(cmd.Env, "CA_CSR_PEM="+csrPEM)
	}
	if crtPEM != "" {
		cmd.Env = append(cmd.Env, "CA_CRT_PEM="+crtPEM)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	fields := logger.Fields{"op": op, "correlation_id": corr}
	if ctx.Err() == context.DeadlineExceeded {
		logger.WarnLevel.WithFields("ca hook timed out: "+stderr.String(), fields)
		return
	}
	if err != nil {
		logger.WarnLevel.WithFields("ca hook exited non-zero: "+stderr.String(), fields)
		return
	}
	logger.DebugLevel.WithFields("ca hook completed: "+stdout.String(), fields)
}
