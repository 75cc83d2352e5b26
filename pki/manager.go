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
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/svxreflector/goreflector/certificates/ca"
	"github.com/svxreflector/goreflector/certificates/certs"

	libatm "github.com/svxreflector/goreflector/atomic"
	liberr "github.com/svxreflector/goreflector/errors"
)

// Certificate lifetimes and renewal policy (§4.5).
const (
	RootCAValidity     = 25 * 365 * 24 * time.Hour
	IssuingCAValidity  = 4 * ServerCertValidity
	ServerCertValidity = 90 * 24 * time.Hour

	renewalNumerator   = 2
	renewalDenominator = 3
)

// Manager owns the on-disk PKI tree `<root>/{private,pending_csrs,csrs,
// certs,ca-bundle.crt}` and the three in-memory keypairs that back it.
type Manager struct {
	root       string
	serverCN   string
	serverSANs []string

	mu          sync.RWMutex
	hookPath    string
	rootKey     *rsa.PrivateKey
	rootCert    *x509.Certificate
	issuingKey  *rsa.PrivateKey
	issuingCert *x509.Certificate
	serverKey   *rsa.PrivateKey
	serverCert  *x509.Certificate

	issuingRenewAt libatm.Value[time.Time]
	serverRenewAt  libatm.Value[time.Time]

	bundlePEM    libatm.Value[string]
	bundleDigest libatm.Value[[sha256.Size]byte]
	bundleSig    libatm.Value[string]
}

func New(root, serverCN string, serverSANs []string) *Manager {
	return &Manager{
		root:           root,
		serverCN:       serverCN,
		serverSANs:     serverSANs,
		issuingRenewAt: libatm.NewValue[time.Time](),
		serverRenewAt:  libatm.NewValue[time.Time](),
		bundlePEM:      libatm.NewValue[string](),
		bundleDigest:   libatm.NewValue[[sha256.Size]byte](),
		bundleSig:      libatm.NewValue[string](),
	}
}

func (m *Manager) dirs() []string {
	return []string{
		filepath.Join(m.root, "private"),
		filepath.Join(m.root, "pending_csrs"),
		filepath.Join(m.root, "csrs"),
		filepath.Join(m.root, "certs"),
	}
}

// Bootstrap loads every keypair/certificate that already exists on disk
// and generates whatever is missing, then rebuilds the CA bundle. Safe
// to call again after an issuing-CA or server-cert renewal.
func (m *Manager) Bootstrap() liberr.Error {
	for _, d := range m.dirs() {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return ErrorPersist.Error(err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var err liberr.Error
	if m.rootKey, m.rootCert, err = m.loadOrGenerateRoot(); err != nil {
		return err
	}
	if m.issuingKey, m.issuingCert, err = m.loadOrGenerateIssuing(); err != nil {
		return err
	}
	if m.serverKey, m.serverCert, err = m.loadOrGenerateServer(); err != nil {
		return err
	}

	m.issuingRenewAt.Store(renewAt(m.issuingCert))
	m.serverRenewAt.Store(renewAt(m.serverCert))

	return m.rebuildBundleLocked()
}

func renewAt(cert *x509.Certificate) time.Time {
	validity := cert.NotAfter.Sub(cert.NotBefore)
	return cert.NotBefore.Add(validity * renewalNumerator / renewalDenominator)
}

func (m *Manager) loadOrGenerateRoot() (*rsa.PrivateKey, *x509.Certificate, liberr.Error) {
	keyPath := filepath.Join(m.root, "private", "root-ca.key")
	crtPath := filepath.Join(m.root, "private", "root-ca.crt")
	if key, cert, ok := m.tryLoad(keyPath, crtPath); ok {
		return key, cert, nil
	}

	key, err := rsa.GenerateKey(rand.Reader, 4096)
	if err != nil {
		return nil, nil, ErrorGenerateKey.Error(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          newSerial(),
		Subject:               pkix.Name{CommonName: m.serverCN + " Root CA"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(RootCAValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            1,
	}
	der, derr := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if derr != nil {
		return nil, nil, ErrorGenerateCert.Error(derr)
	}
	cert, perr := x509.ParseCertificate(der)
	if perr != nil {
		return nil, nil, ErrorGenerateCert.Error(perr)
	}
	if err := m.persist(keyPath, crtPath, key, der); err != nil {
		return nil, nil, err
	}
	return key, cert, nil
}

func (m *Manager) loadOrGenerateIssuing() (*rsa.PrivateKey, *x509.Certificate, liberr.Error) {
	keyPath := filepath.Join(m.root, "private", "issuing-ca.key")
	crtPath := filepath.Join(m.root, "private", "issuing-ca.crt")
	if key, cert, ok := m.tryLoad(keyPath, crtPath); ok {
		return key, cert, nil
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, ErrorGenerateKey.Error(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          newSerial(),
		Subject:               pkix.Name{CommonName: m.serverCN + " Issuing CA"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(IssuingCAValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            0,
	}
	der, derr := x509.CreateCertificate(rand.Reader, tmpl, m.rootCert, &key.PublicKey, m.rootKey)
	if derr != nil {
		return nil, nil, ErrorGenerateCert.Error(derr)
	}
	cert, perr := x509.ParseCertificate(der)
	if perr != nil {
		return nil, nil, ErrorGenerateCert.Error(perr)
	}
	if err := m.persist(keyPath, crtPath, key, der); err != nil {
		return nil, nil, err
	}
	return key, cert, nil
}

func (m *Manager) loadOrGenerateServer() (*rsa.PrivateKey, *x509.Certificate, liberr.Error) {
	keyPath := filepath.Join(m.root, "private", "server.key")
	crtPath := filepath.Join(m.root, "certs", "server.crt")
	if key, cert, ok := m.tryLoad(keyPath, crtPath); ok {
		return key, cert, nil
	}
	key, cert, err := m.issueCert(m.serverCN, m.serverSANs, ServerCertValidity, false)
	if err != nil {
		return nil, nil, err
	}
	der := cert.Raw
	if perr := m.persist(keyPath, crtPath, key, der); perr != nil {
		return nil, nil, perr
	}
	return key, cert, nil
}

// issueCert signs a fresh keypair for cn with the issuing CA. Requires
// the caller to hold m.mu (read access to m.issuingKey/m.issuingCert is
// established by Bootstrap before any concurrent CSR signing happens).
func (m *Manager) issueCert(cn string, sans []string, validity time.Duration, clientAuth bool) (*rsa.PrivateKey, *x509.Certificate, liberr.Error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, ErrorGenerateKey.Error(err)
	}
	cert, cerr := m.signPublicKey(&key.PublicKey, cn, sans, validity, clientAuth)
	if cerr != nil {
		return nil, nil, cerr
	}
	return key, cert, nil
}

func (m *Manager) signPublicKey(pub *rsa.PublicKey, cn string, sans []string, validity time.Duration, clientAuth bool) (*x509.Certificate, liberr.Error) {
	tmpl := &x509.Certificate{
		SerialNumber: newSerial(),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(validity),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		DNSNames:     sans,
	}
	if clientAuth {
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	} else {
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, m.issuingCert, pub, m.issuingKey)
	if err != nil {
		return nil, ErrorGenerateCert.Error(err)
	}
	cert, perr := x509.ParseCertificate(der)
	if perr != nil {
		return nil, ErrorGenerateCert.Error(perr)
	}
	return cert, nil
}

func (m *Manager) tryLoad(keyPath, crtPath string) (*rsa.PrivateKey, *x509.Certificate, bool) {
	keyPEM, err1 := os.ReadFile(keyPath)
	crtPEM, err2 := os.ReadFile(crtPath)
	if err1 != nil || err2 != nil {
		return nil, nil, false
	}
	kb, _ := pem.Decode(keyPEM)
	cb, _ := pem.Decode(crtPEM)
	if kb == nil || cb == nil {
		return nil, nil, false
	}
	key, err := x509.ParsePKCS1PrivateKey(kb.Bytes)
	if err != nil {
		return nil, nil, false
	}
	cert, err := x509.ParseCertificate(cb.Bytes)
	if err != nil {
		return nil, nil, false
	}
	return key, cert, true
}

func (m *Manager) persist(keyPath, crtPath string, key *rsa.PrivateKey, der []byte) liberr.Error {
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	crtPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return ErrorPersist.Error(err)
	}
	if err := os.WriteFile(crtPath, crtPEM, 0o644); err != nil {
		return ErrorPersist.Error(err)
	}
	return nil
}

func newSerial() *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	n, _ := rand.Int(rand.Reader, limit)
	return n
}

// rebuildBundleLocked regenerates ca-bundle.crt (issuing then root PEM),
// its SHA-256 digest and a PKCS#1v1.5 signature of that digest by the
// issuing-CA key (§4.5 item 4). Caller must hold m.mu.
func (m *Manager) rebuildBundleLocked() liberr.Error {
	issuingPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: m.issuingCert.Raw})
	rootPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: m.rootCert.Raw})
	bundle := append(append([]byte{}, issuingPEM...), rootPEM...)

	if err := os.WriteFile(filepath.Join(m.root, "ca-bundle.crt"), bundle, 0o644); err != nil {
		return ErrorPersist.Error(err)
	}

	digest := sha256.Sum256(bundle)
	sig, err := rsa.SignPKCS1v15(rand.Reader, m.issuingKey, 0, digest[:])
	if err != nil {
		return ErrorGenerateCert.Error(err)
	}

	m.bundlePEM.Store(string(bundle))
	m.bundleDigest.Store(digest)
	m.bundleSig.Store(string(sig))
	return nil
}

func (m *Manager) CABundlePEM() string                { return m.bundlePEM.Load() }
func (m *Manager) CABundleDigest() [sha256.Size]byte   { return m.bundleDigest.Load() }
func (m *Manager) CABundleSignature() []byte           { return []byte(m.bundleSig.Load()) }
func (m *Manager) IssuingRenewAt() time.Time           { return m.issuingRenewAt.Load() }
func (m *Manager) ServerRenewAt() time.Time            { return m.serverRenewAt.Load() }

// ServerTLSConfig returns a *tls.Config whose certificate chain ends at
// the issuing CA, via the teacher's certs.ParsePair wrapper (§4.1).
func (m *Manager) ServerTLSConfig(rootPool func() *x509.CertPool) (*tls.Config, liberr.Error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(m.serverKey)})
	chainPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: m.serverCert.Raw})
	chainPEM = append(chainPEM, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: m.issuingCert.Raw})...)

	c, err := certs.ParsePair(string(keyPEM), string(chainPEM))
	if err != nil {
		return nil, ErrorLoad.Error(err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{c.TLS()},
		ClientCAs:    m.issuingPoolLocked(),
		ClientAuth:   tls.VerifyClientCertIfGiven,
	}, nil
}

func (m *Manager) issuingPoolLocked() *x509.CertPool {
	pool := x509.NewCertPool()
	issuingPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: m.issuingCert.Raw}))
	if c, err := ca.Parse(issuingPEM); err == nil {
		c.AppendPool(pool)
	} else {
		pool.AddCert(m.issuingCert)
	}
	return pool
}

// RootPool returns a CertPool containing the root CA, for verifying a
// full client chain back to the root during TLS handshake.
func (m *Manager) RootPool() *x509.CertPool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pool := x509.NewCertPool()
	rootPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: m.rootCert.Raw}))
	if c, err := ca.Parse(rootPEM); err == nil {
		c.AppendPool(pool)
	} else {
		pool.AddCert(m.rootCert)
	}
	return pool
}
