package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned when a PEM bundle holds no certificates.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// Pool manages a pool of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool creates a pool seeded with the system roots.
// Systems without a readable system pool start empty.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertFile adds every certificate in a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}
	return p.AddCertPEM(data)
}

// AddCertPEM adds every CERTIFICATE block in pemData. Other block types
// are skipped.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var added int
	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		p.certPool.AddCert(cert)
		added++
	}
	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// TLSConfig creates a client TLS config trusting this pool.
func (p *Pool) TLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}

// ClientConfig returns a client TLS config trusting the system roots plus
// the certificates in caFile. An empty caFile returns nil, meaning the
// default transport settings apply.
func ClientConfig(caFile string) (*tls.Config, error) {
	if caFile == "" {
		return nil, nil
	}
	pool := NewPool()
	if err := pool.AddCertFile(caFile); err != nil {
		return nil, err
	}
	return pool.TLSConfig(), nil
}
