package api

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// SecurityLayer supplies the base transport used to reach the API.
type SecurityLayer interface {
	Transport() (http.RoundTripper, error)
}

// TLSTransport represents a transport that trusts an extra certificate
// authority and optionally presents a client certificate.
type TLSTransport struct {
	caFileName         string
	certFileName       string
	privateKeyFileName string
}

// NewTLSTransport creates a new TLSTransport instance.
//
// Parameters:
//   - caFileName: Path to a PEM bundle added to the system roots (may be empty)
//   - certFileName: Path to the client certificate file (may be empty)
//   - privateKeyFileName: Path to the client private key file (may be empty)
//
// Returns a pointer to the newly created TLSTransport instance.
func NewTLSTransport(caFileName, certFileName, privateKeyFileName string) *TLSTransport {
	return &TLSTransport{
		caFileName:         caFileName,
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
	}
}

// Transport builds an HTTP transport with the configured TLS material.
func (t *TLSTransport) Transport() (http.RoundTripper, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if t.caFileName != "" {
		pem, err := os.ReadFile(t.caFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", t.caFileName)
		}
		tlsConfig.RootCAs = pool
	}

	if t.certFileName != "" || t.privateKeyFileName != "" {
		cert, err := tls.LoadX509KeyPair(t.certFileName, t.privateKeyFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = tlsConfig
	return tr, nil
}

// PlainTransport uses the default transport and system trust store.
type PlainTransport struct{}

// NewPlainTransport creates a new PlainTransport instance.
func NewPlainTransport() *PlainTransport {
	return &PlainTransport{}
}

// Transport returns a clone of the default transport.
func (t *PlainTransport) Transport() (http.RoundTripper, error) {
	return http.DefaultTransport.(*http.Transport).Clone(), nil
}
