package adapter

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TLSFiles holds the PEM file paths of a mutual TLS setup.
type TLSFiles struct {
	CA   string
	Cert string
	Key  string
}

// Enabled reports whether any of the files is set.
func (f TLSFiles) Enabled() bool {
	return f.CA != "" || f.Cert != "" || f.Key != ""
}

// MakeTLSConfig returns a client [*tls.Config] trusting the CA and
// presenting the certificate pair.
func MakeTLSConfig(f TLSFiles) (*tls.Config, error) {
	const op = "adapter.MakeTLSConfig"

	if f.CA == "" || f.Cert == "" || f.Key == "" {
		return nil, fmt.Errorf(
			"%s: %w", op, errors.New("ca, cert and key are required"),
		)
	}

	caCert, err := os.ReadFile(f.CA)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: failed to read CA certificate file: %w", op, err,
		)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("%s: failed to parse CA certificate", op)
	}

	clientCert, err := tls.LoadX509KeyPair(f.Cert, f.Key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		Certificates: []tls.Certificate{clientCert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
