// Package trust builds the HTTP client used when the portal sits behind a
// private CA or requires mutual TLS.
package trust

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/darksworm/kubeportal/pkg/errors"
)

// Options says where extra trust material lives. Empty fields fall back to
// SSL_CERT_FILE and SSL_CERT_DIR.
type Options struct {
	CAFile     string
	CADir      string // colon separated, like SSL_CERT_DIR
	ClientCert string
	ClientKey  string
	Insecure   bool
}

// Custom reports whether o asks for anything beyond the system defaults.
func (o Options) Custom() bool {
	return o.CAFile != "" || o.CADir != "" || o.ClientCert != "" || o.ClientKey != "" ||
		os.Getenv("SSL_CERT_FILE") != "" || os.Getenv("SSL_CERT_DIR") != ""
}

// Pool returns the system roots plus the configured CA certificates.
func Pool(o Options) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		// No system pool on some platforms; the handshake reports what is missing.
		pool = x509.NewCertPool()
	}

	add := func(path string) error {
		pem, err := os.ReadFile(path)
		if err != nil {
			return apperrors.ConfigError("CA_READ_FAILED", fmt.Sprintf("cannot read CA file %s", path)).WithCause(err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return apperrors.ConfigError("CA_INVALID", fmt.Sprintf("no valid certificates in %s", path))
		}
		return nil
	}

	if f := firstSet(o.CAFile, os.Getenv("SSL_CERT_FILE")); f != "" {
		if err := add(f); err != nil {
			return nil, err
		}
	}

	dirs := firstSet(o.CADir, os.Getenv("SSL_CERT_DIR"))
	explicit := o.CADir != ""
	for _, dir := range strings.Split(dirs, ":") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			if explicit {
				return nil, apperrors.ConfigError("CA_DIR_MISSING", fmt.Sprintf("CA directory %s", dir)).WithCause(err)
			}
			continue
		}
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, werr error) error {
			if werr != nil {
				return werr
			}
			if d.IsDir() || !hasCertSuffix(p) {
				return nil
			}
			return add(p)
		})
		if err != nil {
			return nil, err
		}
	}
	return pool, nil
}

// ClientCertificate loads the mTLS key pair. Both paths or neither.
func ClientCertificate(o Options) (*tls.Certificate, error) {
	switch {
	case o.ClientCert == "" && o.ClientKey == "":
		return nil, nil
	case o.ClientCert == "" || o.ClientKey == "":
		return nil, apperrors.ConfigError("CLIENT_CERT_INCOMPLETE",
			"client certificate and key must be given together")
	}
	cert, err := tls.LoadX509KeyPair(o.ClientCert, o.ClientKey)
	if err != nil {
		return nil, apperrors.ConfigError("CLIENT_CERT_INVALID", "cannot load client certificate").WithCause(err)
	}
	return &cert, nil
}

// NewHTTPClient returns a client trusting Pool(o) and presenting the client
// certificate, if any. It has no overall timeout; requests carry deadlines.
func NewHTTPClient(o Options) (*http.Client, error) {
	pool, err := Pool(o)
	if err != nil {
		return nil, err
	}
	cert, err := ClientCertificate(o)
	if err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		RootCAs:            pool,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: o.Insecure,
	}
	if cert != nil {
		cfg.Certificates = []tls.Certificate{*cert}
	}
	return &http.Client{Transport: &http.Transport{
		TLSClientConfig: cfg,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     30 * time.Second,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
	}}, nil
}

func firstSet(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func hasCertSuffix(p string) bool {
	p = strings.ToLower(p)
	return strings.HasSuffix(p, ".pem") || strings.HasSuffix(p, ".crt")
}
