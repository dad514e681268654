package trust

import (
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/darksworm/kubeportal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeServerCA(t *testing.T, srv *httptest.Server, path string) {
	t.Helper()
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(path, block, 0o600))
}

func clearSSLEnv(t *testing.T) {
	t.Setenv("SSL_CERT_FILE", "")
	t.Setenv("SSL_CERT_DIR", "")
}

func TestClientTrustsConfiguredCA(t *testing.T) {
	clearSSLEnv(t)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	caFile := filepath.Join(t.TempDir(), "portal-ca.pem")
	writeServerCA(t, srv, caFile)

	hc, err := NewHTTPClient(Options{CAFile: caFile})
	require.NoError(t, err)
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCADirectoryIsWalked(t *testing.T) {
	clearSSLEnv(t)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	writeServerCA(t, srv, filepath.Join(dir, "nested", "portal.crt"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("not a cert"), 0o600))

	hc, err := NewHTTPClient(Options{CADir: dir})
	require.NoError(t, err)
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestUntrustedServerFails(t *testing.T) {
	clearSSLEnv(t)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	hc, err := NewHTTPClient(Options{})
	require.NoError(t, err)
	_, err = hc.Get(srv.URL)
	assert.Error(t, err)

	hc, err = NewHTTPClient(Options{Insecure: true})
	require.NoError(t, err)
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestPoolErrors(t *testing.T) {
	clearSSLEnv(t)
	dir := t.TempDir()

	_, err := Pool(Options{CAFile: filepath.Join(dir, "missing.pem")})
	require.Error(t, err)
	pe, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "CA_READ_FAILED", pe.Code)

	bad := filepath.Join(dir, "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o600))
	_, err = Pool(Options{CAFile: bad})
	pe, _ = apperrors.As(err)
	require.NotNil(t, pe)
	assert.Equal(t, "CA_INVALID", pe.Code)

	_, err = Pool(Options{CADir: filepath.Join(dir, "nope")})
	assert.Error(t, err, "explicit missing directory fails")

	t.Setenv("SSL_CERT_DIR", filepath.Join(dir, "nope")+":"+filepath.Join(dir, "also-nope"))
	_, err = Pool(Options{})
	assert.NoError(t, err, "missing env directories are skipped")
}

func TestClientCertificateNeedsBothHalves(t *testing.T) {
	cert, err := ClientCertificate(Options{})
	assert.NoError(t, err)
	assert.Nil(t, cert)

	_, err = ClientCertificate(Options{ClientCert: "/tmp/c.pem"})
	pe, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "CLIENT_CERT_INCOMPLETE", pe.Code)
}

func TestCustom(t *testing.T) {
	clearSSLEnv(t)
	assert.False(t, Options{Insecure: true}.Custom())
	assert.True(t, Options{CAFile: "x"}.Custom())
}
