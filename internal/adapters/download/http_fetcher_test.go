package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devbox/internal/domain/integrity"
)

func newTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestFetcher(t *testing.T, server *httptest.Server) (*HTTPFetcher, string) {
	t.Helper()
	scratch := t.TempDir()
	return NewHTTPFetcher(WithClient(server.Client()), WithScratchRoot(scratch)), scratch
}

func TestFetch(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "#!/bin/sh\necho hi\n")
	fetcher, _ := newTestFetcher(t, server)

	artifact, err := fetcher.Fetch(context.Background(), server.URL+"/install.sh")
	require.NoError(t, err)
	defer artifact.Cleanup()

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi\n", string(data))
	assert.Equal(t, "install.sh", filepath.Base(artifact.Path))

	info, err := os.Stat(filepath.Dir(artifact.Path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm(), "scratch dir is owner-only")
}

func TestFetchCleanupRemovesScratch(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "data")
	fetcher, scratch := newTestFetcher(t, server)

	artifact, err := fetcher.Fetch(context.Background(), server.URL+"/file")
	require.NoError(t, err)

	artifact.Cleanup()
	artifact.Cleanup() // safe to call twice

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchRejectsInsecureURL(t *testing.T) {
	t.Parallel()

	fetcher := NewHTTPFetcher(WithScratchRoot(t.TempDir()))
	_, err := fetcher.Fetch(context.Background(), "http://example.com/install.sh")
	assert.ErrorIs(t, err, ErrInsecureURL)
}

func TestFetchServerError(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "data")
	fetcher, scratch := newTestFetcher(t, server)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/missing")
	assert.ErrorIs(t, err, ErrFetchFailed)

	entries, readErr := os.ReadDir(scratch)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "failed fetch leaves no scratch dir behind")
}

func TestFetchVerified(t *testing.T) {
	t.Parallel()

	body := "binary bytes"
	server := newTestServer(t, body)
	fetcher, _ := newTestFetcher(t, server)

	digest := integrity.FromData(integrity.AlgorithmSHA256, []byte(body))
	artifact, err := fetcher.FetchVerified(context.Background(), server.URL+"/rg", digest)
	require.NoError(t, err)
	defer artifact.Cleanup()

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

func TestFetchVerifiedMismatchRemovesArtifact(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, "tampered bytes")
	fetcher, scratch := newTestFetcher(t, server)

	digest := integrity.FromData(integrity.AlgorithmSHA256, []byte("expected bytes"))
	_, err := fetcher.FetchVerified(context.Background(), server.URL+"/rg", digest)
	require.ErrorIs(t, err, ErrIntegrityMismatch)

	entries, readErr := os.ReadDir(scratch)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "mismatching artifact must not survive")
}

func TestFetchVerifiedRequiresDigest(t *testing.T) {
	t.Parallel()

	fetcher := NewHTTPFetcher(WithScratchRoot(t.TempDir()))
	_, err := fetcher.FetchVerified(context.Background(), "https://example.com/rg", integrity.Integrity{})
	assert.Error(t, err)
}
