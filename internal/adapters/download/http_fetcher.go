// Package download provides the secure-transport artifact fetcher.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/devbox/internal/domain/integrity"
	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/validation"
)

// Fetch errors, aliased from the port contract.
var (
	ErrInsecureURL       = ports.ErrInsecureURL
	ErrFetchFailed       = ports.ErrFetchFailed
	ErrIntegrityMismatch = ports.ErrIntegrityMismatch
)

// HTTPFetcher implements ports.Downloader over HTTPS.
//
// Each fetch gets a fresh scratch directory created with owner-only
// permissions; the returned artifact's Cleanup removes the directory on
// every exit path.
type HTTPFetcher struct {
	client      *http.Client
	scratchRoot string
}

// Option configures the fetcher.
type Option func(*HTTPFetcher)

// WithClient overrides the HTTP client (used by tests with TLS test
// servers).
func WithClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithScratchRoot overrides the parent directory for scratch locations.
func WithScratchRoot(dir string) Option {
	return func(f *HTTPFetcher) {
		f.scratchRoot = dir
	}
}

// NewHTTPFetcher creates a fetcher with a 5 minute request timeout.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{Timeout: 5 * time.Minute},
		scratchRoot: os.TempDir(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the artifact at url into a caller-exclusive scratch
// directory and returns its local path.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (ports.LocalArtifact, error) {
	return f.fetch(ctx, url, integrity.Integrity{})
}

// FetchVerified downloads the artifact and verifies its digest. On
// mismatch the scratch directory is removed and no artifact is returned,
// so a later step can never pick up half-verified content.
func (f *HTTPFetcher) FetchVerified(ctx context.Context, url string, digest integrity.Integrity) (ports.LocalArtifact, error) {
	if digest.IsZero() {
		return ports.LocalArtifact{}, fmt.Errorf("%w: empty digest", integrity.ErrInvalidDigest)
	}
	return f.fetch(ctx, url, digest)
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string, digest integrity.Integrity) (ports.LocalArtifact, error) {
	if err := validation.ValidateSecureURL(url); err != nil {
		return ports.LocalArtifact{}, fmt.Errorf("%w: %w", ErrInsecureURL, err)
	}

	scratch, err := os.MkdirTemp(f.scratchRoot, "devbox-fetch-*")
	if err != nil {
		return ports.LocalArtifact{}, fmt.Errorf("%w: create scratch dir: %w", ErrFetchFailed, err)
	}
	if err := os.Chmod(scratch, 0o700); err != nil {
		_ = os.RemoveAll(scratch)
		return ports.LocalArtifact{}, fmt.Errorf("%w: restrict scratch dir: %w", ErrFetchFailed, err)
	}

	dest := filepath.Join(scratch, artifactName(url))
	if err := f.download(ctx, url, dest); err != nil {
		_ = os.RemoveAll(scratch)
		return ports.LocalArtifact{}, err
	}

	if !digest.IsZero() {
		ok, err := digest.VerifyFile(dest)
		if err != nil {
			_ = os.RemoveAll(scratch)
			return ports.LocalArtifact{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		if !ok {
			// Remove the artifact before reporting: a mismatching file
			// must never be left where a later step could trust it.
			_ = os.RemoveAll(scratch)
			return ports.LocalArtifact{}, fmt.Errorf("%w: expected %s", ErrIntegrityMismatch, digest.String())
		}
	}

	return ports.LocalArtifact{
		Path: dest,
		Cleanup: func() {
			_ = os.RemoveAll(scratch)
		},
	}, nil
}

func (f *HTTPFetcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrFetchFailed, url, resp.Status)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return nil
}

// artifactName derives a stable scratch file name from the URL path.
func artifactName(url string) string {
	base := path.Base(url)
	if base == "" || base == "." || base == "/" {
		return "artifact"
	}
	return base
}

// Ensure HTTPFetcher implements ports.Downloader.
var _ ports.Downloader = (*HTTPFetcher)(nil)
