package ports

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/devbox/internal/domain/integrity"
)

// Downloader error contract. Implementations wrap these sentinels so
// callers can classify failures without knowing the transport.
var (
	// ErrInsecureURL marks a refused non-encrypted endpoint.
	ErrInsecureURL = errors.New("refusing non-https download")
	// ErrFetchFailed marks a network or transport failure.
	ErrFetchFailed = errors.New("download failed")
	// ErrIntegrityMismatch marks a digest verification failure.
	ErrIntegrityMismatch = errors.New("artifact digest mismatch")
)

// LocalArtifact is a downloaded file in a caller-exclusive scratch location.
type LocalArtifact struct {
	// Path is the absolute path of the downloaded file.
	Path string

	// Cleanup removes the artifact and its scratch directory.
	// Safe to call more than once.
	Cleanup func()
}

// Downloader retrieves remote artifacts over a secure transport.
// Implementations must reject non-encrypted endpoints rather than
// silently downgrading.
type Downloader interface {
	// Fetch downloads the artifact at url into a fresh scratch location.
	Fetch(ctx context.Context, url string) (LocalArtifact, error)

	// FetchVerified downloads the artifact and verifies its digest.
	// On mismatch the downloaded file is removed and no artifact is returned.
	FetchVerified(ctx context.Context, url string, digest integrity.Integrity) (LocalArtifact, error)
}
