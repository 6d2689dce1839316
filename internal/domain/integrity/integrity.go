// Package integrity provides content digest value objects for verifying
// downloaded artifacts.
package integrity

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// Digest errors.
var (
	ErrUnsupportedAlgorithm = errors.New("unsupported digest algorithm")
	ErrInvalidDigest        = errors.New("invalid digest format")
)

// Supported digest algorithms.
const (
	AlgorithmSHA256 = "sha256"
	AlgorithmSHA512 = "sha512"
)

// hexLengths maps algorithm to expected hex string length.
var hexLengths = map[string]int{
	AlgorithmSHA256: 64,
	AlgorithmSHA512: 128,
}

// Integrity is an immutable content digest in "algorithm:hex" form.
type Integrity struct {
	algorithm string
	digest    string
}

// New creates an Integrity value, validating algorithm and hex encoding.
func New(algorithm, digest string) (Integrity, error) {
	wantLen, ok := hexLengths[algorithm]
	if !ok {
		return Integrity{}, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
	if digest == "" {
		return Integrity{}, fmt.Errorf("%w: empty digest", ErrInvalidDigest)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return Integrity{}, fmt.Errorf("%w: not hex encoded", ErrInvalidDigest)
	}
	if len(digest) != wantLen {
		return Integrity{}, fmt.Errorf("%w: expected %d hex chars for %s, got %d",
			ErrInvalidDigest, wantLen, algorithm, len(digest))
	}
	return Integrity{algorithm: algorithm, digest: strings.ToLower(digest)}, nil
}

// Parse parses an integrity string in the format "algorithm:hex".
// A bare 64-char hex string is accepted as sha256 for catalog convenience.
func Parse(s string) (Integrity, error) {
	if s == "" {
		return Integrity{}, fmt.Errorf("%w: empty string", ErrInvalidDigest)
	}
	algorithm, digest, found := strings.Cut(s, ":")
	if !found {
		return New(AlgorithmSHA256, s)
	}
	return New(algorithm, digest)
}

// FromData computes the digest of data with the given algorithm.
// An unknown algorithm falls back to sha256.
func FromData(algorithm string, data []byte) Integrity {
	switch algorithm {
	case AlgorithmSHA512:
		sum := sha512.Sum512(data)
		return Integrity{algorithm: algorithm, digest: hex.EncodeToString(sum[:])}
	default:
		sum := sha256.Sum256(data)
		return Integrity{algorithm: AlgorithmSHA256, digest: hex.EncodeToString(sum[:])}
	}
}

// Algorithm returns the digest algorithm.
func (i Integrity) Algorithm() string {
	return i.algorithm
}

// Digest returns the hex-encoded digest value.
func (i Integrity) Digest() string {
	return i.digest
}

// String returns the integrity in "algorithm:hex" format.
func (i Integrity) String() string {
	return i.algorithm + ":" + i.digest
}

// IsZero returns true for the zero value.
func (i Integrity) IsZero() bool {
	return i.algorithm == "" && i.digest == ""
}

// Verify reports whether data matches this digest.
func (i Integrity) Verify(data []byte) bool {
	if i.IsZero() {
		return false
	}
	computed := FromData(i.algorithm, data)
	return computed.digest == i.digest
}

// VerifyFile reports whether the file at path matches this digest.
// The file is streamed rather than read into memory.
func (i Integrity) VerifyFile(path string) (bool, error) {
	if i.IsZero() {
		return false, nil
	}

	var h hash.Hash
	switch i.algorithm {
	case AlgorithmSHA512:
		h = sha512.New()
	default:
		h = sha256.New()
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(h, f); err != nil {
		return false, err
	}
	return hex.EncodeToString(h.Sum(nil)) == i.digest, nil
}
