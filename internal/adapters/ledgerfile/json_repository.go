// Package ledgerfile provides JSON file persistence for the run ledger.
package ledgerfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/devbox/internal/domain/ledger"
)

// JSONRepository implements ledger.Repository using a JSON file.
type JSONRepository struct{}

// NewJSONRepository creates a new JSON-based ledger repository.
func NewJSONRepository() *JSONRepository {
	return &JSONRepository{}
}

// Load reads a ledger from the given path.
func (r *JSONRepository) Load(_ context.Context, path string) (*ledger.Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var dto ledger.DTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrCorrupt, err)
	}

	l, err := ledger.FromDTO(dto)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Save writes a ledger atomically: the serialized form goes to a temp
// file in the same directory, which then replaces the durable file.
// A reader never observes a partially written ledger.
func (r *JSONRepository) Save(_ context.Context, path string, l *ledger.Ledger) error {
	dto := ledger.ToDTO(l)

	data, err := json.MarshalIndent(dto, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp ledger: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

// Ensure JSONRepository implements ledger.Repository.
var _ ledger.Repository = (*JSONRepository)(nil)
