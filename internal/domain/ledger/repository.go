package ledger

import (
	"context"
	"fmt"
	"time"
)

// Repository persists ledgers. Saves must be atomic: a write is either
// fully visible or not visible at all.
type Repository interface {
	// Load reads the ledger at path. Returns ErrNotFound when missing
	// and ErrCorrupt when unparseable.
	Load(ctx context.Context, path string) (*Ledger, error)

	// Save durably writes the ledger to path.
	Save(ctx context.Context, path string, l *Ledger) error
}

// DTO is the serialized ledger shape.
type DTO struct {
	SchemaVersion int                `json:"schema_version"`
	RunID         string             `json:"run_id,omitempty"`
	Account       string             `json:"account,omitempty"`
	LastRun       time.Time          `json:"last_run,omitempty"`
	Steps         map[string]StepDTO `json:"steps"`
}

// StepDTO is the serialized form of a RunRecord.
type StepDTO struct {
	Outcome   string    `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// ToDTO converts a ledger to its serialized shape.
func ToDTO(l *Ledger) DTO {
	steps := make(map[string]StepDTO, l.Len())
	for _, name := range l.StepNames() {
		rec, _ := l.Get(name)
		steps[name] = StepDTO{
			Outcome:   string(rec.Outcome),
			Timestamp: rec.Timestamp,
			Version:   rec.Version,
		}
	}
	return DTO{
		SchemaVersion: SchemaVersion,
		RunID:         l.RunID(),
		Account:       l.Account(),
		LastRun:       l.LastRun(),
		Steps:         steps,
	}
}

// FromDTO converts a serialized ledger back to the domain type.
func FromDTO(dto DTO) (*Ledger, error) {
	if dto.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrCorrupt, dto.SchemaVersion)
	}

	l := New()
	l.BeginRun(dto.RunID, dto.Account, dto.LastRun)
	for name, step := range dto.Steps {
		outcome := Outcome(step.Outcome)
		if !outcome.Valid() {
			return nil, fmt.Errorf("%w: unknown outcome %q for step %q", ErrCorrupt, step.Outcome, name)
		}
		l.Record(name, outcome, step.Version, step.Timestamp)
	}
	return l, nil
}
