// Package engine orders steps, applies the skip-if-present policy,
// executes install actions, and keeps the ledger current.
package engine

import (
	"time"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/ledger"
)

// StepResult captures the outcome of one step in one run.
type StepResult struct {
	stepID   catalog.StepID
	phase    int
	outcome  ledger.Outcome
	err      error
	duration time.Duration
	version  string
	planned  bool
}

// NewStepResult creates a StepResult.
func NewStepResult(stepID catalog.StepID, phase int, outcome ledger.Outcome, err error) StepResult {
	return StepResult{
		stepID:  stepID,
		phase:   phase,
		outcome: outcome,
		err:     err,
	}
}

// NewPlannedResult creates a dry-run result for a step that would be
// applied.
func NewPlannedResult(stepID catalog.StepID, phase int) StepResult {
	return StepResult{
		stepID:  stepID,
		phase:   phase,
		planned: true,
	}
}

// StepID returns the ID of the step.
func (r StepResult) StepID() catalog.StepID {
	return r.stepID
}

// Phase returns the step's reporting phase.
func (r StepResult) Phase() int {
	return r.phase
}

// Outcome returns the recorded outcome. Zero value for planned results.
func (r StepResult) Outcome() ledger.Outcome {
	return r.outcome
}

// Error returns the failure, if any.
func (r StepResult) Error() error {
	return r.err
}

// Duration returns how long the install action took.
func (r StepResult) Duration() time.Duration {
	return r.duration
}

// Version returns the installed version, if known.
func (r StepResult) Version() string {
	return r.version
}

// Planned reports whether this is a dry-run "would apply" result.
func (r StepResult) Planned() bool {
	return r.planned
}

// Failed reports whether the step failed.
func (r StepResult) Failed() bool {
	return r.outcome == ledger.OutcomeFailed
}

// WithDuration returns a copy with the duration set.
func (r StepResult) WithDuration(d time.Duration) StepResult {
	r.duration = d
	return r
}

// WithVersion returns a copy with the version set.
func (r StepResult) WithVersion(v string) StepResult {
	r.version = v
	return r
}
