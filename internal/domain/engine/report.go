package engine

import (
	"github.com/felixgeelhaar/devbox/internal/domain/ledger"
)

// Process exit codes.
const (
	// ExitOK means every step was already satisfied or succeeded.
	ExitOK = 0
	// ExitPartial means at least one continue-policy step failed.
	ExitPartial = 1
	// ExitAborted means a fatal step failure (or cancellation, or a
	// catalog defect before any step ran) stopped the run.
	ExitAborted = 2
)

// Report aggregates the results of one runner invocation.
type Report struct {
	runID     string
	results   []StepResult
	aborted   bool
	cancelled bool
}

// NewReport creates an empty report for the given run.
func NewReport(runID string) *Report {
	return &Report{runID: runID}
}

// RunID returns the run identifier.
func (r *Report) RunID() string {
	return r.runID
}

// Add appends a step result.
func (r *Report) Add(result StepResult) {
	r.results = append(r.results, result)
}

// Results returns all step results in execution order.
func (r *Report) Results() []StepResult {
	return r.results
}

// Abort marks the run as stopped by a fatal step failure.
func (r *Report) Abort() {
	r.aborted = true
}

// Cancel marks the run as stopped by operator interrupt.
func (r *Report) Cancel() {
	r.cancelled = true
}

// Aborted reports whether the run stopped early on a fatal failure.
func (r *Report) Aborted() bool {
	return r.aborted
}

// Cancelled reports whether the run was interrupted.
func (r *Report) Cancelled() bool {
	return r.cancelled
}

// Failures returns the failed step results.
func (r *Report) Failures() []StepResult {
	var failed []StepResult
	for _, res := range r.results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Summary aggregates outcome counts.
type Summary struct {
	Total          int
	Succeeded      int
	AlreadyPresent int
	Failed         int
	Planned        int
}

// Summary returns aggregate statistics.
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.results)}
	for _, res := range r.results {
		switch {
		case res.Planned():
			s.Planned++
		case res.Outcome() == ledger.OutcomeSucceeded:
			s.Succeeded++
		case res.Outcome() == ledger.OutcomeAlreadyPresent:
			s.AlreadyPresent++
		case res.Outcome() == ledger.OutcomeFailed:
			s.Failed++
		}
	}
	return s
}

// ExitCode maps the report to the process exit contract.
func (r *Report) ExitCode() int {
	if r.aborted || r.cancelled {
		return ExitAborted
	}
	if len(r.Failures()) > 0 {
		return ExitPartial
	}
	return ExitOK
}
