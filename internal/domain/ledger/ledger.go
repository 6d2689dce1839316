// Package ledger provides the durable record of step outcomes across runs.
//
// The ledger is an audit trail and re-run optimization, never the source
// of truth for presence: the live presence predicate always wins.
package ledger

import (
	"errors"
	"sort"
	"time"
)

// SchemaVersion is the on-disk ledger schema.
const SchemaVersion = 1

// Ledger errors.
var (
	ErrNotFound = errors.New("ledger file not found")
	ErrCorrupt  = errors.New("ledger file is corrupt")
)

// Outcome is the recorded result of a step in one run.
type Outcome string

const (
	// OutcomeSucceeded means the install action ran and completed.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeAlreadyPresent means the presence predicate short-circuited
	// the install.
	OutcomeAlreadyPresent Outcome = "already-present"
	// OutcomeFailed means the step's fetch or install action failed.
	OutcomeFailed Outcome = "failed"
)

// Valid reports whether the outcome is a known value.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSucceeded, OutcomeAlreadyPresent, OutcomeFailed:
		return true
	}
	return false
}

// RunRecord is the durable evidence for one step. Prior records for the
// same step are superseded, not appended.
type RunRecord struct {
	Outcome   Outcome
	Timestamp time.Time
	Version   string
}

// Ledger maps step names to their latest known record, plus run-level
// metadata.
type Ledger struct {
	runID   string
	account string
	lastRun time.Time
	records map[string]RunRecord
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		records: make(map[string]RunRecord),
	}
}

// BeginRun stamps run-level metadata at the start of an invocation.
func (l *Ledger) BeginRun(runID, account string, at time.Time) {
	l.runID = runID
	l.account = account
	l.lastRun = at
}

// RunID returns the identifier of the last run that touched the ledger.
func (l *Ledger) RunID() string { return l.runID }

// Account returns the target account identity of the last run.
func (l *Ledger) Account() string { return l.account }

// LastRun returns the timestamp of the last run.
func (l *Ledger) LastRun() time.Time { return l.lastRun }

// Record supersedes the step's record with a new outcome.
func (l *Ledger) Record(stepName string, outcome Outcome, version string, at time.Time) {
	l.records[stepName] = RunRecord{
		Outcome:   outcome,
		Timestamp: at,
		Version:   version,
	}
}

// Get returns the record for a step, if any.
func (l *Ledger) Get(stepName string) (RunRecord, bool) {
	rec, ok := l.records[stepName]
	return rec, ok
}

// StepNames returns recorded step names in sorted order.
func (l *Ledger) StepNames() []string {
	names := make([]string, 0, len(l.records))
	for name := range l.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of recorded steps.
func (l *Ledger) Len() int {
	return len(l.records)
}
