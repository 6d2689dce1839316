package catalog

// Status is the result of a step's live presence check.
type Status string

const (
	// StatusSatisfied indicates the step's effect is already in place.
	StatusSatisfied Status = "satisfied"
	// StatusNeedsApply indicates the step must be applied.
	StatusNeedsApply Status = "needs-apply"
	// StatusUnknown indicates the presence check could not decide.
	StatusUnknown Status = "unknown"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// FailurePolicy decides whether a step's failure aborts the run.
type FailurePolicy string

const (
	// PolicyAbort stops the run on failure.
	PolicyAbort FailurePolicy = "abort"
	// PolicyContinue records the failure and proceeds.
	PolicyContinue FailurePolicy = "continue"
)

// ParseFailurePolicy parses a catalog policy string. Empty defaults to
// continue, matching the forgiving posture of a bootstrap run.
func ParseFailurePolicy(s string) (FailurePolicy, bool) {
	switch s {
	case "", string(PolicyContinue):
		return PolicyContinue, true
	case string(PolicyAbort):
		return PolicyAbort, true
	}
	return "", false
}
