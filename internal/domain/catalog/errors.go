package catalog

import (
	"fmt"
	"strings"
)

// Error codes for catalog and step failures.
const (
	ErrCodeCatalogInvalid   = "CATALOG_INVALID"
	ErrCodeStepDuplicate    = "STEP_DUPLICATE"
	ErrCodePhaseOrder       = "PHASE_ORDER"
	ErrCodeCheckFailed      = "CHECK_FAILED"
	ErrCodeFetchFailed      = "FETCH_FAILED"
	ErrCodeIntegrity        = "INTEGRITY_MISMATCH"
	ErrCodeInstallFailed    = "INSTALL_FAILED"
	ErrCodeElevationDenied  = "ELEVATION_UNAVAILABLE"
	ErrCodeUnknownStepKind  = "UNKNOWN_STEP_KIND"
	ErrCodeDescriptorFields = "DESCRIPTOR_FIELDS"
)

// StepError is a coded error with an actionable remediation hint.
type StepError struct {
	Code       string // Error code for categorization
	Message    string // User-friendly error message
	StepID     string // Step ID if applicable
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("step %q: %s", e.StepID, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.StepID != "" {
		b.WriteString(fmt.Sprintf("\n  Step: %s", e.StepID))
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}
	if e.Underlying != nil {
		b.WriteString(fmt.Sprintf("\n  Cause: %s", e.Underlying.Error()))
	}
	return b.String()
}

// NewStepError creates a new StepError with the given code and message.
func NewStepError(code, message string) *StepError {
	return &StepError{Code: code, Message: message}
}

// WithStepID returns a copy with the step ID set.
func (e *StepError) WithStepID(stepID string) *StepError {
	clone := *e
	clone.StepID = stepID
	return &clone
}

// WithSuggestion returns a copy with the suggestion set.
func (e *StepError) WithSuggestion(suggestion string) *StepError {
	clone := *e
	clone.Suggestion = suggestion
	return &clone
}

// WithUnderlying returns a copy wrapping another error.
func (e *StepError) WithUnderlying(err error) *StepError {
	clone := *e
	clone.Underlying = err
	return &clone
}

// NewDuplicateStepError reports a catalog authoring defect: two steps with
// the same name.
func NewDuplicateStepError(stepID string) *StepError {
	return &StepError{
		Code:       ErrCodeStepDuplicate,
		Message:    "a step with this name is already registered",
		StepID:     stepID,
		Suggestion: "Each step needs a unique name. Check the catalog for duplicate entries.",
	}
}

// NewPhaseOrderError reports phases that go backwards in declaration order.
func NewPhaseOrderError(stepID string, phase, previous int) *StepError {
	return &StepError{
		Code:       ErrCodePhaseOrder,
		Message:    fmt.Sprintf("phase %d declared after phase %d", phase, previous),
		StepID:     stepID,
		Suggestion: "Phase numbers must be non-decreasing in catalog order. Reorder the catalog entries.",
	}
}

// NewCheckFailedError reports a presence check that could not decide.
func NewCheckFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeCheckFailed,
		Message:    "presence check failed",
		StepID:     stepID,
		Suggestion: "The step could not determine its current state. Re-run to retry.",
		Underlying: err,
	}
}

// NewFetchFailedError reports a download failure.
func NewFetchFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeFetchFailed,
		Message:    "artifact download failed",
		StepID:     stepID,
		Suggestion: "Check network connectivity and the catalog URL, then re-run to retry.",
		Underlying: err,
	}
}

// NewIntegrityError reports a digest mismatch. Never downgraded to a
// warning regardless of the step's fatality policy classification.
func NewIntegrityError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeIntegrity,
		Message:    "downloaded artifact failed integrity verification",
		StepID:     stepID,
		Suggestion: "The upstream artifact changed or the transfer was corrupted. Verify the expected digest in the catalog.",
		Underlying: err,
	}
}

// NewInstallFailedError reports a failed install action.
func NewInstallFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeInstallFailed,
		Message:    "install action failed",
		StepID:     stepID,
		Suggestion: "Inspect the error output, then re-run to retry; completed steps are skipped.",
		Underlying: err,
	}
}

// NewElevationUnavailableError reports a privileged step without usable
// escalation.
func NewElevationUnavailableError(stepID string) *StepError {
	return &StepError{
		Code:       ErrCodeElevationDenied,
		Message:    "step requires elevation, but sudo is not available non-interactively",
		StepID:     stepID,
		Suggestion: "Run 'sudo -v' first, or grant NOPASSWD for the provisioning account.",
	}
}
