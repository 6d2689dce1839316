package catalog

import "errors"

// ErrRegistryClosed is returned when registering after Close.
var ErrRegistryClosed = errors.New("catalog registry is closed")

// Registry holds the ordered catalog of provisioning steps.
//
// Declaration order is the only ordering signal: later steps may assume
// earlier ones ran, but the registry does not verify this. Phase numbers
// group steps for reporting and must be non-decreasing.
type Registry struct {
	steps  []Step
	byName map[string]struct{}
	closed bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]struct{}),
	}
}

// Register adds a step, preserving declaration order.
// Fails on duplicate names and on phases that go backwards.
func (r *Registry) Register(step Step) error {
	if r.closed {
		return ErrRegistryClosed
	}

	name := step.ID().String()
	if _, exists := r.byName[name]; exists {
		return NewDuplicateStepError(name)
	}

	if n := len(r.steps); n > 0 {
		if prev := r.steps[n-1].Phase(); step.Phase() < prev {
			return NewPhaseOrderError(name, step.Phase(), prev)
		}
	}

	r.byName[name] = struct{}{}
	r.steps = append(r.steps, step)
	return nil
}

// Close freezes the registry. Further Register calls fail.
func (r *Registry) Close() {
	r.closed = true
}

// Steps returns the registered steps in declaration order.
func (r *Registry) Steps() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}
