package catalog

import (
	"context"

	"github.com/felixgeelhaar/devbox/internal/domain/session"
)

// Step represents one idempotent unit of provisioning work.
//
// The engine guarantees Apply is only invoked when Check returned
// StatusNeedsApply immediately before, so Apply may assume it starts
// from "not present".
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// Phase returns the reporting phase this step belongs to.
	// Phases group steps; they do not express dependencies.
	Phase() int

	// Check evaluates the live presence predicate.
	Check(ctx RunContext) (Status, error)

	// Apply performs the step's install action.
	Apply(ctx RunContext) error

	// Version returns the installed version string if it can be
	// determined, otherwise empty. Called after a successful Check or
	// Apply for the ledger record.
	Version(ctx RunContext) string

	// Policy returns the step's fatality policy.
	Policy() FailurePolicy

	// Privileged reports whether the step requires elevation.
	Privileged() bool
}

// RunContext carries the execution context and the immutable environment
// into step Check and Apply.
type RunContext struct {
	ctx    context.Context
	env    session.Context
	dryRun bool
}

// NewRunContext creates a RunContext.
func NewRunContext(ctx context.Context, env session.Context) RunContext {
	return RunContext{ctx: ctx, env: env}
}

// Context returns the underlying context.Context.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// Env returns the session environment.
func (r RunContext) Env() session.Context {
	return r.env
}

// DryRun reports whether this is a dry-run execution.
func (r RunContext) DryRun() bool {
	return r.dryRun
}

// WithDryRun returns a RunContext with the dry-run flag set.
func (r RunContext) WithDryRun(dryRun bool) RunContext {
	r.dryRun = dryRun
	return r
}

// Meta carries the descriptor attributes shared by every step
// implementation. Providers embed it to satisfy the non-behavioral part
// of the Step interface.
type Meta struct {
	id         StepID
	phase      int
	policy     FailurePolicy
	privileged bool
}

// NewMeta creates step metadata.
func NewMeta(id StepID, phase int, policy FailurePolicy, privileged bool) Meta {
	return Meta{id: id, phase: phase, policy: policy, privileged: privileged}
}

// ID returns the step identifier.
func (m Meta) ID() StepID { return m.id }

// Phase returns the reporting phase.
func (m Meta) Phase() int { return m.phase }

// Policy returns the fatality policy.
func (m Meta) Policy() FailurePolicy { return m.policy }

// Privileged reports whether the step requires elevation.
func (m Meta) Privileged() bool { return m.privileged }
