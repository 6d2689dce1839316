package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/ledger"
	"github.com/felixgeelhaar/devbox/internal/domain/session"
	"github.com/felixgeelhaar/devbox/internal/ports"
)

// Runner executes a catalog sequentially, one step at a time, in
// declaration order.
//
// The skip decision is always the live presence predicate; the ledger is
// read for reporting but never trusted for skipping, so external drift
// (a manually removed tool, a partial prior run) is tolerated. The
// ledger is persisted after every recorded outcome, so an abort or
// interrupt leaves a consistent resume point.
type Runner struct {
	repo       ledger.Repository
	ledgerPath string
	logger     ports.Logger
	now        func() time.Time
}

// NewRunner creates a Runner persisting to ledgerPath through repo.
func NewRunner(repo ledger.Repository, ledgerPath string, logger ports.Logger) *Runner {
	return &Runner{
		repo:       repo,
		ledgerPath: ledgerPath,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock returns a Runner using the given clock. Used by tests.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	clone := *r
	clone.now = now
	return &clone
}

// Run executes every registered step and returns the aggregate report.
// Run itself only errors on ledger persistence problems; step failures
// are reported through the Report.
func (r *Runner) Run(ctx context.Context, registry *catalog.Registry, env session.Context, dryRun bool) (*Report, error) {
	led := r.loadLedger(ctx)

	runID := uuid.NewString()
	led.BeginRun(runID, env.Account(), r.now())

	report := NewReport(runID)
	runCtx := catalog.NewRunContext(ctx, env).WithDryRun(dryRun)

	for _, step := range registry.Steps() {
		// Interrupts are honored between steps, never mid-install.
		select {
		case <-ctx.Done():
			report.Cancel()
			r.logger.Warn(ctx, "run cancelled, persisting ledger",
				ports.F("completed", len(report.Results())))
			return report, r.persist(context.WithoutCancel(ctx), led, dryRun)
		default:
		}

		result := r.executeStep(runCtx, step, dryRun)
		report.Add(result)

		if !result.Planned() {
			led.Record(step.ID().String(), result.Outcome(), result.Version(), r.now())
			if err := r.persist(ctx, led, dryRun); err != nil {
				return report, err
			}
		}

		if result.Failed() {
			if step.Policy() == catalog.PolicyAbort {
				r.logger.Error(ctx, "fatal step failed, aborting run",
					ports.F("step", step.ID().String()),
					ports.F("error", result.Error()))
				report.Abort()
				break
			}
			r.logger.Warn(ctx, "step failed, continuing",
				ports.F("step", step.ID().String()),
				ports.F("error", result.Error()))
		}
	}

	return report, nil
}

// executeStep runs a single step through its lifecycle:
// presence check, then fetch/install when not already satisfied.
func (r *Runner) executeStep(runCtx catalog.RunContext, step catalog.Step, dryRun bool) StepResult {
	ctx := runCtx.Context()
	id := step.ID()
	name := id.String()

	status, err := step.Check(runCtx)
	if err != nil || status == catalog.StatusUnknown {
		checkErr := catalog.NewCheckFailedError(name, err)
		return NewStepResult(id, step.Phase(), ledger.OutcomeFailed, checkErr)
	}

	if status == catalog.StatusSatisfied {
		r.logger.Debug(ctx, "step already satisfied", ports.F("step", name))
		return NewStepResult(id, step.Phase(), ledger.OutcomeAlreadyPresent, nil).
			WithVersion(step.Version(runCtx))
	}

	if dryRun {
		return NewPlannedResult(id, step.Phase())
	}

	// Least privilege is enforced per step: privileged steps need a
	// working elevation boundary, unprivileged ones never escalate.
	if step.Privileged() && !runCtx.Env().CanElevate() {
		return NewStepResult(id, step.Phase(), ledger.OutcomeFailed,
			catalog.NewElevationUnavailableError(name))
	}

	r.logger.Info(ctx, "applying step", ports.F("step", name), ports.F("phase", step.Phase()))

	start := r.now()
	applyErr := step.Apply(runCtx)
	duration := r.now().Sub(start)

	if applyErr != nil {
		return NewStepResult(id, step.Phase(), ledger.OutcomeFailed, classify(name, applyErr)).
			WithDuration(duration)
	}

	// The installer's exit status alone is not proof of success; the
	// presence predicate is re-evaluated before recording success.
	verified, verifyErr := step.Check(runCtx)
	if verifyErr != nil {
		return NewStepResult(id, step.Phase(), ledger.OutcomeFailed,
			catalog.NewCheckFailedError(name, verifyErr)).
			WithDuration(duration)
	}
	if verified != catalog.StatusSatisfied {
		return NewStepResult(id, step.Phase(), ledger.OutcomeFailed,
			catalog.NewInstallFailedError(name, errApplyIneffective)).
			WithDuration(duration)
	}

	return NewStepResult(id, step.Phase(), ledger.OutcomeSucceeded, nil).
		WithDuration(duration).
		WithVersion(step.Version(runCtx))
}

// errApplyIneffective marks an install action that finished cleanly while
// the presence check still reports the step missing.
var errApplyIneffective = errors.New("install action completed, but the presence check still reports the step missing")

// classify wraps an apply error in the step error taxonomy. Fetch and
// integrity failures keep their own codes; everything else is an
// install failure.
func classify(stepName string, err error) error {
	var stepErr *catalog.StepError
	if errors.As(err, &stepErr) {
		return err
	}

	switch {
	case errors.Is(err, ports.ErrIntegrityMismatch):
		return catalog.NewIntegrityError(stepName, err)
	case errors.Is(err, ports.ErrFetchFailed), errors.Is(err, ports.ErrInsecureURL):
		return catalog.NewFetchFailedError(stepName, err)
	default:
		return catalog.NewInstallFailedError(stepName, err)
	}
}

// loadLedger reads the persisted ledger, tolerating absence and
// corruption: the ledger is an audit trail, not a source of truth, so a
// broken file must not fail the run.
func (r *Runner) loadLedger(ctx context.Context) *ledger.Ledger {
	led, err := r.repo.Load(ctx, r.ledgerPath)
	if err != nil {
		if errors.Is(err, ledger.ErrCorrupt) {
			r.logger.Warn(ctx, "ledger is corrupt, starting fresh", ports.F("path", r.ledgerPath))
		} else if !errors.Is(err, ledger.ErrNotFound) {
			r.logger.Warn(ctx, "ledger unreadable, starting fresh",
				ports.F("path", r.ledgerPath), ports.F("error", err))
		}
		return ledger.New()
	}
	return led
}

func (r *Runner) persist(ctx context.Context, led *ledger.Ledger, dryRun bool) error {
	if dryRun {
		return nil
	}
	return r.repo.Save(ctx, r.ledgerPath, led)
}
