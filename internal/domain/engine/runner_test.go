package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devbox/internal/adapters/logging"
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/ledger"
	"github.com/felixgeelhaar/devbox/internal/domain/session"
	"github.com/felixgeelhaar/devbox/internal/ports"
)

// fakeStep is a scriptable step whose Check flips to satisfied after a
// successful Apply, mirroring a real install.
type fakeStep struct {
	catalog.Meta
	satisfied   bool
	checkErr    error
	applyErr    error
	applyCalls  int
	version     string
	ineffective bool
}

func newFakeStep(id string, phase int, policy catalog.FailurePolicy) *fakeStep {
	return &fakeStep{
		Meta: catalog.NewMeta(catalog.MustNewStepID(id), phase, policy, false),
	}
}

func newPrivilegedStep(id string, phase int) *fakeStep {
	return &fakeStep{
		Meta: catalog.NewMeta(catalog.MustNewStepID(id), phase, catalog.PolicyContinue, true),
	}
}

func (s *fakeStep) Check(catalog.RunContext) (catalog.Status, error) {
	if s.checkErr != nil {
		return catalog.StatusUnknown, s.checkErr
	}
	if s.satisfied {
		return catalog.StatusSatisfied, nil
	}
	return catalog.StatusNeedsApply, nil
}

func (s *fakeStep) Apply(catalog.RunContext) error {
	s.applyCalls++
	if s.applyErr != nil {
		return s.applyErr
	}
	if !s.ineffective {
		s.satisfied = true
	}
	return nil
}

func (s *fakeStep) Version(catalog.RunContext) string { return s.version }

// memRepo is an in-memory ledger.Repository.
type memRepo struct {
	mu      sync.Mutex
	dto     *ledger.DTO
	saves   int
	loadErr error
}

func (r *memRepo) Load(context.Context, string) (*ledger.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.dto == nil {
		return nil, ledger.ErrNotFound
	}
	return ledger.FromDTO(*r.dto)
}

func (r *memRepo) Save(_ context.Context, _ string, l *ledger.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dto := ledger.ToDTO(l)
	r.dto = &dto
	r.saves++
	return nil
}

func (r *memRepo) record(step string) (ledger.RunRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dto == nil {
		return ledger.RunRecord{}, false
	}
	l, err := ledger.FromDTO(*r.dto)
	if err != nil {
		return ledger.RunRecord{}, false
	}
	return l.Get(step)
}

func testEnv(canElevate bool) session.Context {
	return session.New("dev", "/home/dev", "/home/dev/workspace", "amd64", canElevate)
}

func buildRegistry(t *testing.T, steps ...catalog.Step) *catalog.Registry {
	t.Helper()
	registry := catalog.NewRegistry()
	for _, step := range steps {
		require.NoError(t, registry.Register(step))
	}
	registry.Close()
	return registry
}

func newTestRunner(repo ledger.Repository) *Runner {
	return NewRunner(repo, "/tmp/ledger.json", logging.NewNopLogger())
}

func TestRunAppliesMissingSteps(t *testing.T) {
	t.Parallel()

	step := newFakeStep("script:rustup", 1, catalog.PolicyContinue)
	step.version = "1.27.0"
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, ExitOK, report.ExitCode())
	assert.Equal(t, 1, step.applyCalls)

	rec, ok := repo.record("script:rustup")
	require.True(t, ok)
	assert.Equal(t, ledger.OutcomeSucceeded, rec.Outcome)
	assert.Equal(t, "1.27.0", rec.Version)
}

func TestRunSkipsSatisfiedSteps(t *testing.T) {
	t.Parallel()

	step := newFakeStep("apt:base", 0, catalog.PolicyContinue)
	step.satisfied = true
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, ExitOK, report.ExitCode())
	assert.Equal(t, 0, step.applyCalls)

	rec, ok := repo.record("apt:base")
	require.True(t, ok)
	assert.Equal(t, ledger.OutcomeAlreadyPresent, rec.Outcome)
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	step := newFakeStep("binary:rg", 1, catalog.PolicyContinue)
	repo := &memRepo{}
	runner := newTestRunner(repo)

	first, err := runner.Run(context.Background(), buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)
	require.Equal(t, ExitOK, first.ExitCode())
	require.Equal(t, 1, step.applyCalls)

	second, err := runner.Run(context.Background(), buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, ExitOK, second.ExitCode())
	assert.Equal(t, 1, step.applyCalls, "second run must not re-apply")
	assert.Equal(t, ledger.OutcomeAlreadyPresent, second.Results()[0].Outcome())
}

func TestRunContinuePolicyFailure(t *testing.T) {
	t.Parallel()

	failing := newFakeStep("script:broken", 1, catalog.PolicyContinue)
	failing.applyErr = errors.New("installer exited 1")
	later := newFakeStep("shellrc:aliases", 2, catalog.PolicyContinue)
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, failing, later), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, ExitPartial, report.ExitCode())
	assert.False(t, report.Aborted())
	assert.Equal(t, 1, later.applyCalls, "continue policy keeps going")

	rec, ok := repo.record("script:broken")
	require.True(t, ok)
	assert.Equal(t, ledger.OutcomeFailed, rec.Outcome)

	failures := report.Failures()
	require.Len(t, failures, 1)
	var stepErr *catalog.StepError
	require.ErrorAs(t, failures[0].Error(), &stepErr)
	assert.Equal(t, catalog.ErrCodeInstallFailed, stepErr.Code)
}

func TestRunAbortPolicyStopsRun(t *testing.T) {
	t.Parallel()

	fatal := newFakeStep("apt:base", 0, catalog.PolicyAbort)
	fatal.applyErr = errors.New("apt-get exited 100")
	later := newFakeStep("script:rustup", 1, catalog.PolicyContinue)
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, fatal, later), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, ExitAborted, report.ExitCode())
	assert.True(t, report.Aborted())
	assert.Len(t, report.Results(), 1, "later steps are not attempted")
	assert.Equal(t, 0, later.applyCalls)

	rec, ok := repo.record("apt:base")
	require.True(t, ok)
	assert.Equal(t, ledger.OutcomeFailed, rec.Outcome, "failure is recorded before aborting")
}

func TestRunCheckFailureIsStepFailure(t *testing.T) {
	t.Parallel()

	step := newFakeStep("apt:base", 0, catalog.PolicyContinue)
	step.checkErr = errors.New("dpkg-query blew up")
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, ExitPartial, report.ExitCode())
	assert.Equal(t, 0, step.applyCalls, "apply never runs on an undecided check")

	var stepErr *catalog.StepError
	require.ErrorAs(t, report.Failures()[0].Error(), &stepErr)
	assert.Equal(t, catalog.ErrCodeCheckFailed, stepErr.Code)
}

func TestRunPrivilegedStepWithoutElevation(t *testing.T) {
	t.Parallel()

	step := newPrivilegedStep("apt:base", 0)
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, 0, step.applyCalls)

	var stepErr *catalog.StepError
	require.ErrorAs(t, report.Failures()[0].Error(), &stepErr)
	assert.Equal(t, catalog.ErrCodeElevationDenied, stepErr.Code)
}

func TestRunPrivilegedStepWithElevation(t *testing.T) {
	t.Parallel()

	step := newPrivilegedStep("apt:base", 0)
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, step), testEnv(true), false)
	require.NoError(t, err)

	assert.Equal(t, ExitOK, report.ExitCode())
	assert.Equal(t, 1, step.applyCalls)
}

func TestRunDryRun(t *testing.T) {
	t.Parallel()

	missing := newFakeStep("script:rustup", 1, catalog.PolicyContinue)
	present := newFakeStep("apt:base", 0, catalog.PolicyContinue)
	present.satisfied = true
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, present, missing), testEnv(false), true)
	require.NoError(t, err)

	assert.Equal(t, ExitOK, report.ExitCode())
	assert.Equal(t, 0, missing.applyCalls, "dry run applies nothing")
	assert.Equal(t, 0, repo.saves, "dry run never writes the ledger")

	summary := report.Summary()
	assert.Equal(t, 1, summary.Planned)
	assert.Equal(t, 1, summary.AlreadyPresent)
}

func TestRunCancellation(t *testing.T) {
	t.Parallel()

	step := newFakeStep("apt:base", 0, catalog.PolicyContinue)
	repo := &memRepo{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestRunner(repo).Run(ctx, buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.True(t, report.Cancelled())
	assert.Equal(t, ExitAborted, report.ExitCode())
	assert.Equal(t, 0, step.applyCalls, "cancellation is honored at the step boundary")
	assert.Equal(t, 1, repo.saves, "ledger is persisted on cancellation")
}

func TestRunToleratesCorruptLedger(t *testing.T) {
	t.Parallel()

	step := newFakeStep("apt:base", 0, catalog.PolicyContinue)
	repo := &memRepo{loadErr: fmt.Errorf("%w: bad json", ledger.ErrCorrupt)}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, ExitOK, report.ExitCode())
	assert.Equal(t, 1, step.applyCalls)
}

func TestRunClassifiesApplyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		applyErr error
		wantCode string
	}{
		{"integrity mismatch", fmt.Errorf("%w: expected sha256:ab", ports.ErrIntegrityMismatch), catalog.ErrCodeIntegrity},
		{"fetch failure", fmt.Errorf("%w: 503", ports.ErrFetchFailed), catalog.ErrCodeFetchFailed},
		{"insecure url", fmt.Errorf("%w: http", ports.ErrInsecureURL), catalog.ErrCodeFetchFailed},
		{"anything else", errors.New("chmod failed"), catalog.ErrCodeInstallFailed},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			step := newFakeStep("binary:rg", 1, catalog.PolicyContinue)
			step.applyErr = tt.applyErr
			repo := &memRepo{}

			report, err := newTestRunner(repo).Run(context.Background(),
				buildRegistry(t, step), testEnv(false), false)
			require.NoError(t, err)

			var stepErr *catalog.StepError
			require.ErrorAs(t, report.Failures()[0].Error(), &stepErr)
			assert.Equal(t, tt.wantCode, stepErr.Code)
		})
	}
}

func TestRunIneffectiveApplyIsStepFailure(t *testing.T) {
	t.Parallel()

	step := newFakeStep("script:phantom", 1, catalog.PolicyContinue)
	step.ineffective = true
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, ExitPartial, report.ExitCode())
	assert.Equal(t, 1, step.applyCalls)

	var stepErr *catalog.StepError
	require.ErrorAs(t, report.Failures()[0].Error(), &stepErr)
	assert.Equal(t, catalog.ErrCodeInstallFailed, stepErr.Code)
	assert.ErrorIs(t, stepErr, errApplyIneffective)

	rec, ok := repo.record("script:phantom")
	require.True(t, ok)
	assert.Equal(t, ledger.OutcomeFailed, rec.Outcome,
		"a succeeded record implies the presence check holds")
}

func TestRunStepErrorPassesThroughUnchanged(t *testing.T) {
	t.Parallel()

	original := catalog.NewElevationUnavailableError("script:deploy")
	step := newFakeStep("script:deploy", 1, catalog.PolicyContinue)
	step.applyErr = original
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, step), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, error(original), report.Failures()[0].Error())
}

func TestRunPersistsIncrementally(t *testing.T) {
	t.Parallel()

	steps := []catalog.Step{
		newFakeStep("apt:base", 0, catalog.PolicyContinue),
		newFakeStep("script:rustup", 1, catalog.PolicyContinue),
		newFakeStep("binary:rg", 1, catalog.PolicyContinue),
	}
	repo := &memRepo{}

	_, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, steps...), testEnv(false), false)
	require.NoError(t, err)

	assert.Equal(t, 3, repo.saves, "one save per recorded step")
}

// The classic bootstrap scenario: a machine with some tools present,
// some missing, one optional tool broken upstream.
func TestRunMixedCatalog(t *testing.T) {
	t.Parallel()

	base := newFakeStep("apt:base", 0, catalog.PolicyAbort)
	base.satisfied = true
	rust := newFakeStep("script:rustup", 1, catalog.PolicyContinue)
	rg := newFakeStep("binary:rg", 1, catalog.PolicyContinue)
	rg.applyErr = fmt.Errorf("%w: 404", ports.ErrFetchFailed)
	aliases := newFakeStep("shellrc:aliases", 2, catalog.PolicyContinue)
	repo := &memRepo{}

	report, err := newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, base, rust, rg, aliases), testEnv(true), false)
	require.NoError(t, err)

	assert.Equal(t, ExitPartial, report.ExitCode())

	summary := report.Summary()
	assert.Equal(t, 1, summary.AlreadyPresent)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	// A later run with the upstream fixed converges to clean.
	rg.applyErr = nil
	report, err = newTestRunner(repo).Run(context.Background(),
		buildRegistry(t, base, rust, rg, aliases), testEnv(true), false)
	require.NoError(t, err)

	assert.Equal(t, ExitOK, report.ExitCode())
	rec, ok := repo.record("binary:rg")
	require.True(t, ok)
	assert.Equal(t, ledger.OutcomeSucceeded, rec.Outcome)
}
