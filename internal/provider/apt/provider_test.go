package apt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/session"
	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/testutil"
)

// fakeElevator records package install requests.
type fakeElevator struct {
	installed [][]string
	err       error
}

func (e *fakeElevator) Available(context.Context) bool { return true }

func (e *fakeElevator) InstallPackages(_ context.Context, names []string) error {
	e.installed = append(e.installed, names)
	return e.err
}

func (e *fakeElevator) RunInstaller(context.Context, string, []string) error { return nil }
func (e *fakeElevator) InstallBinary(context.Context, string, string) error  { return nil }

func runCtx() catalog.RunContext {
	env := session.New("dev", "/home/dev", "/home/dev/workspace", "amd64", true)
	return catalog.NewRunContext(context.Background(), env)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	provider := NewProvider(testutil.NewScriptedRunner(), &fakeElevator{})

	step, err := provider.Compile(catalog.Descriptor{
		Name:     "apt:base",
		Kind:     "apt",
		Packages: []string{"git", "build-essential"},
	})
	require.NoError(t, err)

	assert.Equal(t, "apt:base", step.ID().String())
	assert.True(t, step.Privileged(), "package installs always elevate")
}

func TestCompileRejectsEmptyAndInvalidPackages(t *testing.T) {
	t.Parallel()

	provider := NewProvider(testutil.NewScriptedRunner(), &fakeElevator{})

	_, err := provider.Compile(catalog.Descriptor{Name: "apt:base", Kind: "apt"})
	require.Error(t, err)

	_, err = provider.Compile(catalog.Descriptor{
		Name:     "apt:base",
		Kind:     "apt",
		Packages: []string{"git; rm -rf /"},
	})
	require.Error(t, err)

	var stepErr *catalog.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, catalog.ErrCodeDescriptorFields, stepErr.Code)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("all installed", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewScriptedRunner().
			Script("dpkg-query -W -f=${db:Status-Status} git", ports.CommandResult{Stdout: "installed\n"}).
			Script("dpkg-query -W -f=${db:Status-Status} curl", ports.CommandResult{Stdout: "installed\n"})

		step := compileStep(t, runner, &fakeElevator{}, "git", "curl")
		status, err := step.Check(runCtx())
		require.NoError(t, err)
		assert.Equal(t, catalog.StatusSatisfied, status)
	})

	t.Run("one missing", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewScriptedRunner().
			Script("dpkg-query -W -f=${db:Status-Status} git", ports.CommandResult{Stdout: "installed\n"}).
			Script("dpkg-query -W -f=${db:Status-Status} curl", ports.CommandResult{ExitCode: 1})

		step := compileStep(t, runner, &fakeElevator{}, "git", "curl")
		status, err := step.Check(runCtx())
		require.NoError(t, err)
		assert.Equal(t, catalog.StatusNeedsApply, status)
	})

	t.Run("removed but not purged", func(t *testing.T) {
		t.Parallel()
		runner := testutil.NewScriptedRunner().
			Script("dpkg-query -W -f=${db:Status-Status} git", ports.CommandResult{Stdout: "config-files\n"})

		step := compileStep(t, runner, &fakeElevator{}, "git")
		status, err := step.Check(runCtx())
		require.NoError(t, err)
		assert.Equal(t, catalog.StatusNeedsApply, status)
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	elevator := &fakeElevator{}
	step := compileStep(t, testutil.NewScriptedRunner(), elevator, "git", "curl")

	require.NoError(t, step.Apply(runCtx()))
	require.Len(t, elevator.installed, 1)
	assert.Equal(t, []string{"git", "curl"}, elevator.installed[0])
}

func TestVersion(t *testing.T) {
	t.Parallel()

	runner := testutil.NewScriptedRunner().
		Script("dpkg-query -W -f=${Version} git", ports.CommandResult{Stdout: "1:2.43.0-1ubuntu1\n"})

	step := compileStep(t, runner, &fakeElevator{}, "git", "curl")
	assert.Equal(t, "1:2.43.0-1ubuntu1", step.Version(runCtx()))
}

func compileStep(t *testing.T, runner ports.CommandRunner, elevator ports.Elevator, packages ...string) catalog.Step {
	t.Helper()
	step, err := NewProvider(runner, elevator).Compile(catalog.Descriptor{
		Name:     "apt:base",
		Kind:     "apt",
		Packages: packages,
	})
	require.NoError(t, err)
	return step
}
