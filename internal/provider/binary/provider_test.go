package binary

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/integrity"
	"github.com/felixgeelhaar/devbox/internal/domain/session"
	"github.com/felixgeelhaar/devbox/internal/ports"
)

type fakeFetcher struct {
	path      string
	fetchErr  error
	cleanedUp bool
}

func (f *fakeFetcher) Fetch(context.Context, string) (ports.LocalArtifact, error) {
	return ports.LocalArtifact{Path: f.path, Cleanup: func() { f.cleanedUp = true }}, nil
}

func (f *fakeFetcher) FetchVerified(context.Context, string, integrity.Integrity) (ports.LocalArtifact, error) {
	if f.fetchErr != nil {
		return ports.LocalArtifact{}, f.fetchErr
	}
	return ports.LocalArtifact{Path: f.path, Cleanup: func() { f.cleanedUp = true }}, nil
}

type fakeElevator struct {
	src, dest string
}

func (e *fakeElevator) Available(context.Context) bool                       { return true }
func (e *fakeElevator) InstallPackages(context.Context, []string) error      { return nil }
func (e *fakeElevator) RunInstaller(context.Context, string, []string) error { return nil }

func (e *fakeElevator) InstallBinary(_ context.Context, src, dest string) error {
	e.src, e.dest = src, dest
	return nil
}

func envWithHome(home string) session.Context {
	return session.New("dev", home, filepath.Join(home, "workspace"), "amd64", true)
}

func runCtxWithHome(home string) catalog.RunContext {
	return catalog.NewRunContext(context.Background(), envWithHome(home))
}

func testDigest() string {
	return "sha256:" + strings.Repeat("cd", 32)
}

func TestCompileRequiresDigest(t *testing.T) {
	t.Parallel()

	provider := NewProvider(&fakeFetcher{}, &fakeElevator{})

	_, err := provider.Compile(catalog.Descriptor{
		Name: "binary:rg", Kind: "binary", Command: "rg",
		URL: "https://example.com/rg",
	})
	require.Error(t, err)

	var stepErr *catalog.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, catalog.ErrCodeDescriptorFields, stepErr.Code)

	_, err = provider.Compile(catalog.Descriptor{
		Name: "binary:rg", Kind: "binary", Command: "rg",
		URL: "https://example.com/rg", Digest: testDigest(),
	})
	assert.NoError(t, err)
}

func TestCompileValidation(t *testing.T) {
	t.Parallel()

	provider := NewProvider(&fakeFetcher{}, &fakeElevator{})

	_, err := provider.Compile(catalog.Descriptor{
		Name: "binary:rg", Kind: "binary",
		URL: "https://example.com/rg", Digest: testDigest(),
	})
	assert.Error(t, err, "command required")

	_, err = provider.Compile(catalog.Descriptor{
		Name: "binary:rg", Kind: "binary", Command: "rg",
		URL: "http://example.com/rg", Digest: testDigest(),
	})
	assert.Error(t, err, "https required")
}

func TestCheckUsesDestination(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	dest := filepath.Join(home, ".local", "bin", "devbox-test-tool")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))

	step := compileStep(t, &fakeFetcher{}, &fakeElevator{}, false)

	status, err := step.Check(runCtxWithHome(home))
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusNeedsApply, status)

	require.NoError(t, os.WriteFile(dest, []byte("bin"), 0o755))
	status, err = step.Check(runCtxWithHome(home))
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusSatisfied, status)
}

func TestApplyUserInstall(t *testing.T) {
	t.Parallel()

	artifact := filepath.Join(t.TempDir(), "download")
	require.NoError(t, os.WriteFile(artifact, []byte("binary bytes"), 0o600))

	home := t.TempDir()
	fetcher := &fakeFetcher{path: artifact}
	step := compileStep(t, fetcher, &fakeElevator{}, false)

	require.NoError(t, step.Apply(runCtxWithHome(home)))

	dest := filepath.Join(home, ".local", "bin", "devbox-test-tool")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "binary bytes", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.True(t, fetcher.cleanedUp)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no partial files left behind")
}

func TestApplyPrivilegedInstall(t *testing.T) {
	t.Parallel()

	artifact := filepath.Join(t.TempDir(), "download")
	require.NoError(t, os.WriteFile(artifact, []byte("binary bytes"), 0o600))

	elevator := &fakeElevator{}
	step := compileStep(t, &fakeFetcher{path: artifact}, elevator, true)

	require.NoError(t, step.Apply(runCtxWithHome(t.TempDir())))

	assert.Equal(t, artifact, elevator.src)
	assert.Equal(t, "/usr/local/bin/devbox-test-tool", elevator.dest)
}

func TestApplyFetchFailurePropagates(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{fetchErr: ports.ErrIntegrityMismatch}
	step := compileStep(t, fetcher, &fakeElevator{}, false)

	err := step.Apply(runCtxWithHome(t.TempDir()))
	assert.ErrorIs(t, err, ports.ErrIntegrityMismatch)
}

func compileStep(t *testing.T, fetcher ports.Downloader, elevator ports.Elevator, privileged bool) catalog.Step {
	t.Helper()
	step, err := NewProvider(fetcher, elevator).Compile(catalog.Descriptor{
		Name:       "binary:devbox-test-tool",
		Kind:       "binary",
		Command:    "devbox-test-tool",
		URL:        "https://example.com/devbox-test-tool",
		Digest:     testDigest(),
		Privileged: privileged,
	})
	require.NoError(t, err)
	return step
}
