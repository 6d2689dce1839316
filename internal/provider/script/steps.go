package script

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/integrity"
	"github.com/felixgeelhaar/devbox/internal/ports"
)

// InstallerStep downloads an installer and executes it with a bounded
// argument list.
type InstallerStep struct {
	catalog.Meta
	command  string
	url      string
	digest   integrity.Integrity
	args     []string
	version  string
	runner   ports.CommandRunner
	fetcher  ports.Downloader
	elevator ports.Elevator
}

// Check looks the provided binary up on PATH.
func (s *InstallerStep) Check(_ catalog.RunContext) (catalog.Status, error) {
	if _, err := exec.LookPath(s.command); err == nil {
		return catalog.StatusSatisfied, nil
	}
	return catalog.StatusNeedsApply, nil
}

// Apply fetches the installer (verified when a digest is declared) and
// runs it. The scratch artifact is removed on every exit path.
func (s *InstallerStep) Apply(ctx catalog.RunContext) error {
	artifact, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	defer artifact.Cleanup()

	if s.Privileged() {
		return s.elevator.RunInstaller(ctx.Context(), artifact.Path, s.args)
	}

	if err := os.Chmod(artifact.Path, 0o700); err != nil {
		return fmt.Errorf("make installer executable: %w", err)
	}
	result, err := s.runner.Run(ctx.Context(), artifact.Path, s.args...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("installer %s exited %d: %s", s.command, result.ExitCode, result.Stderr)
	}
	return nil
}

// Version returns the catalog-declared version, if any.
func (s *InstallerStep) Version(_ catalog.RunContext) string {
	return s.version
}

func (s *InstallerStep) fetch(ctx catalog.RunContext) (ports.LocalArtifact, error) {
	if s.digest.IsZero() {
		return s.fetcher.Fetch(ctx.Context(), s.url)
	}
	return s.fetcher.FetchVerified(ctx.Context(), s.url, s.digest)
}

// Ensure InstallerStep implements catalog.Step.
var _ catalog.Step = (*InstallerStep)(nil)
