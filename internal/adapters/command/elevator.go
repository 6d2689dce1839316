package command

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/validation"
)

// ErrElevationFailed is returned when an elevated command exits non-zero.
var ErrElevationFailed = errors.New("elevated command failed")

// SudoElevator implements ports.Elevator over non-interactive sudo.
//
// This is the only place in the codebase that invokes sudo. Each method
// is a fixed command template; arguments are validated typed values from
// the catalog, never content of downloaded artifacts.
type SudoElevator struct {
	runner ports.CommandRunner
}

// NewSudoElevator creates a SudoElevator.
func NewSudoElevator(runner ports.CommandRunner) *SudoElevator {
	return &SudoElevator{runner: runner}
}

// Available reports whether sudo works without prompting.
func (e *SudoElevator) Available(ctx context.Context) bool {
	result, err := e.runner.Run(ctx, "sudo", "-n", "true")
	return err == nil && result.Success()
}

// InstallPackages installs packages via apt-get. Names are validated
// against the Debian package-name grammar before they reach the argv.
func (e *SudoElevator) InstallPackages(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("no packages given")
	}
	for _, name := range names {
		if err := validation.ValidatePackageName(name); err != nil {
			return fmt.Errorf("refusing to install: %w", err)
		}
	}

	args := append([]string{"-n", "apt-get", "install", "-y", "--no-install-recommends"}, names...)
	result, err := e.runner.Run(ctx, "sudo", args...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%w: apt-get install: %s", ErrElevationFailed, result.Stderr)
	}
	return nil
}

// RunInstaller executes a fetched installer with a bounded argument list.
// The path must be absolute (a scratch-dir artifact), and arguments are
// screened for shell metacharacters.
func (e *SudoElevator) RunInstaller(ctx context.Context, path string, args []string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("installer path must be absolute, got %q", path)
	}
	for _, arg := range args {
		if err := validation.ValidateInstallerArg(arg); err != nil {
			return fmt.Errorf("refusing to run installer: %w", err)
		}
	}

	argv := append([]string{"-n", path}, args...)
	result, err := e.runner.Run(ctx, "sudo", argv...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%w: %s: %s", ErrElevationFailed, filepath.Base(path), result.Stderr)
	}
	return nil
}

// InstallBinary copies a fetched binary into place with install(1).
func (e *SudoElevator) InstallBinary(ctx context.Context, src, dest string) error {
	if !filepath.IsAbs(src) || !filepath.IsAbs(dest) {
		return fmt.Errorf("binary install paths must be absolute")
	}

	result, err := e.runner.Run(ctx, "sudo", "-n", "install", "-m", "0755", src, dest)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%w: install %s: %s", ErrElevationFailed, dest, result.Stderr)
	}
	return nil
}

// Ensure SudoElevator implements ports.Elevator.
var _ ports.Elevator = (*SudoElevator)(nil)
