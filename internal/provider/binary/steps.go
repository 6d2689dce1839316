package binary

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/integrity"
	"github.com/felixgeelhaar/devbox/internal/ports"
)

// systemBinDir is where privileged binary steps install to.
const systemBinDir = "/usr/local/bin"

// InstallStep fetches a verified binary and puts it on PATH.
// Unprivileged steps install under ~/.local/bin; privileged ones go to
// /usr/local/bin through the elevation boundary.
type InstallStep struct {
	catalog.Meta
	command  string
	url      string
	digest   integrity.Integrity
	version  string
	fetcher  ports.Downloader
	elevator ports.Elevator
}

// Check looks for the binary at its install destination or on PATH.
func (s *InstallStep) Check(ctx catalog.RunContext) (catalog.Status, error) {
	if _, err := os.Stat(s.destination(ctx)); err == nil {
		return catalog.StatusSatisfied, nil
	}
	if _, err := exec.LookPath(s.command); err == nil {
		return catalog.StatusSatisfied, nil
	}
	return catalog.StatusNeedsApply, nil
}

// Apply fetches the verified artifact and installs it with mode 0755.
func (s *InstallStep) Apply(ctx catalog.RunContext) error {
	artifact, err := s.fetcher.FetchVerified(ctx.Context(), s.url, s.digest)
	if err != nil {
		return err
	}
	defer artifact.Cleanup()

	dest := s.destination(ctx)
	if s.Privileged() {
		return s.elevator.InstallBinary(ctx.Context(), artifact.Path, dest)
	}
	return installUserBinary(artifact.Path, dest)
}

// Version returns the catalog-declared version, if any.
func (s *InstallStep) Version(_ catalog.RunContext) string {
	return s.version
}

func (s *InstallStep) destination(ctx catalog.RunContext) string {
	if s.Privileged() {
		return filepath.Join(systemBinDir, s.command)
	}
	return filepath.Join(ctx.Env().Home(), ".local", "bin", s.command)
}

// installUserBinary copies the artifact into the user bin dir. The write
// goes to a temp name first so a crash never leaves a truncated binary
// at the final path.
func installUserBinary(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create bin dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = in.Close() }()

	tmp := dest + ".partial"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create binary: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("copy binary: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close binary: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install binary: %w", err)
	}
	return nil
}

// Ensure InstallStep implements catalog.Step.
var _ catalog.Step = (*InstallStep)(nil)
