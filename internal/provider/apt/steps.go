package apt

import (
	"strings"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/ports"
)

// PackagesStep installs a list of Debian packages as one unit.
type PackagesStep struct {
	catalog.Meta
	packages []string
	runner   ports.CommandRunner
	elevator ports.Elevator
}

// Packages returns the package list.
func (s *PackagesStep) Packages() []string {
	return s.packages
}

// Check reports satisfied only when every package is installed.
func (s *PackagesStep) Check(ctx catalog.RunContext) (catalog.Status, error) {
	for _, pkg := range s.packages {
		installed, err := s.installed(ctx, pkg)
		if err != nil {
			return catalog.StatusUnknown, err
		}
		if !installed {
			return catalog.StatusNeedsApply, nil
		}
	}
	return catalog.StatusSatisfied, nil
}

// Apply installs the missing packages through the elevation boundary.
// Already-installed packages are harmless to re-list; apt-get skips them.
func (s *PackagesStep) Apply(ctx catalog.RunContext) error {
	return s.elevator.InstallPackages(ctx.Context(), s.packages)
}

// Version returns the installed version of the first package, which
// names the step's primary tool by catalog convention.
func (s *PackagesStep) Version(ctx catalog.RunContext) string {
	if len(s.packages) == 0 {
		return ""
	}
	result, err := s.runner.Run(ctx.Context(), "dpkg-query", "-W", "-f=${Version}", s.packages[0])
	if err != nil || !result.Success() {
		return ""
	}
	return strings.TrimSpace(result.Stdout)
}

// installed checks one package with dpkg-query.
// dpkg-query exits 1 for unknown packages; that means needs-apply.
func (s *PackagesStep) installed(ctx catalog.RunContext, pkg string) (bool, error) {
	result, err := s.runner.Run(ctx.Context(), "dpkg-query", "-W", "-f=${db:Status-Status}", pkg)
	if err != nil {
		return false, err
	}
	if !result.Success() {
		return false, nil
	}
	return strings.TrimSpace(result.Stdout) == "installed", nil
}

// Ensure PackagesStep implements catalog.Step.
var _ catalog.Step = (*PackagesStep)(nil)
