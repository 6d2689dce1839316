// Package apt provides steps that install Debian packages.
package apt

import (
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/validation"
)

// Provider compiles apt descriptors.
type Provider struct {
	runner   ports.CommandRunner
	elevator ports.Elevator
}

// NewProvider creates the apt provider.
func NewProvider(runner ports.CommandRunner, elevator ports.Elevator) *Provider {
	return &Provider{runner: runner, elevator: elevator}
}

// Kind returns the descriptor kind.
func (p *Provider) Kind() string {
	return "apt"
}

// Compile transforms an apt descriptor into a step. Package installs
// always go through the elevation boundary, so the privileged flag is
// forced on regardless of the descriptor.
func (p *Provider) Compile(desc catalog.Descriptor) (catalog.Step, error) {
	if len(desc.Packages) == 0 {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"apt step needs at least one package").
			WithStepID(desc.Name).
			WithSuggestion("List package names under packages:.")
	}
	for _, pkg := range desc.Packages {
		if err := validation.ValidatePackageName(pkg); err != nil {
			return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
				"invalid package name").
				WithStepID(desc.Name).
				WithUnderlying(err)
		}
	}

	desc.Privileged = true
	return &PackagesStep{
		Meta:     desc.Meta(),
		packages: desc.Packages,
		runner:   p.runner,
		elevator: p.elevator,
	}, nil
}

// Ensure Provider implements catalog.Provider.
var _ catalog.Provider = (*Provider)(nil)
