// Package script provides steps that download and execute installer
// scripts.
package script

import (
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/validation"
)

// Provider compiles script descriptors.
type Provider struct {
	runner   ports.CommandRunner
	fetcher  ports.Downloader
	elevator ports.Elevator
}

// NewProvider creates the script provider.
func NewProvider(runner ports.CommandRunner, fetcher ports.Downloader, elevator ports.Elevator) *Provider {
	return &Provider{runner: runner, fetcher: fetcher, elevator: elevator}
}

// Kind returns the descriptor kind.
func (p *Provider) Kind() string {
	return "script"
}

// Compile transforms a script descriptor into a step.
//
// Privileged installer scripts must carry a digest: executing unverified
// remote content as root is the one trust decision this engine refuses
// to leave to the catalog author.
func (p *Provider) Compile(desc catalog.Descriptor) (catalog.Step, error) {
	if desc.Command == "" {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"script step needs a command for its presence check").
			WithStepID(desc.Name).
			WithSuggestion("Set command: to the binary the installer provides.")
	}
	if err := validation.ValidateSecureURL(desc.URL); err != nil {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"script step needs a valid https url").
			WithStepID(desc.Name).
			WithUnderlying(err)
	}
	for _, arg := range desc.Args {
		if err := validation.ValidateInstallerArg(arg); err != nil {
			return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
				"invalid installer argument").
				WithStepID(desc.Name).
				WithUnderlying(err)
		}
	}

	digest, err := desc.Integrity()
	if err != nil {
		return nil, err
	}
	if desc.Privileged && digest.IsZero() {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"privileged script steps require a digest").
			WithStepID(desc.Name).
			WithSuggestion("Add digest: sha256:<hex> for any installer that runs elevated.")
	}

	return &InstallerStep{
		Meta:     desc.Meta(),
		command:  desc.Command,
		url:      desc.URL,
		digest:   digest,
		args:     desc.Args,
		version:  desc.Version,
		runner:   p.runner,
		fetcher:  p.fetcher,
		elevator: p.elevator,
	}, nil
}

// Ensure Provider implements catalog.Provider.
var _ catalog.Provider = (*Provider)(nil)
