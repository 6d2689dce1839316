// Package binary provides steps that install single prebuilt binaries.
package binary

import (
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/validation"
)

// Provider compiles binary descriptors.
type Provider struct {
	fetcher  ports.Downloader
	elevator ports.Elevator
}

// NewProvider creates the binary provider.
func NewProvider(fetcher ports.Downloader, elevator ports.Elevator) *Provider {
	return &Provider{fetcher: fetcher, elevator: elevator}
}

// Kind returns the descriptor kind.
func (p *Provider) Kind() string {
	return "binary"
}

// Compile transforms a binary descriptor into a step. Binary installs
// always require a digest: the artifact goes straight onto PATH.
func (p *Provider) Compile(desc catalog.Descriptor) (catalog.Step, error) {
	if desc.Command == "" {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"binary step needs a command name").
			WithStepID(desc.Name).
			WithSuggestion("Set command: to the name the binary is installed as.")
	}
	if err := validation.ValidateSecureURL(desc.URL); err != nil {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"binary step needs a valid https url").
			WithStepID(desc.Name).
			WithUnderlying(err)
	}

	digest, err := desc.Integrity()
	if err != nil {
		return nil, err
	}
	if digest.IsZero() {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"binary steps require a digest").
			WithStepID(desc.Name).
			WithSuggestion("Add digest: sha256:<hex> from the upstream release checksums.")
	}

	return &InstallStep{
		Meta:     desc.Meta(),
		command:  desc.Command,
		url:      desc.URL,
		digest:   digest,
		version:  desc.Version,
		fetcher:  p.fetcher,
		elevator: p.elevator,
	}, nil
}

// Ensure Provider implements catalog.Provider.
var _ catalog.Provider = (*Provider)(nil)
