// Package shellrc provides steps that maintain managed blocks in shell
// startup files.
package shellrc

import (
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

// Provider compiles shellrc descriptors.
type Provider struct{}

// NewProvider creates the shellrc provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Kind returns the descriptor kind.
func (p *Provider) Kind() string {
	return "shellrc"
}

// Compile transforms a shellrc descriptor into a step.
func (p *Provider) Compile(desc catalog.Descriptor) (catalog.Step, error) {
	if desc.File == "" {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"shellrc step needs a file").
			WithStepID(desc.Name).
			WithSuggestion("Set file: to the startup file, e.g. ~/.bashrc.")
	}
	if desc.Section == "" {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"shellrc step needs a section").
			WithStepID(desc.Name).
			WithSuggestion("Set section: to name the managed block.")
	}
	if len(desc.Lines) == 0 {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"shellrc step needs at least one line").
			WithStepID(desc.Name)
	}

	return &BlockStep{
		Meta:    desc.Meta(),
		file:    desc.File,
		section: desc.Section,
		lines:   desc.Lines,
	}, nil
}

// Ensure Provider implements catalog.Provider.
var _ catalog.Provider = (*Provider)(nil)
