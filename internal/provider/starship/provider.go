// Package starship provides steps that maintain settings in the
// starship prompt configuration.
package starship

import (
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

// Provider compiles starship descriptors.
type Provider struct{}

// NewProvider creates the starship provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Kind returns the descriptor kind.
func (p *Provider) Kind() string {
	return "starship"
}

// Compile transforms a starship descriptor into a step. Settings are
// top-level starship.toml keys with string values; booleans and numbers
// are parsed from their literal form.
func (p *Provider) Compile(desc catalog.Descriptor) (catalog.Step, error) {
	if len(desc.Settings) == 0 {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"starship step needs at least one setting").
			WithStepID(desc.Name).
			WithSuggestion(`Add entries like "add_newline: false" under settings:.`)
	}

	file := desc.File
	if file == "" {
		file = "~/.config/starship.toml"
	}

	return &SettingsStep{
		Meta:     desc.Meta(),
		file:     file,
		settings: desc.Settings,
	}, nil
}

// Ensure Provider implements catalog.Provider.
var _ catalog.Provider = (*Provider)(nil)
