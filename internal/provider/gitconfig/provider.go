// Package gitconfig provides steps that maintain settings in the user's
// git configuration file.
package gitconfig

import (
	"strings"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

// Provider compiles gitconfig descriptors.
type Provider struct{}

// NewProvider creates the gitconfig provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Kind returns the descriptor kind.
func (p *Provider) Kind() string {
	return "gitconfig"
}

// Compile transforms a gitconfig descriptor into a step. Settings are
// "section.key" entries, e.g. "user.name" or "init.defaultBranch".
func (p *Provider) Compile(desc catalog.Descriptor) (catalog.Step, error) {
	if len(desc.Settings) == 0 {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"gitconfig step needs at least one setting").
			WithStepID(desc.Name).
			WithSuggestion(`Add entries like "user.name: Jane Doe" under settings:.`)
	}
	for key := range desc.Settings {
		if !strings.Contains(key, ".") {
			return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
				"gitconfig keys use section.key form").
				WithStepID(desc.Name).
				WithSuggestion(`Use keys like "user.email" or "core.editor".`)
		}
	}

	file := desc.File
	if file == "" {
		file = "~/.gitconfig"
	}

	return &SettingsStep{
		Meta:     desc.Meta(),
		file:     file,
		settings: desc.Settings,
	}, nil
}

// Ensure Provider implements catalog.Provider.
var _ catalog.Provider = (*Provider)(nil)
