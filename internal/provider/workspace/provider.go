// Package workspace provides the final step that lays out a terminal
// multiplexer session for daily work.
package workspace

import (
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/validation"
)

// Provider compiles workspace descriptors.
type Provider struct {
	mux ports.Multiplexer
}

// NewProvider creates the workspace provider.
func NewProvider(mux ports.Multiplexer) *Provider {
	return &Provider{mux: mux}
}

// Kind returns the descriptor kind.
func (p *Provider) Kind() string {
	return "workspace"
}

// Compile transforms a workspace descriptor into a step.
func (p *Provider) Compile(desc catalog.Descriptor) (catalog.Step, error) {
	if desc.Session == "" {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"workspace step needs a session name").
			WithStepID(desc.Name).
			WithSuggestion("Set session: to the multiplexer session to create.")
	}
	if err := validation.ValidateSessionName(desc.Session); err != nil {
		return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
			"invalid session name").
			WithStepID(desc.Name).
			WithUnderlying(err)
	}
	for _, win := range desc.Windows {
		if err := validation.ValidateSessionName(win.Name); err != nil {
			return nil, catalog.NewStepError(catalog.ErrCodeDescriptorFields,
				"invalid window name").
				WithStepID(desc.Name).
				WithUnderlying(err)
		}
	}

	return &SessionStep{
		Meta:    desc.Meta(),
		session: desc.Session,
		root:    desc.Root,
		windows: desc.Windows,
		mux:     p.mux,
	}, nil
}

// Ensure Provider implements catalog.Provider.
var _ catalog.Provider = (*Provider)(nil)
