// Package sshkey provides steps that generate the user's SSH keypair.
package sshkey

import (
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

// Provider compiles sshkey descriptors.
type Provider struct{}

// NewProvider creates the sshkey provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Kind returns the descriptor kind.
func (p *Provider) Kind() string {
	return "sshkey"
}

// Compile transforms an sshkey descriptor into a step.
func (p *Provider) Compile(desc catalog.Descriptor) (catalog.Step, error) {
	path := desc.Path
	if path == "" {
		path = "~/.ssh/id_ed25519"
	}

	return &KeypairStep{
		Meta:    desc.Meta(),
		path:    path,
		comment: desc.Comment,
	}, nil
}

// Ensure Provider implements catalog.Provider.
var _ catalog.Provider = (*Provider)(nil)
