package catalog

import (
	"fmt"

	"github.com/felixgeelhaar/devbox/internal/domain/integrity"
)

// WindowSpec describes one multiplexer window in a workspace descriptor.
type WindowSpec struct {
	Name    string `yaml:"name"`
	Dir     string `yaml:"dir,omitempty"`
	Command string `yaml:"command,omitempty"`
}

// Descriptor is the static, declarative description of one step as
// authored in the catalog file. Descriptors are defined at config time
// and consumed read-only; providers compile them into Steps.
type Descriptor struct {
	Name       string `yaml:"name"`
	Phase      int    `yaml:"phase"`
	Kind       string `yaml:"kind"`
	Policy     string `yaml:"policy,omitempty"`
	Privileged bool   `yaml:"privileged,omitempty"`

	// Presence predicate for tool installs: binary expected on PATH.
	Command string `yaml:"command,omitempty"`

	// apt
	Packages []string `yaml:"packages,omitempty"`

	// script / binary
	URL     string   `yaml:"url,omitempty"`
	Digest  string   `yaml:"digest,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	Version string   `yaml:"version,omitempty"`

	// shellrc
	File    string   `yaml:"file,omitempty"`
	Section string   `yaml:"section,omitempty"`
	Lines   []string `yaml:"lines,omitempty"`

	// gitconfig / starship
	Settings map[string]string `yaml:"settings,omitempty"`

	// sshkey
	Path    string `yaml:"path,omitempty"`
	Comment string `yaml:"comment,omitempty"`

	// workspace
	Session string       `yaml:"session,omitempty"`
	Root    string       `yaml:"root,omitempty"`
	Windows []WindowSpec `yaml:"windows,omitempty"`
}

// StepID derives the validated step identifier from the descriptor name.
func (d Descriptor) StepID() (StepID, error) {
	return NewStepID(d.Name)
}

// FailurePolicy parses the descriptor's policy field.
func (d Descriptor) FailurePolicy() (FailurePolicy, error) {
	policy, ok := ParseFailurePolicy(d.Policy)
	if !ok {
		return "", NewStepError(ErrCodeDescriptorFields,
			fmt.Sprintf("unknown policy %q", d.Policy)).
			WithStepID(d.Name).
			WithSuggestion(`Use "abort" or "continue".`)
	}
	return policy, nil
}

// Integrity parses the descriptor's digest field. Zero value when absent.
func (d Descriptor) Integrity() (integrity.Integrity, error) {
	if d.Digest == "" {
		return integrity.Integrity{}, nil
	}
	digest, err := integrity.Parse(d.Digest)
	if err != nil {
		return integrity.Integrity{}, NewStepError(ErrCodeDescriptorFields,
			"invalid digest").
			WithStepID(d.Name).
			WithSuggestion(`Digests are "sha256:<hex>" or "sha512:<hex>".`).
			WithUnderlying(err)
	}
	return digest, nil
}

// Validate checks descriptor shape that is common to all kinds.
// Kind-specific field requirements are enforced by providers at compile.
func (d Descriptor) Validate() error {
	if _, err := d.StepID(); err != nil {
		return NewStepError(ErrCodeDescriptorFields, "invalid step name").
			WithStepID(d.Name).
			WithUnderlying(err)
	}
	if d.Kind == "" {
		return NewStepError(ErrCodeDescriptorFields, "missing step kind").
			WithStepID(d.Name).
			WithSuggestion("Every catalog entry needs a kind (apt, script, binary, shellrc, gitconfig, starship, sshkey, workspace).")
	}
	if d.Phase < 0 {
		return NewStepError(ErrCodeDescriptorFields, "phase cannot be negative").
			WithStepID(d.Name)
	}
	if _, err := d.FailurePolicy(); err != nil {
		return err
	}
	if _, err := d.Integrity(); err != nil {
		return err
	}
	return nil
}

// Meta builds the shared step metadata from the descriptor.
// Validate must have succeeded before calling.
func (d Descriptor) Meta() Meta {
	id := MustNewStepID(d.Name)
	policy, _ := ParseFailurePolicy(d.Policy)
	return NewMeta(id, d.Phase, policy, d.Privileged)
}
