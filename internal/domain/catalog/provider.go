package catalog

import "fmt"

// Provider compiles descriptors of one kind into executable steps.
// Each provider handles a specific resource type (apt, script, shellrc...).
type Provider interface {
	// Kind returns the descriptor kind this provider handles.
	Kind() string

	// Compile transforms a descriptor into a step. The descriptor has
	// already passed shape validation; kind-specific requirements are
	// enforced here.
	Compile(desc Descriptor) (Step, error)
}

// Compile builds a closed Registry from an ordered descriptor list using
// the given providers. Any error here is a catalog authoring defect and
// aborts before any step executes.
func Compile(descs []Descriptor, providers []Provider) (*Registry, error) {
	byKind := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byKind[p.Kind()] = p
	}

	registry := NewRegistry()
	for _, desc := range descs {
		if err := desc.Validate(); err != nil {
			return nil, err
		}

		provider, ok := byKind[desc.Kind]
		if !ok {
			return nil, NewStepError(ErrCodeUnknownStepKind,
				fmt.Sprintf("no provider for kind %q", desc.Kind)).
				WithStepID(desc.Name).
				WithSuggestion("Check the kind field against the supported step kinds.")
		}

		step, err := provider.Compile(desc)
		if err != nil {
			return nil, err
		}

		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}

	registry.Close()
	return registry, nil
}
