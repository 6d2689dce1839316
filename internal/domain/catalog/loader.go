// Package catalog models the ordered step catalog and its compilation
// into executable steps.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the supported catalog file schema.
const SchemaVersion = 1

// File is the parsed catalog file.
type File struct {
	Version int          `yaml:"version"`
	Steps   []Descriptor `yaml:"steps"`
}

// Load reads and validates a catalog file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewStepError(ErrCodeCatalogInvalid, "cannot read catalog file").
			WithSuggestion(fmt.Sprintf("Expected a catalog at %s. Create one or pass --catalog.", path)).
			WithUnderlying(err)
	}
	return Parse(data)
}

// Parse parses catalog bytes.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, NewStepError(ErrCodeCatalogInvalid, "catalog is not valid YAML").
			WithSuggestion("Fix the syntax error reported below.").
			WithUnderlying(err)
	}

	if file.Version != SchemaVersion {
		return nil, NewStepError(ErrCodeCatalogInvalid,
			fmt.Sprintf("unsupported catalog version %d", file.Version)).
			WithSuggestion(fmt.Sprintf("This build understands catalog version %d.", SchemaVersion))
	}

	if len(file.Steps) == 0 {
		return nil, NewStepError(ErrCodeCatalogInvalid, "catalog has no steps").
			WithSuggestion("Add at least one entry under steps:.")
	}

	for _, desc := range file.Steps {
		if err := desc.Validate(); err != nil {
			return nil, err
		}
	}

	return &file, nil
}
