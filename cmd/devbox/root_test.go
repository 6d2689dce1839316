package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/devbox/internal/app"
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

func TestFormatError(t *testing.T) {
	stepErr := catalog.NewStepError(catalog.ErrCodeIntegrity,
		"downloaded artifact failed integrity verification").
		WithStepID("binary:rg").
		WithSuggestion("Verify the expected digest in the catalog.").
		WithUnderlying(errors.New("expected sha256:ab, got sha256:cd"))

	verbose = false
	out := formatError(stepErr)
	assert.Contains(t, out, "integrity verification")
	assert.Contains(t, out, "step binary:rg")
	assert.Contains(t, out, "Suggestion: Verify the expected digest")
	assert.NotContains(t, out, "sha256:cd", "technical details only with --verbose")

	verbose = true
	defer func() { verbose = false }()
	out = formatError(stepErr)
	assert.Contains(t, out, "sha256:cd")
}

func TestFormatErrorPlain(t *testing.T) {
	assert.Equal(t, "something broke", formatError(errors.New("something broke")))
}

func TestPrintErrorTo(t *testing.T) {
	var buf strings.Builder
	printErrorTo(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestResolvedCatalogPath(t *testing.T) {
	catalogPath = ""
	assert.Equal(t, app.DefaultCatalogPath(), resolvedCatalogPath())

	catalogPath = "/tmp/custom.yaml"
	defer func() { catalogPath = "" }()
	assert.Equal(t, "/tmp/custom.yaml", resolvedCatalogPath())
}

func TestRootRegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"apply", "plan", "status", "version"} {
		assert.True(t, names[want], want)
	}
}
