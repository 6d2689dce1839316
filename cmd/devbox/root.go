package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/devbox/internal/adapters/logging"
	"github.com/felixgeelhaar/devbox/internal/app"
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/engine"
	"github.com/felixgeelhaar/devbox/internal/ports"
)

var (
	// Global flags
	catalogPath string
	ledgerPath  string
	verbose     bool
)

// exitCode is set by commands that completed a run; errors returned
// from RunE are fatal and map to engine.ExitAborted.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "devbox",
	Short: "An idempotent Ubuntu development machine provisioner",
	Long: `Devbox converges a machine onto a declared set of tools.

Every step carries a live presence check: what is already installed is
skipped, what is missing is installed, and outcomes are recorded in a
ledger so repeated runs are safe and fast.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	exitCode = engine.ExitOK
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return engine.ExitAborted
	}
	return exitCode
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "",
		"catalog file (default: ~/.config/devbox/catalog.yaml)")
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "",
		"ledger file (default: ~/.local/state/devbox/ledger.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// newDevbox builds the facade honoring the global flags.
func newDevbox(out io.Writer) *app.Devbox {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	opts := []app.Option{
		app.WithLogger(logging.NewConsoleLogger(os.Stderr, level)),
	}
	if ledgerPath != "" {
		opts = append(opts, app.WithLedgerPath(ledgerPath))
	}
	return app.New(out, opts...)
}

func resolvedCatalogPath() string {
	if catalogPath != "" {
		return catalogPath
	}
	return app.DefaultCatalogPath()
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var stepErr *catalog.StepError
	if errors.As(err, &stepErr) {
		msg := stepErr.Message
		if stepErr.StepID != "" {
			msg = fmt.Sprintf("%s (step %s)", msg, stepErr.StepID)
		}
		if stepErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", stepErr.Suggestion)
		}
		if verbose && stepErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", stepErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

func printErrorTo(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
