package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var applyDryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Converge the machine onto the catalog",
	Long: `Apply runs every catalog step in order: check, then install when
missing. Progress is persisted to the ledger after each step, so an
interrupted run resumes cleanly.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		box := newDevbox(cmd.OutOrStdout())
		report, err := box.Run(ctx, resolvedCatalogPath(), applyDryRun)
		if err != nil {
			return err
		}

		box.PrintReport(report, applyDryRun)
		exitCode = report.ExitCode()
		return nil
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false,
		"check only, apply nothing")
}
