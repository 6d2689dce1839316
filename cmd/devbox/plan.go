package main

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what apply would do without changing anything",
	RunE: func(cmd *cobra.Command, _ []string) error {
		box := newDevbox(cmd.OutOrStdout())
		report, err := box.Run(cmd.Context(), resolvedCatalogPath(), true)
		if err != nil {
			return err
		}

		box.PrintReport(report, true)
		exitCode = report.ExitCode()
		return nil
	},
}
