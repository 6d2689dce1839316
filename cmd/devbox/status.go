package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare live machine state against the catalog and ledger",
	Long: `Status runs every step's presence check and lines it up with the
ledger's last recorded outcome. Live checks are authoritative; a ledger
record contradicted by a live check is reported as drift.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		box := newDevbox(cmd.OutOrStdout())
		report, err := box.Status(cmd.Context(), resolvedCatalogPath())
		if err != nil {
			return err
		}

		box.PrintStatus(report)
		return nil
	},
}
