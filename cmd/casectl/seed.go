package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"casetrack/internal/app"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample cases and officer notes",
	Long: `Creates the three sample cases (OB/2025/001 to OB/2025/003) with their
officer notes. Cases that already exist are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withServices(cmd.Context(), func(svcs *app.Services) error {
			res, err := app.Seed(cmd.Context(), svcs.Cases, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d cases and %d notes (%d already present).\n",
				res.CasesCreated, res.NotesAdded, res.CasesSkipped)
			return nil
		})
	},
}
