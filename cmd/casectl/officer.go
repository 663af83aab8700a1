package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"casetrack/internal/app"
	"casetrack/internal/identity/secrets"
)

var (
	officerEmail    string
	officerPassword string
)

var createOfficerCmd = &cobra.Command{
	Use:   "create-officer",
	Short: "Create an officer account",
	Long: `Creates an account with the officer role. When --password is omitted a
random password is generated and printed once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if officerEmail == "" {
			return errors.New("--email is required")
		}
		password := officerPassword
		generated := password == ""
		if generated {
			var err error
			if password, err = secrets.Generate(); err != nil {
				return err
			}
		}
		return withServices(cmd.Context(), func(svcs *app.Services) error {
			u, err := svcs.Identity.CreateOfficer(cmd.Context(), officerEmail, password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Officer %s created (id %s).\n", u.Email, u.ID)
			if generated {
				fmt.Fprintf(out, "Password: %s\n", password)
			}
			return nil
		})
	},
}

func init() {
	createOfficerCmd.Flags().StringVar(&officerEmail, "email", "", "officer email address")
	createOfficerCmd.Flags().StringVar(&officerPassword, "password", "", "password (generated when empty)")
}
