package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewChangePasswordCmd creates the change-password command
func NewChangePasswordCmd() *cobra.Command {
	var apiURL, email, password string

	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change your password while signed in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChangePassword(apiURL, email, password)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the LinkSweep API")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set LINKSWEEP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Current password (or set LINKSWEEP_PASSWORD, will prompt if not provided)")

	return cmd
}

func runChangePassword(apiURL, email, password string) error {
	a, err := newApp(apiURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.signIn(ctx, email, password); err != nil {
		return err
	}
	defer a.signOut(ctx)

	current, err := promptPassword("Current password: ")
	if err != nil {
		return err
	}
	next, err := promptPassword("New password: ")
	if err != nil {
		return err
	}

	if result := a.reset.ChangePassword(ctx, current, next); !result.Success {
		return fmt.Errorf("password change failed: %s", result.Err.Detail)
	}

	fmt.Println("✓ Password changed.")
	return nil
}
