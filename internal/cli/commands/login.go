package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var apiURL, email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify your LinkSweep credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(apiURL, email, password)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the LinkSweep API")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set LINKSWEEP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set LINKSWEEP_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(apiURL, email, password string) error {
	a, err := newApp(apiURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.signIn(ctx, email, password); err != nil {
		return err
	}
	defer a.signOut(ctx)

	user, _ := a.store.Get()
	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.Username, user.Email)
	if user.IsAdmin {
		fmt.Println("  Role: Admin")
	}

	return nil
}
