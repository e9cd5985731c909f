package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CareerServices-Pace/LinkSweep/internal/admin"
)

// NewUsersCmd creates the users command (admin only)
func NewUsersCmd() *cobra.Command {
	var apiURL, email, password, toggleID string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage LinkSweep accounts (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsers(apiURL, email, password, toggleID)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the LinkSweep API")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set LINKSWEEP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set LINKSWEEP_PASSWORD)")
	cmd.Flags().StringVar(&toggleID, "toggle-admin", "", "Toggle admin status for the user with this ID")

	return cmd
}

func runUsers(apiURL, email, password, toggleID string) error {
	a, err := newApp(apiURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.signIn(ctx, email, password); err != nil {
		return err
	}
	defer a.signOut(ctx)

	me, _ := a.store.Get()
	if !me.IsAdmin {
		return fmt.Errorf("admin access required")
	}

	svc := admin.NewService(a.client)

	if toggleID != "" {
		if err := svc.ToggleAdmin(ctx, toggleID); err != nil {
			return err
		}
		fmt.Printf("✓ Admin status toggled for %s.\n", toggleID)
		return nil
	}

	users, err := svc.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%-26s %-30s %-20s %s\n", u.ID, u.Email, u.Username, role)
	}
	return nil
}
