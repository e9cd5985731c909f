package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CareerServices-Pace/LinkSweep/internal/auth"
)

// NewSignupCmd creates the signup command
func NewSignupCmd() *cobra.Command {
	var apiURL, email, username, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a LinkSweep account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(apiURL, email, username, password)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the LinkSweep API")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runSignup(apiURL, email, username, password string) error {
	if email == "" || username == "" {
		return fmt.Errorf("--email and --username are required")
	}

	a, err := newApp(apiURL)
	if err != nil {
		return err
	}

	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	a.client.SetRoute("/signup")
	a.service.Start(ctx)

	result := a.service.Signup(ctx, auth.SignupData{
		Email:    email,
		Username: username,
		Password: password,
	})
	if !result.Success {
		for field, msgs := range result.Err.FieldErrors {
			for _, msg := range msgs {
				fmt.Printf("  %s: %s\n", field, msg)
			}
		}
		return fmt.Errorf("signup failed: %s", result.Err.Detail)
	}
	defer a.signOut(ctx)

	user, _ := a.store.Get()
	fmt.Println("✓ Account created!")
	fmt.Printf("  User: %s (%s)\n", user.Username, user.Email)

	return nil
}
