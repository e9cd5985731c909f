package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
)

// NewForgotPasswordCmd creates the forgot-password command
func NewForgotPasswordCmd() *cobra.Command {
	var apiURL, email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Reset a forgotten password via emailed OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForgotPassword(apiURL, email)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the LinkSweep API")
	cmd.Flags().StringVar(&email, "email", "", "Email address of the account to recover")

	return cmd
}

func runForgotPassword(apiURL, email string) error {
	a, err := newApp(apiURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a.client.SetRoute("/forgot-password")
	a.service.Start(ctx)

	if email == "" {
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}

	// Step 1: request the OTP.
	if result := a.reset.RequestReset(ctx, email); !result.Success {
		return fmt.Errorf("failed to send OTP: %s", result.Err.Detail)
	}
	fmt.Println("✓ OTP sent. Check your email for a 6-digit code.")

	// Step 2: verify it, allowing retries and resends.
	for {
		otp, err := promptLine("OTP (or 'resend'): ")
		if err != nil {
			return err
		}

		if otp == "resend" {
			if result := a.reset.ResendOtp(ctx); !result.Success {
				return fmt.Errorf("failed to resend OTP: %s", result.Err.Detail)
			}
			fmt.Println("✓ A new OTP is on its way.")
			continue
		}

		result := a.reset.VerifyOtp(ctx, otp)
		if result.Success {
			break
		}
		if result.Err.Kind == api.KindValidationFailed || result.Err.Kind == api.KindOtpInvalidOrExpired {
			fmt.Printf("  %s\n", result.Err.Detail)
			continue
		}
		return fmt.Errorf("OTP verification failed: %s", result.Err.Detail)
	}

	// Step 3: set the new password.
	for {
		newPassword, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}

		result := a.reset.ResetPassword(ctx, newPassword, confirm)
		if result.Success {
			break
		}
		if result.Err.Kind == api.KindPasswordMismatch {
			fmt.Println("  Passwords do not match, try again.")
			continue
		}
		return fmt.Errorf("password reset failed: %s", result.Err.Detail)
	}

	fmt.Println("✓ Password reset. You can now log in.")
	return nil
}
