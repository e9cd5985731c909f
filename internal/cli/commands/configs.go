package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/CareerServices-Pace/LinkSweep/internal/configs"
)

// NewConfigsCmd creates the configs command
func NewConfigsCmd() *cobra.Command {
	var apiURL, email, password string
	var deleteID int

	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List or delete saved scan configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigs(apiURL, email, password, deleteID)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the LinkSweep API")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set LINKSWEEP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set LINKSWEEP_PASSWORD)")
	cmd.Flags().IntVar(&deleteID, "delete", 0, "Delete the configuration with this scan ID")

	return cmd
}

func runConfigs(apiURL, email, password string, deleteID int) error {
	a, err := newApp(apiURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.signIn(ctx, email, password); err != nil {
		return err
	}
	defer a.signOut(ctx)

	svc := configs.NewService(a.client)

	if deleteID > 0 {
		if err := svc.Delete(ctx, deleteID); err != nil {
			return err
		}
		fmt.Printf("✓ Configuration %d deleted.\n", deleteID)
		return nil
	}

	saved, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Println("No saved configurations.")
		return nil
	}

	now := time.Now()
	for _, sc := range saved {
		line := fmt.Sprintf("#%-5d %-40s depth=%d retries=%d",
			sc.ScanID, sc.StartURL, sc.Config.MaxDepth, sc.Config.RetryCount)
		if next, err := configs.NextAutoScan(sc.Config, now); err == nil && !next.IsZero() {
			line += fmt.Sprintf(" next auto-scan %s", next.Format(time.RFC3339))
		}
		fmt.Println(line)
	}
	return nil
}
