package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CareerServices-Pace/LinkSweep/internal/history"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var apiURL, email, password string
	var runID int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your scan history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(apiURL, email, password, runID)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the LinkSweep API")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set LINKSWEEP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set LINKSWEEP_PASSWORD)")
	cmd.Flags().IntVar(&runID, "run", 0, "Show per-link details for one scan run")

	return cmd
}

func runHistory(apiURL, email, password string, runID int) error {
	a, err := newApp(apiURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.signIn(ctx, email, password); err != nil {
		return err
	}
	defer a.signOut(ctx)

	svc := history.NewService(a.client)

	if runID > 0 {
		details, err := svc.Details(ctx, runID)
		if err != nil {
			return err
		}
		for _, d := range details {
			fmt.Printf("%-4d %-40s %s\n", d.StatusCode, d.Link, d.SourcePage)
		}
		return nil
	}

	results, err := svc.All(ctx)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No scans yet.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("#%-5d %-40s %d links, %d broken (%s)\n",
			r.RunID, r.StartURL, r.TotalLinks, r.BrokenLinks, r.RunStartedAt)
	}
	return nil
}
