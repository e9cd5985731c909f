package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CareerServices-Pace/LinkSweep/internal/cli/userconfig"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Configure the LinkSweep server to talk to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(apiURL)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the LinkSweep API (e.g. https://links.example.edu)")

	return cmd
}

func runInit(apiURL string) error {
	if apiURL == "" {
		return fmt.Errorf("--api-url is required")
	}

	cfg := &userconfig.UserConfig{APIURL: apiURL}
	if err := userconfig.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	path, _ := userconfig.GetConfigPath()
	fmt.Printf("✓ Configuration saved to %s\n", path)
	return nil
}
