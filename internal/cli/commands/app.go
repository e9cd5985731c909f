package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
	"github.com/CareerServices-Pace/LinkSweep/internal/auth"
	"github.com/CareerServices-Pace/LinkSweep/internal/cli/userconfig"
	"github.com/CareerServices-Pace/LinkSweep/internal/config"
	"github.com/CareerServices-Pace/LinkSweep/internal/logger"
	"github.com/CareerServices-Pace/LinkSweep/internal/session"
)

// app bundles the client-side core for one CLI invocation. The session
// cookie jar lives and dies with the process.
type app struct {
	cfg     *config.Config
	client  *api.Client
	store   *session.Store
	service *auth.Service
	reset   *auth.ResetFlow
}

// newApp resolves the API base URL (flag, then user config file, then
// environment default) and wires the core components together.
func newApp(apiURL string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if apiURL == "" {
		if uc, err := userconfig.Load(); err == nil && uc.APIURL != "" {
			apiURL = uc.APIURL
		}
	}
	if apiURL == "" {
		apiURL = cfg.API.BaseURL
	}

	log := logger.GetLogger()
	client := api.New(apiURL, log)
	client.SetTimeout(cfg.API.Timeout)

	store := session.NewStore()
	service := auth.NewService(client, store, log)
	reset := auth.NewResetFlow(client, store, log)

	return &app{
		cfg:     cfg,
		client:  client,
		store:   store,
		service: service,
		reset:   reset,
	}, nil
}

// signIn authenticates the process session. Credentials come from flags,
// then environment (useful for CI), then an interactive prompt.
func (a *app) signIn(ctx context.Context, email, password string) error {
	if email == "" {
		email = os.Getenv("LINKSWEEP_EMAIL")
	}
	if password == "" {
		password = os.Getenv("LINKSWEEP_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or LINKSWEEP_EMAIL env var)")
	}

	if password == "" {
		var err error
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	a.client.SetRoute("/login")
	a.service.Start(ctx)

	result := a.service.Login(ctx, auth.Credentials{Email: email, Password: password})
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Err.Detail)
	}

	// Navigated off the login view; 401s from here on may trigger a renewal.
	a.client.SetRoute("/dashboard")
	return nil
}

// signOut ends the server-side session on a best-effort basis.
func (a *app) signOut(ctx context.Context) {
	a.service.Logout(ctx)
}

func promptPassword(label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or LINKSWEEP_PASSWORD env var)")
	}
	fmt.Print(label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println() // New line after password input
	return string(bytePassword), nil
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
