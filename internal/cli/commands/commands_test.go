package commands

import (
	"testing"

	"github.com/spf13/cobra"
)

func newCommandByName(name string) *cobra.Command {
	switch name {
	case "init":
		return NewInitCmd()
	case "login":
		return NewLoginCmd()
	case "signup":
		return NewSignupCmd()
	case "forgot-password":
		return NewForgotPasswordCmd()
	case "change-password":
		return NewChangePasswordCmd()
	case "history":
		return NewHistoryCmd()
	case "configs":
		return NewConfigsCmd()
	case "users":
		return NewUsersCmd()
	default:
		return nil
	}
}

// TestCommandStructure checks each command is properly configured
func TestCommandStructure(t *testing.T) {
	tests := []struct {
		name  string
		use   string
		short string
	}{
		{"init", "init", "Configure the LinkSweep server to talk to"},
		{"login", "login", "Verify your LinkSweep credentials"},
		{"signup", "signup", "Create a LinkSweep account"},
		{"forgot-password", "forgot-password", "Reset a forgotten password via emailed OTP"},
		{"change-password", "change-password", "Change your password while signed in"},
		{"history", "history", "Show your scan history"},
		{"configs", "configs", "List or delete saved scan configurations"},
		{"users", "users", "Manage LinkSweep accounts (admin only)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCommandByName(tt.name)
			if cmd == nil {
				t.Fatalf("no constructor for %s", tt.name)
			}
			if cmd.Use != tt.use {
				t.Errorf("expected Use %q, got %q", tt.use, cmd.Use)
			}
			if cmd.Short != tt.short {
				t.Errorf("expected Short %q, got %q", tt.short, cmd.Short)
			}
		})
	}
}

func TestAuthCommandsExposeCredentialFlags(t *testing.T) {
	for _, name := range []string{"login", "change-password", "history", "configs", "users"} {
		cmd := newCommandByName(name)
		if cmd.Flags().Lookup("email") == nil {
			t.Errorf("%s: missing --email flag", name)
		}
		if cmd.Flags().Lookup("password") == nil {
			t.Errorf("%s: missing --password flag", name)
		}
		if cmd.Flags().Lookup("api-url") == nil {
			t.Errorf("%s: missing --api-url flag", name)
		}
	}
}

func TestSignupRequiresEmailAndUsername(t *testing.T) {
	if err := runSignup("", "", "", "secret"); err == nil {
		t.Fatal("expected error when email and username are missing")
	}
}

func TestInitRequiresAPIURL(t *testing.T) {
	if err := runInit(""); err == nil {
		t.Fatal("expected error when --api-url is missing")
	}
}
