package userconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	cfg := &UserConfig{APIURL: "https://links.example.edu"}
	if err := Save(cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.APIURL != cfg.APIURL {
		t.Fatalf("expected %q, got %q", cfg.APIURL, loaded.APIURL)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("failed to get config path: %v", err)
	}
	want := filepath.Join(tempDir, ".config", "linksweep", "config.yaml")
	if path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
}

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	path := filepath.Join(tempDir, ".config", "linksweep")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, "config.yaml"), []byte("api_url: [broken"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
