// Package configs manages saved scan configurations.
package configs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
)

// ScanConfig is the crawl configuration attached to a start URL.
type ScanConfig struct {
	MaxDepth      int    `json:"maxDepth" validate:"min=1,max=10"`
	Timeout       int    `json:"timeout" validate:"min=1"`
	ExcludePaths  string `json:"excludePaths"`
	RetryCount    int    `json:"retryCount" validate:"min=0,max=5"`
	AutoScan      int    `json:"autoScan"`
	AutoScanTimes string `json:"autoScanTimes"`
}

// SavedConfiguration is a stored scan configuration as the server returns it.
type SavedConfiguration struct {
	ScanID     int        `json:"scanID"`
	UserID     int        `json:"userID"`
	StartURL   string     `json:"startURL"`
	Config     ScanConfig `json:"config"`
	CreatedAt  string     `json:"createdAt"`
	ModifiedAt string     `json:"modifiedAt"`
}

// SaveRequest is the create/update payload.
type SaveRequest struct {
	StartURL string `json:"startURL" validate:"required,url"`
	ScanConfig
}

type listResponse struct {
	Success bool                 `json:"success"`
	Data    []SavedConfiguration `json:"data"`
}

// Service is the scan-configuration API client.
type Service struct {
	client   *api.Client
	validate *validator.Validate
}

// NewService creates a configs service on top of the shared transport.
func NewService(client *api.Client) *Service {
	return &Service{
		client:   client,
		validate: validator.New(),
	}
}

// List returns the user's saved configurations.
func (s *Service) List(ctx context.Context) ([]SavedConfiguration, error) {
	var resp listResponse
	if err := s.client.Get(ctx, "/config/", &resp); err != nil {
		return nil, fmt.Errorf("failed to load configurations: %w", err)
	}
	return resp.Data, nil
}

// Save creates a new scan configuration after local validation.
func (s *Service) Save(ctx context.Context, req SaveRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid scan configuration: %w", err)
	}
	body := struct {
		Config SaveRequest `json:"config"`
	}{Config: req}
	if err := s.client.Post(ctx, "/config/", body, nil); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// Update replaces an existing scan configuration.
func (s *Service) Update(ctx context.Context, scanID int, req SaveRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid scan configuration: %w", err)
	}
	body := struct {
		ScanID int         `json:"scanID"`
		Config SaveRequest `json:"config"`
	}{ScanID: scanID, Config: req}
	if err := s.client.Put(ctx, fmt.Sprintf("/config/%d", scanID), body, nil); err != nil {
		return fmt.Errorf("failed to update configuration: %w", err)
	}
	return nil
}

// Delete removes a saved configuration.
func (s *Service) Delete(ctx context.Context, scanID int) error {
	if err := s.client.Delete(ctx, fmt.Sprintf("/config/%d", scanID), nil); err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	return nil
}

// NextAutoScan computes the next run time from a configuration's cron
// schedule. Returns the zero time when auto-scan is disabled or the
// expression is empty.
func NextAutoScan(cfg ScanConfig, from time.Time) (time.Time, error) {
	if cfg.AutoScan == 0 || cfg.AutoScanTimes == "" {
		return time.Time{}, nil
	}
	schedule, err := cron.ParseStandard(cfg.AutoScanTimes)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid auto-scan schedule %q: %w", cfg.AutoScanTimes, err)
	}
	return schedule.Next(from), nil
}
