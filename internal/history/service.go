// Package history fetches scan history for the signed-in user. It is a thin
// consumer of the API client: the transport handles credentials and session
// renewal transparently.
package history

import (
	"context"
	"fmt"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
)

// ScanResult summarizes one finished scan run.
type ScanResult struct {
	RunID        int    `json:"runID"`
	ScanID       int    `json:"scanID"`
	StartURL     string `json:"startURL"`
	TotalLinks   int    `json:"totalLinks"`
	BrokenLinks  int    `json:"brokenLinks"`
	RunStartedAt string `json:"runStartedAt"`
	RunEndedAt   string `json:"runEndedAt"`
}

// ScanDetail is one checked link within a run.
type ScanDetail struct {
	SourcePage string `json:"source_page"`
	Link       string `json:"link"`
	StatusCode int    `json:"status_code"`
	StatusText string `json:"status_text"`
	LinkType   string `json:"link_type"`
	FixGuide   string `json:"fixGuide"`
}

type scanHistoryResponse struct {
	Success bool         `json:"success"`
	Data    []ScanResult `json:"data"`
}

type scanDetailResponse struct {
	Success bool         `json:"success"`
	Data    []ScanDetail `json:"data"`
}

// Service is the scan-history API client.
type Service struct {
	client *api.Client
}

// NewService creates a history service on top of the shared transport.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// All returns every scan run for the current user, newest first.
func (s *Service) All(ctx context.Context) ([]ScanResult, error) {
	var resp scanHistoryResponse
	if err := s.client.Get(ctx, "/history/all", &resp); err != nil {
		return nil, fmt.Errorf("failed to load scan history: %w", err)
	}
	return resp.Data, nil
}

// Details returns the per-link results of one scan run.
func (s *Service) Details(ctx context.Context, runID int) ([]ScanDetail, error) {
	var resp scanDetailResponse
	if err := s.client.Get(ctx, fmt.Sprintf("/history/%d/full", runID), &resp); err != nil {
		return nil, fmt.Errorf("failed to load scan details: %w", err)
	}
	return resp.Data, nil
}
