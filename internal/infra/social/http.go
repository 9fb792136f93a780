// Package social - http.go
// HTTP adapter for a hosted leaderboard/guild service.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// HTTPProvider implements Provider against a REST social service.
type HTTPProvider struct {
	apiKey     string
	baseURL    string
	playerID   string
	httpClient *http.Client
	callCounter
}

type scoreRequest struct {
	PlayerID string `json:"player_id"`
	Score    int64  `json:"score"`
}

type contributeRequest struct {
	PlayerID string `json:"player_id"`
	Points   int64  `json:"points"`
}

// NewHTTPProvider creates an adapter from environment configuration.
// MAGNATE_SOCIAL_URL and MAGNATE_SOCIAL_KEY must both be set for the
// provider to report itself available.
func NewHTTPProvider(playerID string) *HTTPProvider {
	return &HTTPProvider{
		apiKey:     os.Getenv("MAGNATE_SOCIAL_KEY"),
		baseURL:    os.Getenv("MAGNATE_SOCIAL_URL"),
		playerID:   playerID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provider name.
func (p *HTTPProvider) Name() string {
	return "http-social"
}

// IsAvailable checks if the service endpoint and key are configured.
func (p *HTTPProvider) IsAvailable() bool {
	return p.apiKey != "" && p.baseURL != ""
}

// SubmitScore pushes lifetime earnings to the leaderboard.
func (p *HTTPProvider) SubmitScore(ctx context.Context, score int64) error {
	err := p.post(ctx, "/v1/leaderboard/submit", scoreRequest{
		PlayerID: p.playerID,
		Score:    score,
	})
	p.record(err)
	return err
}

// Contribute adds pooled points to the active guild event.
func (p *HTTPProvider) Contribute(ctx context.Context, points int64) error {
	err := p.post(ctx, "/v1/guild/contribute", contributeRequest{
		PlayerID: p.playerID,
		Points:   points,
	})
	p.record(err)
	return err
}

// CheckAndFinalize asks the backend to settle any finished guild event.
func (p *HTTPProvider) CheckAndFinalize(ctx context.Context) error {
	err := p.post(ctx, "/v1/guild/finalize", scoreRequest{PlayerID: p.playerID})
	p.record(err)
	return err
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload interface{}) error {
	if !p.IsAvailable() {
		return fmt.Errorf("social service not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("social service error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// GetUsageStats returns outbound call counters.
func (p *HTTPProvider) GetUsageStats() UsageStats {
	return p.stats()
}

// Ensure HTTPProvider implements Provider
var _ Provider = (*HTTPProvider)(nil)
