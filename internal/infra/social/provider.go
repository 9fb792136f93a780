// Package social provides the integration layer for the leaderboard and
// guild services. The engine talks to an agnostic Provider interface so a
// hosted backend, a self-run one, or the offline stub can be swapped in.
package social

import (
	"context"
	"sync/atomic"
	"time"
)

// Provider is the agnostic interface for social backends. The engine
// uses this interface without knowing which service is behind it.
type Provider interface {
	// Name returns the provider name (for logging).
	Name() string

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable() bool

	// SubmitScore pushes the player's lifetime earnings to the leaderboard.
	SubmitScore(ctx context.Context, score int64) error

	// Contribute adds pooled points to the player's guild event.
	Contribute(ctx context.Context, points int64) error

	// CheckAndFinalize asks the backend to close out any finished
	// guild event and settle rewards.
	CheckAndFinalize(ctx context.Context) error
}

// UsageStats tracks outbound call volume per provider.
type UsageStats struct {
	TotalRequests  int64     `json:"total_requests"`
	FailedRequests int64     `json:"failed_requests"`
	LastSubmitAt   time.Time `json:"last_submit_at"`
}

// callCounter is embedded by providers that want shared stats tracking.
type callCounter struct {
	requests atomic.Int64
	failures atomic.Int64
}

func (c *callCounter) record(err error) {
	c.requests.Add(1)
	if err != nil {
		c.failures.Add(1)
	}
}

func (c *callCounter) stats() UsageStats {
	return UsageStats{
		TotalRequests:  c.requests.Load(),
		FailedRequests: c.failures.Load(),
	}
}
