// Package social - offline.go
// No-op provider used when no social service is configured. Keeps the
// engine's submission path exercised without network access.
package social

import "context"

// OfflineProvider implements Provider for offline play.
type OfflineProvider struct {
	callCounter
}

func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

func (p *OfflineProvider) Name() string      { return "offline" }
func (p *OfflineProvider) IsAvailable() bool { return true }

func (p *OfflineProvider) SubmitScore(ctx context.Context, score int64) error {
	p.record(nil)
	return nil
}

func (p *OfflineProvider) Contribute(ctx context.Context, points int64) error {
	p.record(nil)
	return nil
}

func (p *OfflineProvider) CheckAndFinalize(ctx context.Context) error {
	p.record(nil)
	return nil
}

var _ Provider = (*OfflineProvider)(nil)
