// Package cache provides short-lived caching for dashboard reads, so
// HTTP polling never has to contend with the tick loop for the engine
// lock. Cached snapshots are not the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Client is the key/value surface the cache runs on. The in-memory
// implementation below is the default; a Redis-backed one can replace
// it for multi-instance deployments without touching callers.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ErrMiss is returned by Get when a key is absent or expired.
var ErrMiss = fmt.Errorf("cache miss")

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryClient is a process-local Client with per-key TTL.
type MemoryClient struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{entries: make(map[string]memoryEntry)}
}

func (m *MemoryClient) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", ErrMiss
	}
	return entry.value, nil
}

func (m *MemoryClient) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(expiration)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}

// DashboardCache holds the latest rendered dashboard payload.
type DashboardCache struct {
	client     Client
	slot       string
	expiration time.Duration
}

// NewDashboardCache creates a cache scoped to one save slot.
func NewDashboardCache(client Client, slot string) *DashboardCache {
	return &DashboardCache{
		client:     client,
		slot:       slot,
		expiration: 2 * time.Second, // a couple of tick periods at most
	}
}

// SetSnapshot caches a dashboard payload.
func (c *DashboardCache) SetSnapshot(ctx context.Context, snapshot interface{}) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard snapshot: %w", err)
	}
	return c.client.Set(ctx, c.key(), string(data), c.expiration)
}

// GetSnapshot retrieves the cached payload as raw JSON. Returns ErrMiss
// when nothing fresh is cached.
func (c *DashboardCache) GetSnapshot(ctx context.Context) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, c.key())
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Invalidate drops the cached payload, forcing the next read to rebuild.
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key())
}

func (c *DashboardCache) key() string {
	return fmt.Sprintf("slot:%s:dashboard", c.slot)
}
