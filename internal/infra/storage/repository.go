// Package storage provides the persistence layer for the simulator.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// EventRecord mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type EventRecord struct {
	ID        string                 `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	Tick      uint64                 `json:"tick" db:"tick"`
	Subject   string                 `json:"subject" db:"subject"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable log.
	Append(ctx context.Context, event EventRecord) error

	// GetAll retrieves the full event history, oldest first (for replay).
	GetAll(ctx context.Context) ([]EventRecord, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, eventType string) ([]EventRecord, error)

	// GetSinceTick retrieves all events at or after a given tick.
	GetSinceTick(ctx context.Context, tick uint64) ([]EventRecord, error)

	// Tail retrieves the most recent n events, oldest first.
	Tail(ctx context.Context, n int) ([]EventRecord, error)
}

// SaveRecord is one serialized ledger snapshot keyed by slot.
type SaveRecord struct {
	Slot      string    `json:"slot" db:"slot"`
	Version   int       `json:"version" db:"version"`
	Data      []byte    `json:"data" db:"data"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SaveRepository defines the interface for ledger snapshot persistence.
// Saves are whole-snapshot upserts; there is no partial update.
type SaveRepository interface {
	// Put writes or replaces the snapshot for a slot.
	Put(ctx context.Context, record SaveRecord) error

	// Get retrieves a slot's snapshot. Returns nil when the slot is empty.
	Get(ctx context.Context, slot string) (*SaveRecord, error)
}
