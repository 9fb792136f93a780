package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"magnate/internal/domain/ledger"
	"magnate/internal/events"
	"magnate/internal/platform/metrics"
)

// SaveSchemaVersion is bumped whenever the snapshot shape changes in a
// way old readers cannot handle.
const SaveSchemaVersion = 1

// LedgerStore persists whole-ledger JSON snapshots into a save slot.
// It satisfies the engine's save interface.
type LedgerStore struct {
	repo SaveRepository
	slot string
}

func NewLedgerStore(repo SaveRepository, slot string) *LedgerStore {
	return &LedgerStore{repo: repo, slot: slot}
}

func (s *LedgerStore) Save(l *ledger.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}
	return s.repo.Put(context.Background(), SaveRecord{
		Slot:      s.slot,
		Version:   SaveSchemaVersion,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	})
}

// Load returns the stored ledger for the slot, or found=false when the
// slot is empty. Callers are expected to run Sanitize on the result
// before handing it to the engine.
func (s *LedgerStore) Load() (*ledger.Ledger, bool, error) {
	rec, err := s.repo.Get(context.Background(), s.slot)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}
	var l ledger.Ledger
	if err := json.Unmarshal(rec.Data, &l); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal ledger: %w", err)
	}
	return &l, true, nil
}

// EventWriter adapts the event repository to the event log's persister
// interface. The log calls it off the tick path, so a plain background
// context is fine here.
type EventWriter struct {
	repo EventRepository
}

func NewEventWriter(repo EventRepository) *EventWriter {
	return &EventWriter{repo: repo}
}

func (w *EventWriter) Append(event events.GameEvent) error {
	started := time.Now()
	err := w.repo.Append(context.Background(), EventRecord{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Tick:      event.Tick,
		Subject:   event.Subject,
		Payload:   payloadMap(event.Payload),
	})
	metrics.Get().RecordEventWrite(time.Since(started), err)
	return err
}

func payloadMap(v interface{}) map[string]interface{} {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{"value": fmt.Sprint(v)}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{"value": fmt.Sprint(v)}
	}
	return m
}
