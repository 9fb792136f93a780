// Package events provides the append-only action log for the simulation.
// Every significant state transition is recorded here; the network layer
// and the persistence layer both consume the same log.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeResearchStarted    EventType = "RESEARCH_STARTED"
	EventTypeResearchCompleted  EventType = "RESEARCH_COMPLETED"
	EventTypeContractAccepted   EventType = "CONTRACT_ACCEPTED"
	EventTypeContractCompleted  EventType = "CONTRACT_COMPLETED"
	EventTypeOfferSpawned       EventType = "OFFER_SPAWNED"
	EventTypeOfferClaimed       EventType = "OFFER_CLAIMED"
	EventTypeOfferExpired       EventType = "OFFER_EXPIRED"
	EventTypeMarketEventStarted EventType = "MARKET_EVENT_STARTED"
	EventTypeMarketEventEnded   EventType = "MARKET_EVENT_ENDED"
	EventTypeLevelUp            EventType = "LEVEL_UP"
	EventTypeWorkerHired        EventType = "WORKER_HIRED"
	EventTypeStructureBuilt     EventType = "STRUCTURE_BUILT"
	EventTypeVentureUpgraded    EventType = "VENTURE_UPGRADED"
	EventTypeUpgradePurchased   EventType = "UPGRADE_PURCHASED"
	EventTypePerkPurchased      EventType = "PERK_PURCHASED"
	EventTypePrestigeExecuted   EventType = "PRESTIGE_EXECUTED"
	EventTypeAscensionExecuted  EventType = "ASCENSION_EXECUTED"
	EventTypeAutomationToggled  EventType = "AUTOMATION_TOGGLED"
	EventTypeSaveRepaired       EventType = "SAVE_REPAIRED"
)

// GameEvent represents an immutable record of an action in the simulation.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Tick      uint64      `json:"tick"`
	Subject   string      `json:"subject"` // the thing acted on (node id, offer id, tier name)
	Payload   interface{} `json:"payload,omitempty"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of game events, optionally
// written through to durable storage.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Record appends a freshly-stamped event and returns it.
func (el *EventLog) Record(tick uint64, t EventType, subject string, payload interface{}) GameEvent {
	e := GameEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      t,
		Tick:      tick,
		Subject:   subject,
		Payload:   payload,
	}
	el.Append(e)
	return e
}

// Append adds a new event to the log. Events are immutable once appended.
// The write-through to the persister is fire-and-forget: a storage failure
// must never reach the tick loop.
func (el *EventLog) Append(event GameEvent) {
	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		go func(e GameEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// Len returns the number of recorded events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// Since returns a copy of all events from index n onward. Pollers track
// their own cursor and call this each interval.
func (el *EventLog) Since(n int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if n < 0 || n >= len(el.events) {
		return nil
	}
	out := make([]GameEvent, len(el.events)-n)
	copy(out, el.events[n:])
	return out
}

// GetByType returns all events of a given type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Tail returns the most recent n events, oldest first.
func (el *EventLog) Tail(n int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	if n <= 0 || len(el.events) == 0 {
		return nil
	}
	if n > len(el.events) {
		n = len(el.events)
	}
	out := make([]GameEvent, n)
	copy(out, el.events[len(el.events)-n:])
	return out
}

// Replay returns the full history of events.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}
