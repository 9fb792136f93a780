package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"magnate/internal/engine"
	"magnate/internal/events"
	"magnate/internal/platform/logger"
	"magnate/internal/platform/metrics"
)

// Client represents an active WebSocket connection.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	lastActionTime time.Time
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	engine     *engine.Engine
	logger     *logger.Logger
	metrics    *metrics.Collector
}

// NewHub initializes a new WebSocket Hub bound to the engine.
func NewHub(eng *engine.Engine, log *logger.Logger, col *metrics.Collector) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		engine:     eng,
		logger:     log,
		metrics:    col,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					h.metrics.RecordWSMessage()
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// wsFrame is the envelope for everything pushed over the socket.
type wsFrame struct {
	Kind    string      `json:"kind"` // "event" or "observation"
	Payload interface{} `json:"payload"`
}

// BroadcastEvent serializes a GameEvent and sends it to all connected clients.
func (h *Hub) BroadcastEvent(event events.GameEvent) {
	payload, err := json.Marshal(wsFrame{Kind: "event", Payload: event})
	if err != nil {
		h.logger.Errorf("Failed to serialize GameEvent for WebSocket broadcast: %v", err)
		return
	}
	h.broadcast <- payload
}

// BroadcastObservation pushes a per-tick observation to all clients.
// Wired as the engine's observer callback.
func (h *Hub) BroadcastObservation(obs engine.Observation) {
	payload, err := json.Marshal(wsFrame{Kind: "observation", Payload: obs})
	if err != nil {
		h.logger.Errorf("Failed to serialize observation for WebSocket broadcast: %v", err)
		return
	}
	// Non-blocking: if the hub loop is saturated the frame is dropped,
	// the next tick replaces it anyway.
	select {
	case h.broadcast <- payload:
	default:
	}
}

// StartEventPoller spawns a goroutine that polls the EventLog and pushes
// new events to the Hub. The Hub runs independently from the engine's
// dispatch loop while picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		cursor := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				fresh := eventLog.Since(cursor)
				for _, event := range fresh {
					h.BroadcastEvent(event)
				}
				cursor += len(fresh)
			}
		}
	}()
}
