// Package metrics provides observability for the simulation server.
// Counters are cheap enough to record from inside the tick loop.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesOut       int64
	WSErrors            int64

	// Persistence metrics
	Autosaves      int64
	AutosaveErrors int64

	// Social backend metrics
	SubmitsOK     int64
	SubmitsFailed int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records an outbound WebSocket broadcast.
func (c *Collector) RecordWSMessage() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordAutosave records a periodic save attempt.
func (c *Collector) RecordAutosave(err error) {
	atomic.AddInt64(&c.Autosaves, 1)
	if err != nil {
		atomic.AddInt64(&c.AutosaveErrors, 1)
	}
}

// RecordSubmit records a social backend submission attempt.
func (c *Collector) RecordSubmit(err error) {
	if err != nil {
		atomic.AddInt64(&c.SubmitsFailed, 1)
		return
	}
	atomic.AddInt64(&c.SubmitsOK, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	// Calculate averages
	var tickAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"persistence": map[string]interface{}{
			"autosaves": atomic.LoadInt64(&c.Autosaves),
			"errors":    atomic.LoadInt64(&c.AutosaveErrors),
		},

		"social": map[string]interface{}{
			"submits_ok":     atomic.LoadInt64(&c.SubmitsOK),
			"submits_failed": atomic.LoadInt64(&c.SubmitsFailed),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP magnate_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE magnate_tick_count counter\n")
		fmt.Fprintf(w, "magnate_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP magnate_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE magnate_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "magnate_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP magnate_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE magnate_events_written counter\n")
		fmt.Fprintf(w, "magnate_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP magnate_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE magnate_event_write_errors counter\n")
		fmt.Fprintf(w, "magnate_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP magnate_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE magnate_ws_connections gauge\n")
		fmt.Fprintf(w, "magnate_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP magnate_autosaves Total autosave attempts\n")
		fmt.Fprintf(w, "# TYPE magnate_autosaves counter\n")
		fmt.Fprintf(w, "magnate_autosaves %d\n\n", atomic.LoadInt64(&c.Autosaves))

		fmt.Fprintf(w, "# HELP magnate_submits_failed Failed social submissions\n")
		fmt.Fprintf(w, "# TYPE magnate_submits_failed counter\n")
		fmt.Fprintf(w, "magnate_submits_failed %d\n", atomic.LoadInt64(&c.SubmitsFailed))
	}
}
