// Package network - history.go
// History endpoint - JSON export of the simulation's event log, with
// type and tick filters for dashboards and post-run analysis.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"magnate/internal/events"
	"magnate/internal/platform/logger"
)

// HistoryHandler provides the read-only event history API.
type HistoryHandler struct {
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(el *events.EventLog, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		eventLog: el,
		logger:   log,
	}
}

// HistoryResponse is the API response for the event history.
type HistoryResponse struct {
	TotalEvents int                `json:"total_events"`
	FilteredBy  string             `json:"filtered_by,omitempty"`
	GeneratedAt string             `json:"generated_at"`
	Events      []events.GameEvent `json:"events"`
}

// HandleHistory returns the filtered event history.
// GET /api/history?type=PRESTIGE_EXECUTED&since_tick=N&limit=N
func (hh *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventType := r.URL.Query().Get("type")
	sinceTickStr := r.URL.Query().Get("since_tick")
	limitStr := r.URL.Query().Get("limit")

	all := hh.eventLog.Replay()

	var filtered []events.GameEvent
	filterDesc := ""

	var sinceTick uint64
	if sinceTickStr != "" {
		v, err := strconv.ParseUint(sinceTickStr, 10, 64)
		if err != nil {
			hh.jsonError(w, "Invalid since_tick", http.StatusBadRequest)
			return
		}
		sinceTick = v
		filterDesc = "tick >= " + sinceTickStr
	}

	for _, e := range all {
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		if e.Tick < sinceTick {
			continue
		}
		filtered = append(filtered, e)
	}
	if eventType != "" {
		filterDesc = eventType
	}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			hh.jsonError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		if len(filtered) > limit {
			filtered = filtered[len(filtered)-limit:]
		}
	}

	response := HistoryResponse{
		TotalEvents: len(filtered),
		FilteredBy:  filterDesc,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      filtered,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleStats returns aggregate statistics over the event history.
// GET /api/history/stats
func (hh *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	all := hh.eventLog.Replay()

	byType := make(map[string]int)
	for _, e := range all {
		byType[string(e.Type)]++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"total_events": len(all),
		"by_type":      byType,
	})
}

// jsonError sends an error response.
func (hh *HistoryHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
