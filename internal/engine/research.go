// Package engine - research.go
// Research timer advancement. Starting a node is a player action
// (actions.go); this subsystem only burns down running timers.
package engine

import "magnate/internal/events"

// advanceResearch moves every started, uncompleted node one step closer
// to completion. Completion feeds the effect aggregator, so the cache is
// invalidated on every finish.
func (e *Engine) advanceResearch(tick uint64) {
	for _, n := range e.ledger.Research {
		if !n.Started || n.Completed {
			continue
		}
		n.RemainingTicks--
		if n.RemainingTicks > 0 {
			continue
		}
		n.RemainingTicks = 0
		n.Completed = true
		e.effects.Invalidate()
		e.eventLog.Record(tick, events.EventTypeResearchCompleted, n.ID,
			map[string]interface{}{"name": n.Name})
		e.logger.Event("RESEARCH_COMPLETED", n.ID, n.Name)
	}
}
