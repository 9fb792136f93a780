// Package engine - automation.go
// Opt-in, level-gated periodic behaviors layered on the tick. All three
// are idempotent within a tick: re-invoking with no new eligible item is
// a no-op.
package engine

// automationUnlocked checks the per-feature flag and its player-level gate.
func (e *Engine) automationUnlocked(enabled bool, minLevel int) bool {
	return enabled && e.ledger.PlayerLevel >= minLevel
}

// runAutoCollectAccept claims every pending offer and, when no contract is
// active, accepts the available contract with the highest base reward.
// Collect and accept share one rate-table slot; assignment runs slower.
func (e *Engine) runAutoCollectAccept(tick uint64) {
	l := e.ledger

	if e.automationUnlocked(l.Automation.AutoCollect, e.profile.AutoCollectLevel) {
		// claimOffer mutates the slice; snapshot the ids first.
		ids := make([]string, 0, len(l.Offers))
		for _, o := range l.Offers {
			ids = append(ids, o.ID)
		}
		for _, id := range ids {
			e.claimOffer(id)
		}
	}

	if e.automationUnlocked(l.Automation.AutoAccept, e.profile.AutoAcceptLevel) {
		if l.ActiveContract == nil && len(l.AvailableContracts) > 0 {
			best := l.AvailableContracts[0]
			for _, c := range l.AvailableContracts[1:] {
				if c.Reward.GreaterThan(best.Reward) {
					best = c
				}
			}
			e.acceptContract(best.ID)
		}
	}
}

// runAutoAssign wakes idle workers whose accumulated fatigue has dropped
// below the rested threshold.
func (e *Engine) runAutoAssign(tick uint64) {
	l := e.ledger
	if !e.automationUnlocked(l.Automation.AutoAssign, e.profile.AutoAssignLevel) {
		return
	}
	for _, v := range l.Ventures {
		for _, w := range v.Workers {
			if w.Idle && w.Fatigue <= e.profile.FatigueRestedThresh {
				w.Idle = false
			}
		}
	}
}
