// Package engine - prestige.go
// The three-tier prestige ritual: lifetime earnings convert into permanent
// multipliers and spendable points, then the run is torn down to its
// baseline. What survives depends on the tier executed.
package engine

import (
	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
	"magnate/internal/domain/rules"
	"magnate/internal/events"
)

// CanPrestige re-evaluates the tier's gate live; nothing is cached.
func (e *Engine) CanPrestige(tier ledger.PrestigeTier) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rules.PrestigeGateOpen(e.ledger, tier)
}

// DoPrestige executes the ritual at the given tier. Returns false without
// any mutation when the gate is closed.
func (e *Engine) DoPrestige(tier ledger.PrestigeTier) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	params, ok := rules.PrestigeTierParams(tier)
	if !ok || !rules.PrestigeGateOpen(l, tier) {
		return false
	}

	points := rules.PrestigePoints(l.TotalMoneyEarned, tier)
	l.Prestige.PrestigePoints += points
	l.Prestige.TotalPrestigePoints += points
	l.Prestige.TierCounts[tier]++
	if tier > l.Prestige.HighestTier {
		l.Prestige.HighestTier = tier
	}

	// Permanent multiplier is rounded to 3 decimals at this defined point
	// and bounded by the same cap the load repair uses.
	mult := l.Prestige.PermanentMultiplier.Add(params.PermanentBonus).Round(3)
	if mult.GreaterThan(ledger.MaxPermanentMultiplier) {
		mult = ledger.MaxPermanentMultiplier
	}
	l.Prestige.PermanentMultiplier = mult

	e.resetRun(tier == ledger.PrestigeBronze)

	e.effects.Invalidate()
	e.saveLocked("prestige")
	e.eventLog.Record(l.TickCount, events.EventTypePrestigeExecuted, tier.String(),
		map[string]interface{}{
			"points":     points,
			"multiplier": l.Prestige.PermanentMultiplier,
			"count":      l.Prestige.TierCounts[tier],
		})
	e.logger.Event("PRESTIGE", tier.String(), "executed")
	return true
}

// resetRun tears the current run down to its post-reset baseline: the
// "always reset" set, with research wiped only when wipeResearch is true
// (Bronze). Everything not named here is left untouched, which is exactly
// the always-preserved contract: achievements, premium, settings,
// tutorial state, lifetime counters, creation timestamp, and both meta
// records survive by construction.
func (e *Engine) resetRun(wipeResearch bool) {
	l := e.ledger

	l.PlayerLevel = 1
	l.XP = 0
	l.Mood = 100
	l.Reputation = 0
	l.Money = rules.StartingMoney(l)
	l.Ventures = []*ledger.Venture{
		ledger.NewBaselineVenture(rules.StartingWorkerTier(l)),
	}
	l.Structures = nil
	l.ActiveContract = nil
	l.AvailableContracts = nil
	l.ContractCooldown = 0
	l.Offers = nil
	l.ActiveEvent = nil
	l.SpeedBoostTicks = 0
	l.RushBoostTicks = 0
	l.DailyStreak = 0

	if wipeResearch {
		for _, n := range l.Research {
			n.Started = false
			n.Completed = false
			n.RemainingTicks = 0
		}
	}
}

// CanAscend checks the ascension guard.
func (e *Engine) CanAscend() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rules.AscensionGateOpen(e.ledger)
}

// DoAscension executes the meta-reset above prestige. Returns false with
// no mutation unless the top prestige tier has been completed enough
// times. On success the entire prestige layer is zeroed (the lifetime
// point total alone survives) and the run reset is a superset of the
// prestige one.
func (e *Engine) DoAscension() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	if !rules.AscensionGateOpen(l) {
		return false
	}

	award := rules.AscensionPointAward(l.Ascension.Level)
	l.Ascension.Points += award
	l.Ascension.TotalPoints += award
	l.Ascension.Level++

	// Zero the prestige layer. TotalPrestigePoints is deliberately left
	// alone: lifetime counters fall only here, and this one not at all.
	l.Prestige.TierCounts = make(map[ledger.PrestigeTier]int)
	l.Prestige.HighestTier = ledger.PrestigeNone
	l.Prestige.PrestigePoints = 0
	l.Prestige.PermanentMultiplier = decimal.NewFromInt(1)
	l.Prestige.PurchasedUpgrades = make(map[string]bool)

	// Superset reset: everything prestige resets, research included,
	// plus the subsystems ordinary prestige never touches.
	e.resetRun(true)
	l.CraftingJobs = nil
	l.Equipment = nil
	l.Tools = make(map[string]int)
	l.Managers = nil
	l.PendingStory = nil
	l.LuckySpinCharges = 0
	l.TournamentScore = 0

	e.effects.Invalidate()
	e.saveLocked("ascension")
	e.eventLog.Record(l.TickCount, events.EventTypeAscensionExecuted, "ascension",
		map[string]interface{}{
			"level":  l.Ascension.Level,
			"award":  award,
			"points": l.Ascension.Points,
		})
	e.logger.Event("ASCENSION", "ascension", "executed")
	return true
}

// BuyPerk spends ascension points on one level of a perk. Insufficient
// points or a maxed perk are expected outcomes, not errors.
func (e *Engine) BuyPerk(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	current := l.PerkLevel(id)
	cost, ok := rules.PerkCost(id, current)
	if !ok || l.Ascension.Points < cost {
		return false
	}

	l.Ascension.Points -= cost
	l.Ascension.PerkLevels[id] = current + 1

	e.eventLog.Record(l.TickCount, events.EventTypePerkPurchased, id,
		map[string]interface{}{"level": current + 1, "cost": cost})
	return true
}
