// Package engine - actions.go
// Player-initiated try-actions. Every monetized or gated action follows
// the same contract: validate preconditions, return false for expected
// failures (insufficient funds, unmet gates), mutate only on success.
// All of them run under the engine's execution context.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
	"magnate/internal/domain/rules"
	"magnate/internal/events"
)

// StartResearch begins a node: prerequisites complete, not already
// started, cost covered. Perk reductions shorten the timer at start.
func (e *Engine) StartResearch(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	n := l.FindResearch(id)
	if n == nil || n.Started || n.Completed {
		return false
	}
	for _, pre := range n.Prereqs {
		if !l.ResearchCompleted(pre) {
			return false
		}
	}
	if !l.Spend(n.Cost) {
		return false
	}

	duration := decimal.NewFromInt(int64(n.DurationTicks)).
		Mul(decimal.NewFromInt(1).Sub(rules.PerkResearchDurationReduction(l)))
	n.RemainingTicks = int(duration.Ceil().IntPart())
	if n.RemainingTicks < 1 {
		n.RemainingTicks = 1
	}
	n.Started = true

	e.eventLog.Record(l.TickCount, events.EventTypeResearchStarted, n.ID,
		map[string]interface{}{"name": n.Name, "ticks": n.RemainingTicks})
	return true
}

// HireWorker adds a worker of the given tier to a venture.
func (e *Engine) HireWorker(ventureID string, tier ledger.WorkerTier) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	v := l.FindVenture(ventureID)
	if v == nil || tier < ledger.TierRookie || tier > ledger.TierMaster {
		return false
	}
	if !l.Spend(rules.HireCost(tier)) {
		return false
	}

	w := &ledger.Worker{
		Name: fmt.Sprintf("Hire-%d", len(v.Workers)+1),
		Tier: tier,
	}
	v.Workers = append(v.Workers, w)

	e.eventLog.Record(l.TickCount, events.EventTypeWorkerHired, v.ID,
		map[string]interface{}{"tier": tier})
	return true
}

// UpgradeVenture raises a venture one level.
func (e *Engine) UpgradeVenture(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	v := l.FindVenture(id)
	if v == nil {
		return false
	}
	cost := rules.Discounted(rules.VentureUpgradeCost(v.Level), e.effects.UpgradeDiscount())
	if !l.Spend(cost) {
		return false
	}
	v.Level++

	e.eventLog.Record(l.TickCount, events.EventTypeVentureUpgraded, v.ID,
		map[string]interface{}{"level": v.Level})
	return true
}

// BuildStructure builds the facility or raises it one level. Structures
// feed the effect aggregator, so the cache is invalidated on success.
func (e *Engine) BuildStructure(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	spec, ok := rules.FindStructureSpec(id)
	if !ok {
		return false
	}

	existing := l.FindStructure(id)
	currentLevel := 0
	if existing != nil {
		currentLevel = existing.Level
	}
	if currentLevel >= spec.MaxLevel {
		return false
	}

	cost := rules.Discounted(spec.StructureCost(currentLevel), e.effects.UpgradeDiscount())
	if !l.Spend(cost) {
		return false
	}

	if existing == nil {
		l.Structures = append(l.Structures, &ledger.Structure{
			ID:          spec.ID,
			Name:        spec.Name,
			Level:       1,
			EffectKind:  spec.EffectKind,
			EffectValue: spec.EffectPerLevel,
		})
	} else {
		existing.Level++
	}

	e.effects.Invalidate()
	e.eventLog.Record(l.TickCount, events.EventTypeStructureBuilt, spec.ID,
		map[string]interface{}{"level": currentLevel + 1})
	return true
}

// BuyPermanentUpgrade spends prestige points on a shop entry. Purchases
// live in the prestige record and survive prestige resets.
func (e *Engine) BuyPermanentUpgrade(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	u, ok := rules.FindUpgrade(id)
	if !ok || l.HasUpgrade(id) || l.Prestige.PrestigePoints < u.Cost {
		return false
	}

	l.Prestige.PrestigePoints -= u.Cost
	l.Prestige.PurchasedUpgrades[id] = true

	e.effects.Invalidate()
	e.eventLog.Record(l.TickCount, events.EventTypeUpgradePurchased, id,
		map[string]interface{}{"cost": u.Cost})
	return true
}

// AcceptContract activates an available contract by id.
func (e *Engine) AcceptContract(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acceptContract(id)
}

// ClaimOffer claims a pending offer by id.
func (e *Engine) ClaimOffer(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.claimOffer(id)
}

// SetAutomation toggles a per-feature automation flag. The level gate is
// checked at dispatch time, not here, so flags can be pre-set.
func (e *Engine) SetAutomation(feature string, enabled bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	switch feature {
	case "collect":
		l.Automation.AutoCollect = enabled
	case "accept":
		l.Automation.AutoAccept = enabled
	case "assign":
		l.Automation.AutoAssign = enabled
	default:
		return false
	}

	e.eventLog.Record(l.TickCount, events.EventTypeAutomationToggled, feature,
		map[string]interface{}{"enabled": enabled})
	return true
}
