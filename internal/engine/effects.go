// Package engine - effects.go
// The effect aggregator turns rarely-changing bonus sources (purchased
// permanent upgrades, completed research, built structures) into cached
// scalar values for the income pipeline. It is generation-counted: every
// mutation that should invalidate bumps the generation, and readers
// recompute lazily when their cached generation falls behind.
package engine

import (
	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
	"magnate/internal/domain/rules"
)

// Effects is the cached bonus aggregator. Not safe for concurrent use; it
// lives on the scheduler's execution context like the ledger itself.
type Effects struct {
	ledger *ledger.Ledger

	generation  uint64
	computedGen uint64
	recomputes  int

	incomeBonus        decimal.Decimal
	researchEfficiency decimal.Decimal
	costReduction      decimal.Decimal
	rushBonus          decimal.Decimal
	deliverySpeed      decimal.Decimal
	upgradeDiscount    decimal.Decimal
	masterBonus        decimal.Decimal
}

// NewEffects creates an aggregator over the ledger. The first getter call
// computes the cache.
func NewEffects(l *ledger.Ledger) *Effects {
	return &Effects{ledger: l, generation: 1}
}

// Invalidate marks the cache stale. Must be called after purchasing a
// permanent upgrade, completing research, building or upgrading a
// structure, and after both reset transitions.
func (e *Effects) Invalidate() {
	e.generation++
}

// Recomputes reports how many times the cache has actually been rebuilt.
func (e *Effects) Recomputes() int {
	return e.recomputes
}

// ensure rebuilds the cache when stale. Cost is O(purchased sources),
// never O(ticks).
func (e *Effects) ensure() {
	if e.computedGen == e.generation {
		return
	}

	income := decimal.Zero
	research := decimal.Zero
	costRed := decimal.Zero
	rush := decimal.Zero
	delivery := decimal.Zero
	discount := decimal.Zero
	master := decimal.Zero

	add := func(kind ledger.EffectKind, value decimal.Decimal) {
		switch kind {
		case ledger.EffectIncomeBonus:
			income = income.Add(value)
		case ledger.EffectCostReduction:
			costRed = costRed.Add(value)
		case ledger.EffectRushBonus:
			rush = rush.Add(value)
		case ledger.EffectDeliverySpeed:
			delivery = delivery.Add(value)
		case ledger.EffectUpgradeDiscount:
			discount = discount.Add(value)
		case ledger.EffectMasterBonus:
			master = master.Add(value)
		}
	}

	for _, u := range rules.PermanentUpgrades() {
		if !e.ledger.HasUpgrade(u.ID) {
			continue
		}
		add(u.Kind, u.Value)
	}

	// Research income effects feed the separately-capped efficiency layer,
	// not the permanent-upgrade layer.
	for _, n := range e.ledger.Research {
		if !n.Completed {
			continue
		}
		if n.EffectKind == ledger.EffectIncomeBonus {
			research = research.Add(n.EffectValue)
			continue
		}
		add(n.EffectKind, n.EffectValue)
	}

	for _, s := range e.ledger.Structures {
		levelValue := s.EffectValue.Mul(decimal.NewFromInt(int64(s.Level)))
		add(s.EffectKind, levelValue)
	}

	e.incomeBonus = income
	e.researchEfficiency = research
	e.costReduction = costRed
	e.rushBonus = rush
	e.deliverySpeed = delivery
	e.upgradeDiscount = discount
	e.masterBonus = master

	e.computedGen = e.generation
	e.recomputes++
}

// IncomeBonus is the summed permanent-upgrade (and structure) income bonus.
func (e *Effects) IncomeBonus() decimal.Decimal {
	e.ensure()
	return e.incomeBonus
}

// ResearchEfficiency is the summed research income bonus, uncapped here;
// the pipeline caps it at its own limit before combining.
func (e *Effects) ResearchEfficiency() decimal.Decimal {
	e.ensure()
	return e.researchEfficiency
}

// CostReduction is the summed running-cost reduction, uncapped here.
func (e *Effects) CostReduction() decimal.Decimal {
	e.ensure()
	return e.costReduction
}

// RushBonus raises the rush boost multiplier above its floor of 2.
func (e *Effects) RushBonus() decimal.Decimal {
	e.ensure()
	return e.rushBonus
}

// DeliverySpeedBonus shortens contract durations when accepted.
func (e *Effects) DeliverySpeedBonus() decimal.Decimal {
	e.ensure()
	return e.deliverySpeed
}

// UpgradeDiscount reduces venture upgrade and structure build costs.
func (e *Effects) UpgradeDiscount() decimal.Decimal {
	e.ensure()
	return e.upgradeDiscount
}

// MasterBonus is the passive bonus from rare collectible unlocks.
func (e *Effects) MasterBonus() decimal.Decimal {
	e.ensure()
	return e.masterBonus
}
