// Package rules - structures.go
// Catalog of buildable facilities and the cost curves for ventures,
// workers, and structure levels.
package rules

import (
	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
)

// StructureSpec is one buildable facility.
type StructureSpec struct {
	ID             string
	Name           string
	BaseCost       decimal.Decimal
	CostGrowth     decimal.Decimal // multiplier per built level
	MaxLevel       int
	EffectKind     ledger.EffectKind
	EffectPerLevel decimal.Decimal
}

var structures = []StructureSpec{
	{ID: "warehouse", Name: "Warehouse",
		BaseCost: decimal.NewFromInt(5_000), CostGrowth: decimal.NewFromFloat(1.6),
		MaxLevel: 5, EffectKind: ledger.EffectIncomeBonus, EffectPerLevel: decimal.NewFromFloat(0.04)},
	{ID: "depot", Name: "Fuel Depot",
		BaseCost: decimal.NewFromInt(8_000), CostGrowth: decimal.NewFromFloat(1.5),
		MaxLevel: 5, EffectKind: ledger.EffectCostReduction, EffectPerLevel: decimal.NewFromFloat(0.03)},
	{ID: "dispatch-tower", Name: "Dispatch Tower",
		BaseCost: decimal.NewFromInt(20_000), CostGrowth: decimal.NewFromFloat(1.8),
		MaxLevel: 3, EffectKind: ledger.EffectDeliverySpeed, EffectPerLevel: decimal.NewFromFloat(0.05)},
}

// Structures returns the buildable catalog.
func Structures() []StructureSpec {
	return structures
}

// FindStructureSpec returns the catalog entry for an id.
func FindStructureSpec(id string) (StructureSpec, bool) {
	for _, s := range structures {
		if s.ID == id {
			return s, true
		}
	}
	return StructureSpec{}, false
}

// StructureCost is the price of raising the structure to currentLevel+1.
func (s StructureSpec) StructureCost(currentLevel int) decimal.Decimal {
	return s.BaseCost.Mul(s.CostGrowth.Pow(decimal.NewFromInt(int64(currentLevel))))
}

// HireCost is the price of one worker at the given tier.
func HireCost(tier ledger.WorkerTier) decimal.Decimal {
	t := decimal.NewFromInt(int64(tier))
	return decimal.NewFromInt(500).Mul(t).Mul(t)
}

// VentureUpgradeCost is the price of raising a venture past its level.
func VentureUpgradeCost(level int) decimal.Decimal {
	lv := decimal.NewFromInt(int64(level))
	return decimal.NewFromInt(1_000).Mul(lv).Mul(lv)
}

// Discounted applies an upgrade-discount fraction to a cost.
func Discounted(cost, discount decimal.Decimal) decimal.Decimal {
	if discount.Sign() <= 0 {
		return cost
	}
	return cost.Mul(decimal.NewFromInt(1).Sub(discount))
}
