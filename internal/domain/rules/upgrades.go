// Package rules - upgrades.go
// Catalog of permanent upgrades purchasable with spendable prestige points.
// Purchases live in the prestige record and survive every prestige; only
// ascension clears them.
package rules

import (
	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
)

// PermanentUpgrade is one shop entry priced in prestige points.
type PermanentUpgrade struct {
	ID    string
	Name  string
	Cost  int64
	Kind  ledger.EffectKind
	Value decimal.Decimal
}

var permanentUpgrades = []PermanentUpgrade{
	{ID: "golden-ledger", Name: "Golden Ledger", Cost: 5,
		Kind: ledger.EffectIncomeBonus, Value: decimal.NewFromFloat(0.10)},
	{ID: "platinum-ledger", Name: "Platinum Ledger", Cost: 20,
		Kind: ledger.EffectIncomeBonus, Value: decimal.NewFromFloat(0.25)},
	{ID: "seed-capital", Name: "Seed Capital", Cost: 8,
		Kind: ledger.EffectStartMoney, Value: decimal.NewFromInt(2_500)},
	{ID: "angel-round", Name: "Angel Round", Cost: 30,
		Kind: ledger.EffectStartMoney, Value: decimal.NewFromInt(25_000)},
	{ID: "headhunter", Name: "Headhunter Contract", Cost: 15,
		Kind: ledger.EffectStartWorker, Value: decimal.NewFromInt(int64(ledger.TierSkilled))},
	{ID: "overdrive-clutch", Name: "Overdrive Clutch", Cost: 12,
		Kind: ledger.EffectRushBonus, Value: decimal.NewFromFloat(0.50)},
	{ID: "bulk-rates", Name: "Bulk Rates", Cost: 10,
		Kind: ledger.EffectUpgradeDiscount, Value: decimal.NewFromFloat(0.15)},
	{ID: "tight-books", Name: "Tight Books", Cost: 10,
		Kind: ledger.EffectCostReduction, Value: decimal.NewFromFloat(0.10)},
	{ID: "master-seal", Name: "Master Courier Seal", Cost: 40,
		Kind: ledger.EffectMasterBonus, Value: decimal.NewFromFloat(0.20)},
}

// PermanentUpgrades returns the full shop catalog.
func PermanentUpgrades() []PermanentUpgrade {
	return permanentUpgrades
}

// FindUpgrade returns the catalog entry for an id.
func FindUpgrade(id string) (PermanentUpgrade, bool) {
	for _, u := range permanentUpgrades {
		if u.ID == id {
			return u, true
		}
	}
	return PermanentUpgrade{}, false
}

// StartingMoney computes the post-reset balance: the base plus every
// purchased extra-start-money upgrade, scaled by the ascension perk.
func StartingMoney(l *ledger.Ledger) decimal.Decimal {
	start := ledger.BaseStartMoney
	for _, u := range permanentUpgrades {
		if u.Kind == ledger.EffectStartMoney && l.HasUpgrade(u.ID) {
			start = start.Add(u.Value)
		}
	}
	return start.Mul(PerkStartCapitalMultiplier(l))
}

// StartingWorkerTier picks the baseline worker tier after a reset: the best
// purchased starting-worker upgrade, or rookie.
func StartingWorkerTier(l *ledger.Ledger) ledger.WorkerTier {
	best := ledger.TierRookie
	for _, u := range permanentUpgrades {
		if u.Kind == ledger.EffectStartWorker && l.HasUpgrade(u.ID) {
			if t := ledger.WorkerTier(u.Value.IntPart()); t > best {
				best = t
			}
		}
	}
	return best
}
