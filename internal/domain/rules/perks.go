// Package rules - perks.go
// Ascension perk catalog. Each perk has a per-level cost table and a value
// table; a perk at level N reads values[N-1]. Level 0 returns the perk's
// defined default.
package rules

import (
	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
)

// Perk is one entry in the ascension shop.
type Perk struct {
	ID       string
	Name     string
	MaxLevel int
	Costs    []int64           // Costs[level] = price to go level -> level+1
	Values   []decimal.Decimal // Values[level-1] = effect at that level
	Default  decimal.Decimal   // effect at level 0
}

const (
	PerkStartCapital      = "start-capital"
	PerkResearchDuration  = "research-duration"
	PerkFatigueResistance = "fatigue-resistance"
	PerkOfferFrequency    = "offer-frequency"
)

func dec(vals ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

var perks = []Perk{
	{
		ID: PerkStartCapital, Name: "Old Money",
		MaxLevel: 4,
		Costs:    []int64{1, 2, 3, 5},
		Values:   dec(1.5, 2.0, 3.0, 5.0),
		Default:  decimal.NewFromInt(1), // multiplier baseline
	},
	{
		ID: PerkResearchDuration, Name: "Night Shift Lab",
		MaxLevel: 3,
		Costs:    []int64{1, 3, 6},
		Values:   dec(0.10, 0.25, 0.40),
		Default:  decimal.Zero, // fraction of duration removed
	},
	{
		ID: PerkFatigueResistance, Name: "Iron Crew",
		MaxLevel: 3,
		Costs:    []int64{2, 4, 7},
		Values:   dec(0.25, 0.50, 0.75),
		Default:  decimal.Zero,
	},
	{
		ID: PerkOfferFrequency, Name: "Open Channels",
		MaxLevel: 2,
		Costs:    []int64{2, 5},
		Values:   dec(0.25, 0.50),
		Default:  decimal.Zero,
	},
}

// Perks returns the full ascension perk catalog.
func Perks() []Perk {
	return perks
}

// FindPerk returns the catalog entry for an id.
func FindPerk(id string) (Perk, bool) {
	for _, p := range perks {
		if p.ID == id {
			return p, true
		}
	}
	return Perk{}, false
}

// PerkCost returns the price to raise the perk from currentLevel, and ok
// false when the perk is unknown or already at max.
func PerkCost(id string, currentLevel int) (int64, bool) {
	p, ok := FindPerk(id)
	if !ok || currentLevel < 0 || currentLevel >= p.MaxLevel {
		return 0, false
	}
	return p.Costs[currentLevel], true
}

// perkValue resolves the effect for the ledger's stored level. The level-1
// indexing into the value table is part of the save-compat contract.
func perkValue(l *ledger.Ledger, id string) decimal.Decimal {
	p, ok := FindPerk(id)
	if !ok {
		return decimal.Zero
	}
	level := l.PerkLevel(id)
	if level <= 0 {
		return p.Default
	}
	if level > p.MaxLevel {
		level = p.MaxLevel
	}
	return p.Values[level-1]
}

// PerkStartCapitalMultiplier is the start-money multiplier after resets.
func PerkStartCapitalMultiplier(l *ledger.Ledger) decimal.Decimal {
	return perkValue(l, PerkStartCapital)
}

// PerkResearchDurationReduction is the fraction shaved off research time.
func PerkResearchDurationReduction(l *ledger.Ledger) decimal.Decimal {
	return perkValue(l, PerkResearchDuration)
}

// PerkFatigueResist is the fraction of fatigue accrual avoided.
func PerkFatigueResist(l *ledger.Ledger) decimal.Decimal {
	return perkValue(l, PerkFatigueResistance)
}

// PerkOfferFrequencyBonus raises how often offers are generated.
func PerkOfferFrequencyBonus(l *ledger.Ledger) decimal.Decimal {
	return perkValue(l, PerkOfferFrequency)
}
