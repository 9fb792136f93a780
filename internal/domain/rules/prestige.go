// Package rules - prestige.go
// Gate checks and point formulas for the prestige and ascension rituals.
package rules

import (
	"math"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
)

// TierParams holds the per-tier constants of the prestige ritual.
type TierParams struct {
	MinPlayerLevel  int
	MinLifetime     decimal.Decimal // minimum lifetime earnings
	PointMultiplier int64
	PermanentBonus  decimal.Decimal // added to the permanent multiplier
}

// prestigeTiers is keyed by tier; None has no entry and can never execute.
var prestigeTiers = map[ledger.PrestigeTier]TierParams{
	ledger.PrestigeBronze: {
		MinPlayerLevel:  20,
		MinLifetime:     decimal.NewFromInt(500_000),
		PointMultiplier: 1,
		PermanentBonus:  decimal.NewFromFloat(0.05),
	},
	ledger.PrestigeSilver: {
		MinPlayerLevel:  40,
		MinLifetime:     decimal.NewFromInt(5_000_000),
		PointMultiplier: 2,
		PermanentBonus:  decimal.NewFromFloat(0.125),
	},
	ledger.PrestigeGold: {
		MinPlayerLevel:  60,
		MinLifetime:     decimal.NewFromInt(50_000_000),
		PointMultiplier: 3,
		PermanentBonus:  decimal.NewFromFloat(0.25),
	},
}

// PrestigeTierParams returns the constants for a tier; ok is false for None
// or an unknown tier.
func PrestigeTierParams(tier ledger.PrestigeTier) (TierParams, bool) {
	p, ok := prestigeTiers[tier]
	return p, ok
}

// PrestigeGateOpen re-evaluates the tier's gate live against the ledger.
func PrestigeGateOpen(l *ledger.Ledger, tier ledger.PrestigeTier) bool {
	p, ok := prestigeTiers[tier]
	if !ok {
		return false
	}
	return l.PlayerLevel >= p.MinPlayerLevel &&
		l.TotalMoneyEarned.GreaterThanOrEqual(p.MinLifetime)
}

// pointDivisor converts lifetime earnings into the sqrt domain.
var pointDivisor = decimal.NewFromInt(100_000)

// PrestigePoints computes floor(sqrt(lifetime/100k)) * tierPointMultiplier.
// The sqrt runs on a float64 projection; the result is an integer point
// count, so no currency precision is lost.
func PrestigePoints(totalEarned decimal.Decimal, tier ledger.PrestigeTier) int64 {
	p, ok := prestigeTiers[tier]
	if !ok {
		return 0
	}
	scaled := totalEarned.Div(pointDivisor).InexactFloat64()
	if scaled < 0 {
		scaled = 0
	}
	return int64(math.Floor(math.Sqrt(scaled))) * p.PointMultiplier
}

// AscensionGateCompletions is how many top-tier prestiges unlock ascension.
const AscensionGateCompletions = 3

// AscensionGateOpen checks the ascension guard: the top prestige tier must
// have been completed at least AscensionGateCompletions times.
func AscensionGateOpen(l *ledger.Ledger) bool {
	return l.Prestige.TierCounts[ledger.PrestigeGold] >= AscensionGateCompletions
}

// AscensionPointAward is the point grant for one ascension at the given
// pre-ascension level: 1 + floor(level/2).
func AscensionPointAward(currentLevel int) int64 {
	return int64(1 + currentLevel/2)
}
