// Package rules contains the pure calculation logic for game mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import "github.com/shopspring/decimal"

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)

	// GlobalIncomeCap bounds the effective combined income multiplier in a
	// single tick, measured against the unmodified base income.
	GlobalIncomeCap = decimal.NewFromInt(3)

	// ResearchEfficiencyCap bounds the research efficiency bonus on its
	// own, before combination with other sources.
	ResearchEfficiencyCap = decimal.NewFromFloat(0.50)

	// CostReductionCap bounds the summed cost-reduction sources.
	CostReductionCap = decimal.NewFromFloat(0.50)

	// GuildBonusCap bounds the guild income bonus as a single source.
	GuildBonusCap = decimal.NewFromFloat(0.25)
)

// TickInputs carries everything the per-tick income/cost calculation reads.
// All values are gathered before the calculation runs; the calculation
// itself touches no shared state.
type TickInputs struct {
	BaseIncome decimal.Decimal // Σ venture raw income per second
	BaseCost   decimal.Decimal // Σ venture running cost per second

	PermanentMultiplier decimal.Decimal // prestige record, >= 1.0
	UpgradeIncomeBonus  decimal.Decimal // Σ permanent-upgrade income bonuses
	ResearchEfficiency  decimal.Decimal // uncapped sum; capped here
	EventIncomeMul      decimal.Decimal // 1.0 when no event is active
	EventCostMul        decimal.Decimal // 1.0 when no event is active
	MasterBonus         decimal.Decimal // rare collectible passives
	GuildBonus          decimal.Decimal // uncapped input; capped here
	CostReduction       decimal.Decimal // uncapped sum; capped here

	SpeedBoost     bool
	RushBoost      bool
	RushMultiplier decimal.Decimal // >= 2
}

// TickResult is the outcome of one tick's economy resolution.
type TickResult struct {
	Gross  decimal.Decimal
	Costs  decimal.Decimal
	Net    decimal.Decimal // may be negative; the ledger clamps on apply
	Capped bool            // true when the global income cap engaged
}

// ResolveTick runs the income/cost pipeline in its fixed order:
// base income, permanent/upgrade/research/event/master/guild multipliers,
// global cap against the pre-multiplier base, cost reduction, event cost
// multiplier, then boosts on a positive net only.
func ResolveTick(in TickInputs) TickResult {
	base := in.BaseIncome
	gross := base

	gross = gross.Mul(in.PermanentMultiplier)
	gross = gross.Mul(one.Add(in.UpgradeIncomeBonus))
	gross = gross.Mul(one.Add(decimal.Min(in.ResearchEfficiency, ResearchEfficiencyCap)))
	gross = gross.Mul(in.EventIncomeMul)
	gross = gross.Mul(one.Add(in.MasterBonus))
	gross = gross.Mul(one.Add(decimal.Min(in.GuildBonus, GuildBonusCap)))

	// The cap is computed against the unmodified base, not the previous
	// step's output, so stacking can never compound past the ceiling.
	capped := false
	ceiling := base.Mul(GlobalIncomeCap)
	if base.Sign() > 0 && gross.GreaterThan(ceiling) {
		gross = ceiling
		capped = true
	}

	reduction := decimal.Min(in.CostReduction, CostReductionCap)
	costs := in.BaseCost.Mul(one.Sub(reduction)).Mul(in.EventCostMul)

	net := gross.Sub(costs)

	// Boosts never amplify a loss.
	if net.Sign() > 0 && in.SpeedBoost {
		net = net.Mul(two)
	}
	if net.Sign() > 0 && in.RushBoost {
		rush := in.RushMultiplier
		if rush.LessThan(two) {
			rush = two
		}
		net = net.Mul(rush)
	}

	return TickResult{Gross: gross, Costs: costs, Net: net, Capped: capped}
}
