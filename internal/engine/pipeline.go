// Package engine - pipeline.go
// Per-tick economy resolution: gathers inputs from the ledger and the
// effect aggregator, resolves the income/cost calculation, applies the
// result, and attributes realized income for statistics.
package engine

import (
	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
	"magnate/internal/domain/rules"
	"magnate/internal/events"
)

// Observation is the per-tick payload emitted for presentation layers.
type Observation struct {
	Tick           uint64          `json:"tick"`
	Net            decimal.Decimal `json:"net"`
	Money          decimal.Decimal `json:"money"`
	SessionSeconds int64           `json:"session_seconds"`
	Capped         bool            `json:"capped"`
}

// runPipeline executes one tick of the economy against the ledger.
// Caller is the engine's single execution context.
func (e *Engine) runPipeline() rules.TickResult {
	l := e.ledger

	baseIncome := decimal.Zero
	baseCost := decimal.Zero
	for _, v := range l.Ventures {
		baseIncome = baseIncome.Add(ventureContribution(v))
		baseCost = baseCost.Add(v.RunningCostPerSec)
	}

	eventIncomeMul := decimal.NewFromInt(1)
	eventCostMul := decimal.NewFromInt(1)
	if l.EventActiveAt(l.TickCount) {
		eventIncomeMul = l.ActiveEvent.IncomeMul
		eventCostMul = l.ActiveEvent.CostMul
	}

	result := rules.ResolveTick(rules.TickInputs{
		BaseIncome:          baseIncome,
		BaseCost:            baseCost,
		PermanentMultiplier: l.Prestige.PermanentMultiplier,
		UpgradeIncomeBonus:  e.effects.IncomeBonus(),
		ResearchEfficiency:  e.effects.ResearchEfficiency(),
		EventIncomeMul:      eventIncomeMul,
		EventCostMul:        eventCostMul,
		MasterBonus:         e.effects.MasterBonus(),
		GuildBonus:          e.guildBonus,
		CostReduction:       e.effects.CostReduction(),
		SpeedBoost:          l.SpeedBoostTicks > 0,
		RushBoost:           l.RushBoostTicks > 0,
		RushMultiplier:      l.RushMultiplier.Add(e.effects.RushBonus()),
	})

	l.Credit(result.Net)
	attributeIncome(l, baseIncome)

	return result
}

// ventureContribution is the venture's raw income for this tick: the base
// scaled by level and the weight of its awake workers. A venture with no
// workers at all still produces its base.
func ventureContribution(v *ledger.Venture) decimal.Decimal {
	if len(v.Workers) == 0 {
		return v.IncomePerSec()
	}
	weight := int64(0)
	for _, w := range v.Workers {
		if !w.Idle {
			weight += w.Weight()
		}
	}
	return v.IncomePerSec().Mul(decimal.NewFromInt(weight))
}

// attributeIncome credits each venture and worker with its proportional
// share of the tick's raw production, for statistics only. Deliberately
// independent of the global income cap.
func attributeIncome(l *ledger.Ledger, totalRaw decimal.Decimal) {
	if totalRaw.Sign() <= 0 {
		return
	}
	for _, v := range l.Ventures {
		raw := ventureContribution(v)
		if raw.Sign() <= 0 {
			continue
		}
		v.RealizedIncome = v.RealizedIncome.Add(raw)

		weight := int64(0)
		for _, w := range v.Workers {
			if !w.Idle {
				weight += w.Weight()
			}
		}
		if weight == 0 {
			continue
		}
		per := raw.Div(decimal.NewFromInt(weight))
		for _, w := range v.Workers {
			if !w.Idle {
				w.EarnedTotal = w.EarnedTotal.Add(per.Mul(decimal.NewFromInt(w.Weight())))
			}
		}
	}
}

// advanceTimers runs the cheap per-tick countdowns: boosts, contract
// progress and cooldown, and worker fatigue. Part of the same atomic tick
// as the pipeline.
func (e *Engine) advanceTimers() {
	l := e.ledger

	if l.SpeedBoostTicks > 0 {
		l.SpeedBoostTicks--
	}
	if l.RushBoostTicks > 0 {
		l.RushBoostTicks--
	}
	if l.ContractCooldown > 0 {
		l.ContractCooldown--
	}

	if l.ActiveContract != nil {
		l.ActiveContract.RemainingTicks--
		if l.ActiveContract.RemainingTicks <= 0 {
			e.completeContract()
		}
	}

	e.advanceFatigue()
}

// advanceFatigue accrues fatigue on awake workers and rests idle ones.
// Exhausted workers drop to idle on their own.
func (e *Engine) advanceFatigue() {
	accrual := e.profile.FatiguePerTick
	resist := rules.PerkFatigueResist(e.ledger)
	if resist.Sign() > 0 {
		reduced := decimal.NewFromInt(int64(accrual)).
			Mul(decimal.NewFromInt(1).Sub(resist))
		accrual = int(reduced.Ceil().IntPart())
	}

	for _, v := range e.ledger.Ventures {
		for _, w := range v.Workers {
			if w.Idle {
				w.Fatigue -= e.profile.FatigueRestPerTick
				if w.Fatigue < 0 {
					w.Fatigue = 0
				}
				continue
			}
			w.Fatigue += accrual
			if w.Fatigue >= 100 {
				w.Fatigue = 100
				w.Idle = true
			}
		}
	}
}

// completeContract pays out the active contract and queues the social
// contribution for the next submission window.
func (e *Engine) completeContract() {
	l := e.ledger
	c := l.ActiveContract
	l.ActiveContract = nil
	l.ContractCooldown = e.profile.ContractCooldown

	l.Credit(c.Reward)
	e.gainXP(c.XP)
	l.Reputation++
	e.pendingContribution.Add(contractContributionPoints)

	e.eventLog.Record(l.TickCount, events.EventTypeContractCompleted, c.ID, map[string]interface{}{
		"name":   c.Name,
		"reward": c.Reward,
		"xp":     c.XP,
	})
}
