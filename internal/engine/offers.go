// Package engine - offers.go
// Time-limited offers, contract generation, and the market event roll.
// All three run off the rate table at their own cadence.
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
	"magnate/internal/domain/rules"
	"magnate/internal/events"
)

// marketEventTemplates is the roll table for timed market events.
var marketEventTemplates = []ledger.TimedEvent{
	{Name: "Shipping Boom", IncomeMul: decimal.NewFromFloat(1.5), CostMul: decimal.NewFromInt(1)},
	{Name: "Fuel Crisis", IncomeMul: decimal.NewFromInt(1), CostMul: decimal.NewFromFloat(1.5)},
	{Name: "Harbor Festival", IncomeMul: decimal.NewFromFloat(1.25), CostMul: decimal.NewFromFloat(0.9)},
	{Name: "Cold Snap", IncomeMul: decimal.NewFromFloat(0.8), CostMul: decimal.NewFromFloat(1.2)},
}

// checkMarketEvents expires the active event, sweeps expired offers, and
// occasionally rolls a new event.
func (e *Engine) checkMarketEvents(tick uint64) {
	l := e.ledger

	if l.ActiveEvent != nil && tick >= l.ActiveEvent.ExpiresTick {
		e.eventLog.Record(tick, events.EventTypeMarketEventEnded, l.ActiveEvent.ID,
			map[string]interface{}{"name": l.ActiveEvent.Name})
		l.ActiveEvent = nil
	}

	e.sweepExpiredOffers(tick)

	if l.ActiveEvent == nil && e.rng.Intn(100) < e.profile.EventChancePercent {
		tmpl := marketEventTemplates[e.rng.Intn(len(marketEventTemplates))]
		l.ActiveEvent = &ledger.TimedEvent{
			ID:          uuid.NewString(),
			Name:        tmpl.Name,
			IncomeMul:   tmpl.IncomeMul,
			CostMul:     tmpl.CostMul,
			StartedTick: tick,
			ExpiresTick: tick + uint64(e.profile.EventDurationTicks),
		}
		e.eventLog.Record(tick, events.EventTypeMarketEventStarted, l.ActiveEvent.ID,
			map[string]interface{}{"name": tmpl.Name})
		e.logger.Event("MARKET_EVENT", l.ActiveEvent.ID, tmpl.Name)
	}
}

// sweepExpiredOffers drops offers whose window has closed. Each drop is
// recorded so the claim-exactly-once contract stays auditable.
func (e *Engine) sweepExpiredOffers(tick uint64) {
	l := e.ledger
	kept := l.Offers[:0]
	for _, o := range l.Offers {
		if tick >= o.ExpiresTick {
			e.eventLog.Record(tick, events.EventTypeOfferExpired, o.ID, nil)
			continue
		}
		kept = append(kept, o)
	}
	l.Offers = kept
}

// generateOffers spawns pending time-limited offers up to the profile
// ceiling. The offer-frequency perk gives a chance at a second spawn in
// the same window.
func (e *Engine) generateOffers(tick uint64) {
	e.spawnOffer(tick)

	bonus := rules.PerkOfferFrequencyBonus(e.ledger)
	if bonus.Sign() > 0 {
		threshold := bonus.Mul(decimal.NewFromInt(100)).IntPart()
		if int64(e.rng.Intn(100)) < threshold {
			e.spawnOffer(tick)
		}
	}
}

func (e *Engine) spawnOffer(tick uint64) {
	l := e.ledger
	if len(l.Offers) >= e.profile.MaxPendingOffers {
		return
	}

	kinds := []ledger.OfferKind{
		ledger.OfferCash, ledger.OfferCash, ledger.OfferXP,
		ledger.OfferMood, ledger.OfferPremium, ledger.OfferSpeedBoost,
	}
	kind := kinds[e.rng.Intn(len(kinds))]

	var amount decimal.Decimal
	switch kind {
	case ledger.OfferCash:
		amount = decimal.NewFromInt(int64(50 + e.rng.Intn(150)*l.PlayerLevel))
	case ledger.OfferPremium:
		amount = decimal.NewFromInt(int64(1 + e.rng.Intn(3)))
	case ledger.OfferXP:
		amount = decimal.NewFromInt(int64(20 + e.rng.Intn(30)))
	case ledger.OfferMood:
		amount = decimal.NewFromInt(int64(5 + e.rng.Intn(10)))
	case ledger.OfferSpeedBoost:
		amount = decimal.NewFromInt(int64(e.profile.BoostDurationTicks))
	}

	offer := &ledger.Offer{
		ID:          uuid.NewString(),
		Kind:        kind,
		Amount:      amount,
		ExpiresTick: tick + uint64(e.profile.OfferTTLTicks),
	}
	l.Offers = append(l.Offers, offer)
	e.eventLog.Record(tick, events.EventTypeOfferSpawned, offer.ID,
		map[string]interface{}{"kind": kind, "amount": amount})
}

// claimOffer applies an offer's effect exactly once and removes the
// instance. Returns false when the id is unknown (already claimed or
// expired).
func (e *Engine) claimOffer(id string) bool {
	l := e.ledger
	idx := -1
	for i, o := range l.Offers {
		if o.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	o := l.Offers[idx]
	l.Offers = append(l.Offers[:idx], l.Offers[idx+1:]...)

	switch o.Kind {
	case ledger.OfferCash:
		l.Credit(o.Amount)
	case ledger.OfferPremium:
		l.PremiumCurrency += o.Amount.IntPart()
	case ledger.OfferXP:
		e.gainXP(o.Amount.IntPart())
	case ledger.OfferMood:
		l.Mood += int(o.Amount.IntPart())
		if l.Mood > 100 {
			l.Mood = 100
		}
	case ledger.OfferSpeedBoost:
		l.SpeedBoostTicks += int(o.Amount.IntPart())
	}

	e.eventLog.Record(l.TickCount, events.EventTypeOfferClaimed, o.ID,
		map[string]interface{}{"kind": o.Kind, "amount": o.Amount})
	return true
}

// generateContracts refills the available pool once the cooldown from the
// last completion has elapsed.
func (e *Engine) generateContracts(tick uint64) {
	l := e.ledger
	if l.ContractCooldown > 0 {
		return
	}
	for len(l.AvailableContracts) < e.profile.MaxOpenContracts {
		reward := decimal.NewFromInt(int64((200 + e.rng.Intn(400)) * l.PlayerLevel))
		c := &ledger.Contract{
			ID:            uuid.NewString(),
			Name:          fmt.Sprintf("Freight Order #%d", e.rng.Intn(9000)+1000),
			Reward:        reward,
			XP:            int64(30 + e.rng.Intn(40)),
			DurationTicks: 30 + e.rng.Intn(60),
		}
		l.AvailableContracts = append(l.AvailableContracts, c)
	}
}

// acceptContract activates an available contract. Delivery-speed bonuses
// shorten the duration at acceptance time.
func (e *Engine) acceptContract(id string) bool {
	l := e.ledger
	if l.ActiveContract != nil {
		return false
	}
	idx := -1
	for i, c := range l.AvailableContracts {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	c := l.AvailableContracts[idx]
	l.AvailableContracts = append(l.AvailableContracts[:idx], l.AvailableContracts[idx+1:]...)

	duration := decimal.NewFromInt(int64(c.DurationTicks)).
		Mul(decimal.NewFromInt(1).Sub(e.effects.DeliverySpeedBonus()))
	c.RemainingTicks = int(duration.Ceil().IntPart())
	if c.RemainingTicks < 1 {
		c.RemainingTicks = 1
	}
	l.ActiveContract = c

	e.eventLog.Record(l.TickCount, events.EventTypeContractAccepted, c.ID,
		map[string]interface{}{"name": c.Name, "reward": c.Reward})
	return true
}
