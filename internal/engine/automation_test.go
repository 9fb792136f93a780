package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
)

func TestAutoCollectGatedByPlayerLevel(t *testing.T) {
	e, l := newTestEngine(t)
	l.Automation.AutoCollect = true
	l.Offers = append(l.Offers, &ledger.Offer{
		ID: "o1", Kind: ledger.OfferCash,
		Amount: decimal.NewFromInt(100), ExpiresTick: 1_000,
	})

	l.PlayerLevel = e.profile.AutoCollectLevel - 1
	e.runAutoCollectAccept(1)
	if len(l.Offers) != 1 {
		t.Fatal("automation must stay dormant below its level gate")
	}

	l.PlayerLevel = e.profile.AutoCollectLevel
	before := l.Money
	e.runAutoCollectAccept(2)
	if len(l.Offers) != 0 {
		t.Error("auto-collect should claim every pending offer")
	}
	if !l.Money.Equal(before.Add(decimal.NewFromInt(100))) {
		t.Errorf("claimed cash should credit, money %s", l.Money)
	}
}

func TestAutoAcceptPicksHighestReward(t *testing.T) {
	e, l := newTestEngine(t)
	l.Automation.AutoAccept = true
	l.PlayerLevel = e.profile.AutoAcceptLevel
	l.AvailableContracts = []*ledger.Contract{
		{ID: "small", Reward: decimal.NewFromInt(100), DurationTicks: 10},
		{ID: "big", Reward: decimal.NewFromInt(900), DurationTicks: 10},
		{ID: "mid", Reward: decimal.NewFromInt(400), DurationTicks: 10},
	}

	e.runAutoCollectAccept(1)

	if l.ActiveContract == nil || l.ActiveContract.ID != "big" {
		t.Fatal("auto-accept should take the richest contract")
	}

	// With a contract active, re-running must not touch the pool.
	e.runAutoCollectAccept(2)
	if len(l.AvailableContracts) != 2 {
		t.Errorf("pool should keep the two remaining contracts, got %d", len(l.AvailableContracts))
	}
}

func TestAutoAssignWakesRestedWorkersOnly(t *testing.T) {
	e, l := newTestEngine(t)
	l.Automation.AutoAssign = true
	l.PlayerLevel = e.profile.AutoAssignLevel

	rested := &ledger.Worker{Name: "Rested", Tier: ledger.TierRookie,
		Idle: true, Fatigue: e.profile.FatigueRestedThresh}
	tired := &ledger.Worker{Name: "Tired", Tier: ledger.TierRookie,
		Idle: true, Fatigue: e.profile.FatigueRestedThresh + 1}
	l.Ventures[0].Workers = append(l.Ventures[0].Workers, rested, tired)

	e.runAutoAssign(1)

	if rested.Idle {
		t.Error("a rested worker should be reassigned")
	}
	if !tired.Idle {
		t.Error("a still-tired worker must stay idle")
	}
}
