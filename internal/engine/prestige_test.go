package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
	"magnate/internal/domain/rules"
)

// qualifyFor raises the ledger past the given tier's gate.
func qualifyFor(l *ledger.Ledger, tier ledger.PrestigeTier) {
	switch tier {
	case ledger.PrestigeBronze:
		l.PlayerLevel = 20
		l.TotalMoneyEarned = decimal.NewFromInt(500_000)
	case ledger.PrestigeSilver:
		l.PlayerLevel = 40
		l.TotalMoneyEarned = decimal.NewFromInt(5_000_000)
	case ledger.PrestigeGold:
		l.PlayerLevel = 60
		l.TotalMoneyEarned = decimal.NewFromInt(50_000_000)
	}
}

func TestPrestigeClosedGateMutatesNothing(t *testing.T) {
	e, l := newTestEngine(t)
	l.Money = decimal.NewFromInt(12_345)
	l.PlayerLevel = 19 // one short of the Bronze gate
	l.TotalMoneyEarned = decimal.NewFromInt(500_000)

	if e.DoPrestige(ledger.PrestigeBronze) {
		t.Fatal("gate must stay closed below the level requirement")
	}
	if !l.Money.Equal(decimal.NewFromInt(12_345)) || l.PlayerLevel != 19 {
		t.Error("a refused prestige must leave the ledger untouched")
	}
	if l.Prestige.PrestigePoints != 0 {
		t.Errorf("no points on refusal, got %d", l.Prestige.PrestigePoints)
	}
}

func TestBronzePrestigeAwardsAndResets(t *testing.T) {
	e, l := newTestEngine(t)
	qualifyFor(l, ledger.PrestigeBronze)
	l.Money = decimal.NewFromInt(99_999)
	l.Structures = append(l.Structures, &ledger.Structure{ID: "warehouse", Level: 2})
	l.FindResearch("logistics-1").Completed = true

	if !e.DoPrestige(ledger.PrestigeBronze) {
		t.Fatal("Bronze gate should be open at level 20 with 500k lifetime")
	}

	// sqrt(500000/100000) = sqrt(5) -> 2 points at the x1 Bronze rate.
	if l.Prestige.PrestigePoints != 2 {
		t.Errorf("expected 2 prestige points, got %d", l.Prestige.PrestigePoints)
	}
	if want := decimal.NewFromFloat(1.05); !l.Prestige.PermanentMultiplier.Equal(want) {
		t.Errorf("expected multiplier %s, got %s", want, l.Prestige.PermanentMultiplier)
	}
	if l.Prestige.TierCounts[ledger.PrestigeBronze] != 1 {
		t.Errorf("tier count should be 1, got %d", l.Prestige.TierCounts[ledger.PrestigeBronze])
	}
	if l.Prestige.HighestTier != ledger.PrestigeBronze {
		t.Errorf("highest tier should advance, got %v", l.Prestige.HighestTier)
	}

	// Run torn down.
	if l.PlayerLevel != 1 || l.XP != 0 {
		t.Errorf("level/xp should reset, got %d/%d", l.PlayerLevel, l.XP)
	}
	if !l.Money.Equal(ledger.BaseStartMoney) {
		t.Errorf("money should reset to starting money, got %s", l.Money)
	}
	if len(l.Structures) != 0 {
		t.Error("structures should be demolished")
	}
	if l.FindResearch("logistics-1").Completed {
		t.Error("Bronze must wipe completed research")
	}

	// Lifetime counters survive.
	if !l.TotalMoneyEarned.Equal(decimal.NewFromInt(500_000)) {
		t.Errorf("lifetime earnings must survive, got %s", l.TotalMoneyEarned)
	}
}

func TestSilverPrestigePreservesResearch(t *testing.T) {
	e, l := newTestEngine(t)
	qualifyFor(l, ledger.PrestigeSilver)
	l.FindResearch("logistics-1").Completed = true

	if !e.DoPrestige(ledger.PrestigeSilver) {
		t.Fatal("Silver gate should be open")
	}
	if !l.FindResearch("logistics-1").Completed {
		t.Error("Silver and Gold keep completed research")
	}
}

func TestPermanentMultiplierCapped(t *testing.T) {
	e, l := newTestEngine(t)
	qualifyFor(l, ledger.PrestigeGold)
	l.Prestige.PermanentMultiplier = decimal.NewFromFloat(19.9)

	if !e.DoPrestige(ledger.PrestigeGold) {
		t.Fatal("Gold gate should be open")
	}
	if !l.Prestige.PermanentMultiplier.Equal(ledger.MaxPermanentMultiplier) {
		t.Errorf("multiplier must cap at %s, got %s",
			ledger.MaxPermanentMultiplier, l.Prestige.PermanentMultiplier)
	}
}

func TestStartingMoneyHonorsSeedCapital(t *testing.T) {
	e, l := newTestEngine(t)
	qualifyFor(l, ledger.PrestigeBronze)
	l.Prestige.PurchasedUpgrades["seed-capital"] = true

	if !e.DoPrestige(ledger.PrestigeBronze) {
		t.Fatal("Bronze gate should be open")
	}
	want := ledger.BaseStartMoney.Add(decimal.NewFromInt(2_500))
	if !l.Money.Equal(want) {
		t.Errorf("expected post-reset money %s, got %s", want, l.Money)
	}
}

func TestAscensionGateNeedsThreeGoldRuns(t *testing.T) {
	e, l := newTestEngine(t)
	l.Prestige.TierCounts[ledger.PrestigeGold] = 2
	l.Prestige.TierCounts[ledger.PrestigeSilver] = 10

	if e.CanAscend() {
		t.Error("two Gold runs must not open the gate, however many Silvers")
	}
	if e.DoAscension() {
		t.Error("DoAscension must refuse while the gate is closed")
	}

	l.Prestige.TierCounts[ledger.PrestigeGold] = rules.AscensionGateCompletions
	if !e.CanAscend() {
		t.Error("three Gold runs should open the gate")
	}
}

func TestAscensionZeroesPrestigeLayer(t *testing.T) {
	e, l := newTestEngine(t)
	l.Prestige.TierCounts[ledger.PrestigeGold] = 3
	l.Prestige.PrestigePoints = 42
	l.Prestige.TotalPrestigePoints = 99
	l.Prestige.PermanentMultiplier = decimal.NewFromFloat(4.5)
	l.Prestige.PurchasedUpgrades["golden-ledger"] = true
	l.Prestige.HighestTier = ledger.PrestigeGold
	l.FindResearch("logistics-1").Completed = true

	if !e.DoAscension() {
		t.Fatal("ascension should execute with three Gold runs")
	}

	if l.Prestige.PrestigePoints != 0 {
		t.Errorf("spendable points must be zeroed, got %d", l.Prestige.PrestigePoints)
	}
	if l.Prestige.TotalPrestigePoints != 99 {
		t.Errorf("lifetime prestige points must survive, got %d", l.Prestige.TotalPrestigePoints)
	}
	if !l.Prestige.PermanentMultiplier.Equal(decimal.NewFromInt(1)) {
		t.Errorf("multiplier must return to 1, got %s", l.Prestige.PermanentMultiplier)
	}
	if len(l.Prestige.PurchasedUpgrades) != 0 {
		t.Error("purchased upgrades must be wiped")
	}
	if l.Prestige.HighestTier != ledger.PrestigeNone {
		t.Errorf("highest tier must clear, got %v", l.Prestige.HighestTier)
	}
	if l.FindResearch("logistics-1").Completed {
		t.Error("ascension wipes research regardless of tier")
	}

	if l.Ascension.Level != 1 {
		t.Errorf("ascension level should be 1, got %d", l.Ascension.Level)
	}
	// First ascension from level 0 awards 1 + floor(0/2) = 1 point.
	if l.Ascension.Points != 1 {
		t.Errorf("expected 1 ascension point, got %d", l.Ascension.Points)
	}
}

func TestBuyPerkSpendsPointsAndLevels(t *testing.T) {
	e, l := newTestEngine(t)
	l.Ascension.Points = 3

	if !e.BuyPerk(rules.PerkStartCapital) { // level 0 -> 1 costs 1
		t.Fatal("first perk level should be affordable")
	}
	if l.PerkLevel(rules.PerkStartCapital) != 1 || l.Ascension.Points != 2 {
		t.Errorf("expected level 1 with 2 points left, got level %d points %d",
			l.PerkLevel(rules.PerkStartCapital), l.Ascension.Points)
	}

	if !e.BuyPerk(rules.PerkStartCapital) { // level 1 -> 2 costs 2
		t.Fatal("second perk level should be affordable")
	}
	if e.BuyPerk(rules.PerkStartCapital) { // level 2 -> 3 costs 3, only 0 left
		t.Error("purchase must refuse when points run out")
	}

	if e.BuyPerk("no-such-perk") {
		t.Error("unknown perks must refuse")
	}
}
