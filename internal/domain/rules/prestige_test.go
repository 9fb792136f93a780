package rules

import (
	"testing"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
)

func TestPrestigeGateRequiresBothConditions(t *testing.T) {
	l := ledger.New()
	l.PlayerLevel = 20
	l.TotalMoneyEarned = decimal.NewFromInt(499_999)

	if PrestigeGateOpen(l, ledger.PrestigeBronze) {
		t.Error("gate must stay closed below the lifetime threshold")
	}

	l.TotalMoneyEarned = decimal.NewFromInt(500_000)
	if !PrestigeGateOpen(l, ledger.PrestigeBronze) {
		t.Error("gate should open at level 20 with 500k lifetime")
	}

	l.PlayerLevel = 19
	if PrestigeGateOpen(l, ledger.PrestigeBronze) {
		t.Error("gate must stay closed below the level threshold")
	}
}

func TestPrestigeGateNoneNeverOpens(t *testing.T) {
	l := ledger.New()
	l.PlayerLevel = 100
	l.TotalMoneyEarned = decimal.NewFromInt(1_000_000_000)

	if PrestigeGateOpen(l, ledger.PrestigeNone) {
		t.Error("the None tier has no gate and can never execute")
	}
}

func TestPrestigePointsFormula(t *testing.T) {
	cases := []struct {
		lifetime int64
		tier     ledger.PrestigeTier
		want     int64
	}{
		{500_000, ledger.PrestigeBronze, 2},     // floor(sqrt(5)) = 2
		{10_000_000, ledger.PrestigeBronze, 10}, // floor(sqrt(100)) = 10
		{10_000_000, ledger.PrestigeSilver, 20},
		{10_000_000, ledger.PrestigeGold, 30},
		{50_000, ledger.PrestigeBronze, 0}, // below one point
	}

	for _, c := range cases {
		got := PrestigePoints(decimal.NewFromInt(c.lifetime), c.tier)
		if got != c.want {
			t.Errorf("PrestigePoints(%d, %v) = %d, want %d", c.lifetime, c.tier, got, c.want)
		}
	}
}

func TestPrestigePointsNegativeLifetime(t *testing.T) {
	if got := PrestigePoints(decimal.NewFromInt(-100), ledger.PrestigeBronze); got != 0 {
		t.Errorf("negative lifetime should yield 0 points, got %d", got)
	}
}

func TestAscensionGate(t *testing.T) {
	l := ledger.New()
	l.Prestige.TierCounts[ledger.PrestigeGold] = 2

	if AscensionGateOpen(l) {
		t.Error("ascension gate must need 3 gold completions")
	}

	l.Prestige.TierCounts[ledger.PrestigeGold] = 3
	if !AscensionGateOpen(l) {
		t.Error("ascension gate should open at 3 gold completions")
	}

	// Lower tiers never count.
	l2 := ledger.New()
	l2.Prestige.TierCounts[ledger.PrestigeSilver] = 10
	if AscensionGateOpen(l2) {
		t.Error("silver completions must not open the ascension gate")
	}
}

func TestAscensionPointAward(t *testing.T) {
	cases := []struct {
		level int
		want  int64
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{7, 4},
	}
	for _, c := range cases {
		if got := AscensionPointAward(c.level); got != c.want {
			t.Errorf("AscensionPointAward(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestStartingMoneyWithUpgrades(t *testing.T) {
	l := ledger.New()
	if !StartingMoney(l).Equal(ledger.BaseStartMoney) {
		t.Errorf("fresh ledger should start at base, got %s", StartingMoney(l))
	}

	l.Prestige.PurchasedUpgrades["seed-capital"] = true
	want := ledger.BaseStartMoney.Add(decimal.NewFromInt(2_500))
	if !StartingMoney(l).Equal(want) {
		t.Errorf("expected %s with seed capital, got %s", want, StartingMoney(l))
	}
}

func TestStartingWorkerTierWithUpgrade(t *testing.T) {
	l := ledger.New()
	if got := StartingWorkerTier(l); got != ledger.TierRookie {
		t.Errorf("expected rookie baseline, got %v", got)
	}

	l.Prestige.PurchasedUpgrades["headhunter"] = true
	if got := StartingWorkerTier(l); got != ledger.TierSkilled {
		t.Errorf("expected skilled tier with headhunter, got %v", got)
	}
}

func TestPerkCostAndValueIndexing(t *testing.T) {
	cost, ok := PerkCost(PerkStartCapital, 0)
	if !ok || cost != 1 {
		t.Errorf("first level of start-capital should cost 1, got %d ok=%v", cost, ok)
	}

	if _, ok := PerkCost(PerkStartCapital, 4); ok {
		t.Error("maxed perk must not be purchasable")
	}

	l := ledger.New()
	if !PerkStartCapitalMultiplier(l).Equal(decimal.NewFromInt(1)) {
		t.Error("level 0 start-capital should read the default 1x")
	}

	l.Ascension.PerkLevels[PerkStartCapital] = 2
	if !PerkStartCapitalMultiplier(l).Equal(decimal.NewFromFloat(2.0)) {
		t.Errorf("level 2 should read values[1] = 2.0, got %s", PerkStartCapitalMultiplier(l))
	}
}

func TestStructureCostGrowth(t *testing.T) {
	spec, ok := FindStructureSpec("warehouse")
	if !ok {
		t.Fatal("warehouse catalog entry missing")
	}

	level0 := spec.StructureCost(0)
	level1 := spec.StructureCost(1)

	if !level0.Equal(spec.BaseCost) {
		t.Errorf("first build should cost the base, got %s", level0)
	}
	if !level1.GreaterThan(level0) {
		t.Errorf("cost must grow per level: %s -> %s", level0, level1)
	}
}

func TestDiscounted(t *testing.T) {
	cost := decimal.NewFromInt(1000)
	got := Discounted(cost, decimal.NewFromFloat(0.15))
	if !got.Equal(decimal.NewFromInt(850)) {
		t.Errorf("expected 850 after 15%% discount, got %s", got)
	}
}
