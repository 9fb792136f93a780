package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
)

func TestEffectsCacheIsLazy(t *testing.T) {
	l := ledger.New()
	fx := NewEffects(l)

	if fx.Recomputes() != 0 {
		t.Fatalf("cache must not compute before first read, got %d", fx.Recomputes())
	}

	fx.IncomeBonus()
	fx.CostReduction()
	fx.ResearchEfficiency()
	fx.MasterBonus()
	fx.UpgradeDiscount()

	if fx.Recomputes() != 1 {
		t.Errorf("repeated reads must share one recompute, got %d", fx.Recomputes())
	}
}

func TestEffectsInvalidateTriggersOneRecompute(t *testing.T) {
	l := ledger.New()
	fx := NewEffects(l)
	fx.IncomeBonus()

	fx.Invalidate()
	fx.Invalidate() // consecutive invalidations collapse into one rebuild

	fx.IncomeBonus()
	fx.RushBonus()

	if fx.Recomputes() != 2 {
		t.Errorf("expected exactly 2 recomputes, got %d", fx.Recomputes())
	}
}

func TestEffectsSumUpgradeBonuses(t *testing.T) {
	l := ledger.New()
	fx := NewEffects(l)

	if !fx.IncomeBonus().IsZero() {
		t.Fatalf("fresh ledger should have no income bonus, got %s", fx.IncomeBonus())
	}

	l.Prestige.PurchasedUpgrades["golden-ledger"] = true   // +0.10
	l.Prestige.PurchasedUpgrades["platinum-ledger"] = true // +0.25
	fx.Invalidate()

	if want := decimal.NewFromFloat(0.35); !fx.IncomeBonus().Equal(want) {
		t.Errorf("expected income bonus %s, got %s", want, fx.IncomeBonus())
	}
}

func TestEffectsRouteResearchIncomeSeparately(t *testing.T) {
	l := ledger.New()
	fx := NewEffects(l)

	node := l.FindResearch("logistics-1") // income +0.10
	if node == nil {
		t.Fatal("logistics-1 missing from default tree")
	}
	node.Completed = true
	fx.Invalidate()

	if !fx.IncomeBonus().IsZero() {
		t.Errorf("research income must not leak into the upgrade bonus, got %s", fx.IncomeBonus())
	}
	if want := decimal.NewFromFloat(0.10); !fx.ResearchEfficiency().Equal(want) {
		t.Errorf("expected research efficiency %s, got %s", want, fx.ResearchEfficiency())
	}
}

func TestEffectsScaleStructuresByLevel(t *testing.T) {
	l := ledger.New()
	fx := NewEffects(l)

	l.Structures = append(l.Structures, &ledger.Structure{
		ID: "depot", Name: "Fuel Depot", Level: 3,
		EffectKind:  ledger.EffectCostReduction,
		EffectValue: decimal.NewFromFloat(0.03),
	})
	fx.Invalidate()

	if want := decimal.NewFromFloat(0.09); !fx.CostReduction().Equal(want) {
		t.Errorf("expected cost reduction %s, got %s", want, fx.CostReduction())
	}
}
