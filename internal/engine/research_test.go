package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/rules"
)

func TestResearchBurnsDownAndCompletes(t *testing.T) {
	e, l := newTestEngine(t)
	l.Money = decimal.NewFromInt(1_000)
	if !e.StartResearch("logistics-1") { // 60 ticks
		t.Fatal("research should start")
	}

	e.StepTicks(59)
	n := l.FindResearch("logistics-1")
	if n.Completed {
		t.Fatal("node must not complete early")
	}
	if n.RemainingTicks != 1 {
		t.Fatalf("expected 1 remaining tick, got %d", n.RemainingTicks)
	}

	e.StepTick()
	if !n.Completed || n.RemainingTicks != 0 {
		t.Fatalf("node should complete on its last tick, got %+v", n)
	}

	// Completed research feeds the separately-capped efficiency bucket.
	if want := decimal.NewFromFloat(0.10); !e.Effects().ResearchEfficiency().Equal(want) {
		t.Errorf("expected research efficiency %s, got %s", want, e.Effects().ResearchEfficiency())
	}
}

func TestResearchPerkShortensActiveDuration(t *testing.T) {
	e, l := newTestEngine(t)
	l.Money = decimal.NewFromInt(1_000)
	l.Ascension.PerkLevels[rules.PerkResearchDuration] = 3 // -40%

	if !e.StartResearch("logistics-1") {
		t.Fatal("research should start")
	}
	if got := l.FindResearch("logistics-1").RemainingTicks; got != 36 {
		t.Errorf("expected 36 ticks after the 40%% reduction, got %d", got)
	}
}
