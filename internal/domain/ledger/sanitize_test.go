package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSanitizeFreshLedgerNeedsNoRepairs(t *testing.T) {
	l := New()
	if repairs := l.Sanitize(); len(repairs) != 0 {
		t.Errorf("fresh ledger should be clean, got repairs: %v", repairs)
	}
}

func TestSanitizeClampsCorruptedFields(t *testing.T) {
	l := New()
	l.Money = decimal.NewFromInt(-100)
	l.TotalMoneyEarned = decimal.NewFromInt(-1)
	l.PlayerLevel = 0
	l.Mood = 300
	l.Prestige.PermanentMultiplier = decimal.NewFromInt(99)
	l.RushMultiplier = decimal.NewFromInt(1)

	repairs := l.Sanitize()
	if len(repairs) == 0 {
		t.Fatal("expected repairs on a corrupted ledger")
	}

	if !l.Money.IsZero() {
		t.Errorf("money should clamp to 0, got %s", l.Money)
	}
	if l.PlayerLevel != 1 {
		t.Errorf("player level should clamp to 1, got %d", l.PlayerLevel)
	}
	if l.Mood != 100 {
		t.Errorf("mood should clamp to 100, got %d", l.Mood)
	}
	if !l.Prestige.PermanentMultiplier.Equal(MaxPermanentMultiplier) {
		t.Errorf("multiplier should clamp to cap, got %s", l.Prestige.PermanentMultiplier)
	}
	if !l.RushMultiplier.Equal(decimal.NewFromInt(2)) {
		t.Errorf("rush multiplier should floor at 2, got %s", l.RushMultiplier)
	}
}

func TestSanitizeRebuildsMissingCollections(t *testing.T) {
	l := New()
	l.Ventures = nil
	l.Research = nil
	l.Prestige.TierCounts = nil
	l.Settings = nil

	l.Sanitize()

	if len(l.Ventures) != 1 || l.Ventures[0].ID != "venture-courier" {
		t.Error("baseline venture should be re-created")
	}
	if len(l.Research) == 0 {
		t.Error("research tree should be restored to defaults")
	}
	if l.Prestige.TierCounts == nil || l.Settings == nil {
		t.Error("nil maps should be re-made")
	}
}

func TestSanitizeDropsInvertedEventWindow(t *testing.T) {
	l := New()
	l.ActiveEvent = &TimedEvent{StartedTick: 50, ExpiresTick: 40}

	l.Sanitize()

	if l.ActiveEvent != nil {
		t.Error("an event with an inverted window must be dropped")
	}
}

func TestSanitizeClampsWorkerFields(t *testing.T) {
	l := New()
	l.Ventures[0].Workers[0].Fatigue = 250
	l.Ventures[0].Workers = append(l.Ventures[0].Workers, &Worker{Name: "Ghost", Tier: 99})

	l.Sanitize()

	if l.Ventures[0].Workers[0].Fatigue != 100 {
		t.Errorf("fatigue should clamp to 100, got %d", l.Ventures[0].Workers[0].Fatigue)
	}
	if l.Ventures[0].Workers[1].Tier != TierRookie {
		t.Errorf("out-of-range tier should reset to rookie, got %v", l.Ventures[0].Workers[1].Tier)
	}
}
