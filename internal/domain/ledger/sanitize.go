// Package ledger - sanitize.go
// Field-by-field repair of a loaded save. A corrupted or partially-invalid
// snapshot is clamped back into range rather than rejected: losing the save
// file entirely is the only unrecoverable condition.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxPermanentMultiplier is the sanity cap applied on load and after every
// prestige transition.
var MaxPermanentMultiplier = decimal.NewFromInt(20)

// Sanitize clamps out-of-range values in place and returns a description of
// every repair applied, for the caller to log.
func (l *Ledger) Sanitize() []string {
	var repairs []string

	if l.Money.Sign() < 0 {
		repairs = append(repairs, fmt.Sprintf("money %s -> 0", l.Money))
		l.Money = decimal.Zero
	}
	if l.TotalMoneyEarned.Sign() < 0 {
		repairs = append(repairs, "total_money_earned negative -> 0")
		l.TotalMoneyEarned = decimal.Zero
	}
	if l.TotalPlayTimeSeconds < 0 {
		repairs = append(repairs, "total_play_time negative -> 0")
		l.TotalPlayTimeSeconds = 0
	}
	if l.PlayerLevel < 1 {
		repairs = append(repairs, "player_level -> 1")
		l.PlayerLevel = 1
	}
	if l.XP < 0 {
		repairs = append(repairs, "xp negative -> 0")
		l.XP = 0
	}
	if l.Mood < 0 {
		l.Mood = 0
		repairs = append(repairs, "mood -> 0")
	}
	if l.Mood > 100 {
		l.Mood = 100
		repairs = append(repairs, "mood -> 100")
	}

	one := decimal.NewFromInt(1)
	if l.Prestige.PermanentMultiplier.LessThan(one) {
		repairs = append(repairs, fmt.Sprintf("permanent_multiplier %s -> 1.0", l.Prestige.PermanentMultiplier))
		l.Prestige.PermanentMultiplier = one
	}
	if l.Prestige.PermanentMultiplier.GreaterThan(MaxPermanentMultiplier) {
		repairs = append(repairs, fmt.Sprintf("permanent_multiplier %s -> cap %s", l.Prestige.PermanentMultiplier, MaxPermanentMultiplier))
		l.Prestige.PermanentMultiplier = MaxPermanentMultiplier
	}
	if l.Prestige.PrestigePoints < 0 {
		repairs = append(repairs, "prestige_points negative -> 0")
		l.Prestige.PrestigePoints = 0
	}
	if l.Ascension.Points < 0 {
		repairs = append(repairs, "ascension_points negative -> 0")
		l.Ascension.Points = 0
	}
	if l.RushMultiplier.LessThan(decimal.NewFromInt(2)) {
		repairs = append(repairs, "rush_multiplier -> 2")
		l.RushMultiplier = decimal.NewFromInt(2)
	}

	// Maps can arrive nil from hand-edited or truncated JSON.
	if l.Prestige.TierCounts == nil {
		l.Prestige.TierCounts = make(map[PrestigeTier]int)
	}
	if l.Prestige.PurchasedUpgrades == nil {
		l.Prestige.PurchasedUpgrades = make(map[string]bool)
	}
	if l.Ascension.PerkLevels == nil {
		l.Ascension.PerkLevels = make(map[string]int)
	}
	if l.Achievements == nil {
		l.Achievements = make(map[string]bool)
	}
	if l.Settings == nil {
		l.Settings = make(map[string]string)
	}
	if l.CosmeticsSeen == nil {
		l.CosmeticsSeen = make(map[string]bool)
	}
	if l.Tools == nil {
		l.Tools = make(map[string]int)
	}

	// A save must always hold at least the baseline venture.
	if len(l.Ventures) == 0 {
		repairs = append(repairs, "no ventures -> baseline re-created")
		l.Ventures = []*Venture{NewBaselineVenture(TierRookie)}
	}
	for _, v := range l.Ventures {
		if v.Level < 1 {
			repairs = append(repairs, fmt.Sprintf("venture %s level -> 1", v.ID))
			v.Level = 1
		}
		for _, w := range v.Workers {
			if w.Fatigue < 0 {
				w.Fatigue = 0
			}
			if w.Fatigue > 100 {
				w.Fatigue = 100
			}
			if w.Tier < TierRookie || w.Tier > TierMaster {
				repairs = append(repairs, fmt.Sprintf("worker %s tier -> rookie", w.Name))
				w.Tier = TierRookie
			}
		}
	}

	if l.Research == nil {
		repairs = append(repairs, "research tree missing -> defaults")
		l.Research = DefaultResearchTree()
	}
	for _, n := range l.Research {
		if n.RemainingTicks < 0 {
			n.RemainingTicks = 0
		}
	}

	if l.ActiveEvent != nil && l.ActiveEvent.ExpiresTick <= l.ActiveEvent.StartedTick {
		repairs = append(repairs, "active event with inverted window dropped")
		l.ActiveEvent = nil
	}

	return repairs
}
