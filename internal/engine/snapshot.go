package engine

import (
	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
)

// VentureView is the read-only dashboard projection of a venture.
type VentureView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Level     int             `json:"level"`
	Workers   int             `json:"workers"`
	IncomeSec decimal.Decimal `json:"income_per_sec"`
}

// Snapshot is a point-in-time projection of the ledger for dashboards
// and the headless runner. It carries values, never live pointers.
type Snapshot struct {
	Tick            uint64                 `json:"tick"`
	Money           decimal.Decimal        `json:"money"`
	TotalEarned     decimal.Decimal        `json:"total_earned"`
	Level           int                    `json:"level"`
	XP              int64                  `json:"xp"`
	Mood            int                    `json:"mood"`
	Reputation      int                    `json:"reputation"`
	PlayTimeSeconds int64                  `json:"play_time_seconds"`
	Multiplier      decimal.Decimal        `json:"permanent_multiplier"`
	PrestigePoints  int64                  `json:"prestige_points"`
	TotalPrestiges  int                    `json:"total_prestiges"`
	HighestTier     string                 `json:"highest_tier"`
	AscensionPoints int64                  `json:"ascension_points"`
	AscensionLevel  int                    `json:"ascension_level"`
	Ventures        []VentureView          `json:"ventures"`
	OpenOffers      int                    `json:"open_offers"`
	OpenContracts   int                    `json:"open_contracts"`
	ActiveContract  string                 `json:"active_contract,omitempty"`
	ActiveEvent     string                 `json:"active_event,omitempty"`
	ResearchStarted []string               `json:"research_started"`
	ResearchDone    []string               `json:"research_done"`
	Automation      ledger.AutomationFlags `json:"automation"`
	Paused          bool                   `json:"paused"`
}

// Snapshot builds a dashboard projection under the engine lock. The
// paused flag is read first so e.mu is never held across the
// scheduler's lock.
func (e *Engine) Snapshot() Snapshot {
	paused := e.scheduler.Paused()
	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.ledger
	totalPrestiges := 0
	for _, n := range l.Prestige.TierCounts {
		totalPrestiges += n
	}
	s := Snapshot{
		Tick:            l.TickCount,
		Money:           l.Money,
		TotalEarned:     l.TotalMoneyEarned,
		Level:           l.PlayerLevel,
		XP:              l.XP,
		Mood:            l.Mood,
		Reputation:      l.Reputation,
		PlayTimeSeconds: l.TotalPlayTimeSeconds,
		Multiplier:      l.Prestige.PermanentMultiplier,
		PrestigePoints:  l.Prestige.PrestigePoints,
		TotalPrestiges:  totalPrestiges,
		HighestTier:     l.Prestige.HighestTier.String(),
		AscensionPoints: l.Ascension.Points,
		AscensionLevel:  l.Ascension.Level,
		OpenOffers:      len(l.Offers),
		OpenContracts:   len(l.AvailableContracts),
		Automation:      l.Automation,
		Paused:          paused,
	}

	for _, v := range l.Ventures {
		s.Ventures = append(s.Ventures, VentureView{
			ID:        v.ID,
			Name:      v.Name,
			Level:     v.Level,
			Workers:   len(v.Workers),
			IncomeSec: v.IncomePerSec(),
		})
	}
	if l.ActiveContract != nil {
		s.ActiveContract = l.ActiveContract.ID
	}
	if l.ActiveEvent != nil {
		s.ActiveEvent = l.ActiveEvent.Name
	}
	for _, n := range l.Research {
		if n.Completed {
			s.ResearchDone = append(s.ResearchDone, n.ID)
		} else if n.Started {
			s.ResearchStarted = append(s.ResearchStarted, n.ID)
		}
	}
	return s
}
