// Package ledger defines the mutable state aggregate for a Magnate save.
// This package is PURE and must NOT import any infrastructure packages
// (network, events, platform). The engine owns the one live instance and
// hands out borrowed references for the duration of a tick.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkerTier represents the seniority of a hired worker.
type WorkerTier int

const (
	TierRookie WorkerTier = iota + 1
	TierSkilled
	TierExpert
	TierMaster
)

// Worker is a single employee attached to a venture.
type Worker struct {
	Name    string     `json:"name"`
	Tier    WorkerTier `json:"tier"`
	Fatigue int        `json:"fatigue"` // 0-100 (100 = exhausted)
	Idle    bool       `json:"idle"`

	// Statistics only; excluded from all economic decisions.
	EarnedTotal decimal.Decimal `json:"earned_total"`
}

// Weight is the worker's share factor when income is attributed for stats.
func (w *Worker) Weight() int64 {
	return int64(w.Tier)
}

// Venture is a production unit: a business generating passive income and
// burning running costs every simulated second.
type Venture struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Level             int             `json:"level"`
	Workers           []*Worker       `json:"workers"`
	BaseIncomePerSec  decimal.Decimal `json:"base_income_per_sec"`
	RunningCostPerSec decimal.Decimal `json:"running_cost_per_sec"`

	// Statistics only.
	RealizedIncome decimal.Decimal `json:"realized_income"`
}

// IncomePerSec returns the venture's raw contribution before any bonus
// layering. Each level past 1 adds 10% of the base.
func (v *Venture) IncomePerSec() decimal.Decimal {
	levelMul := decimal.NewFromInt(1).Add(
		decimal.NewFromFloat(0.1).Mul(decimal.NewFromInt(int64(v.Level - 1))))
	return v.BaseIncomePerSec.Mul(levelMul)
}

// ResearchNode is one entry in the research tree.
type ResearchNode struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Prereqs        []string        `json:"prereqs"`
	Cost           decimal.Decimal `json:"cost"`
	DurationTicks  int             `json:"duration_ticks"`
	RemainingTicks int             `json:"remaining_ticks"`
	Started        bool            `json:"started"`
	Completed      bool            `json:"completed"`

	// Effect granted once completed.
	EffectKind  EffectKind      `json:"effect_kind"`
	EffectValue decimal.Decimal `json:"effect_value"`
}

// EffectKind classifies what a bonus source contributes.
type EffectKind string

const (
	EffectIncomeBonus     EffectKind = "INCOME_BONUS"
	EffectCostReduction   EffectKind = "COST_REDUCTION"
	EffectRushBonus       EffectKind = "RUSH_BONUS"
	EffectDeliverySpeed   EffectKind = "DELIVERY_SPEED"
	EffectUpgradeDiscount EffectKind = "UPGRADE_DISCOUNT"
	EffectStartMoney      EffectKind = "START_MONEY"
	EffectStartWorker     EffectKind = "START_WORKER_TIER"
	EffectMasterBonus     EffectKind = "MASTER_BONUS"
)

// Structure is a built facility contributing a passive bonus per level.
type Structure struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Level       int             `json:"level"`
	EffectKind  EffectKind      `json:"effect_kind"`
	EffectValue decimal.Decimal `json:"effect_value"` // per level
}

// PrestigeTier is the reset ritual tier.
type PrestigeTier int

const (
	PrestigeNone PrestigeTier = iota
	PrestigeBronze
	PrestigeSilver
	PrestigeGold
)

func (t PrestigeTier) String() string {
	switch t {
	case PrestigeBronze:
		return "BRONZE"
	case PrestigeSilver:
		return "SILVER"
	case PrestigeGold:
		return "GOLD"
	default:
		return "NONE"
	}
}

// PrestigeRecord survives every prestige reset. Only ascension zeroes it.
type PrestigeRecord struct {
	TierCounts          map[PrestigeTier]int `json:"tier_counts"`
	HighestTier         PrestigeTier         `json:"highest_tier"`
	PermanentMultiplier decimal.Decimal      `json:"permanent_multiplier"` // >= 1.0
	PrestigePoints      int64                `json:"prestige_points"`
	TotalPrestigePoints int64                `json:"total_prestige_points"` // lifetime, ascension-proof
	PurchasedUpgrades   map[string]bool      `json:"purchased_upgrades"`
}

// AscensionRecord is the meta-progress layer above prestige.
type AscensionRecord struct {
	Level       int            `json:"level"`
	Points      int64          `json:"points"`
	TotalPoints int64          `json:"total_points"` // lifetime
	PerkLevels  map[string]int `json:"perk_levels"`
}

// AutomationFlags are the per-feature opt-in switches. Each is additionally
// gated by a player-level threshold from the tuning profile.
type AutomationFlags struct {
	AutoCollect bool `json:"auto_collect"`
	AutoAccept  bool `json:"auto_accept"`
	AutoAssign  bool `json:"auto_assign"`
}

// TimedEvent is a temporary market event with explicit start and expiry.
type TimedEvent struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	IncomeMul   decimal.Decimal `json:"income_mul"`
	CostMul     decimal.Decimal `json:"cost_mul"`
	StartedTick uint64          `json:"started_tick"`
	ExpiresTick uint64          `json:"expires_tick"`
}

// OfferKind classifies the reward of a time-limited offer.
type OfferKind string

const (
	OfferCash       OfferKind = "CASH"
	OfferPremium    OfferKind = "PREMIUM"
	OfferXP         OfferKind = "XP"
	OfferMood       OfferKind = "MOOD"
	OfferSpeedBoost OfferKind = "SPEED_BOOST"
)

// Offer is a pending time-limited delivery. Each instance is claimable
// exactly once.
type Offer struct {
	ID          string          `json:"id"`
	Kind        OfferKind       `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	ExpiresTick uint64          `json:"expires_tick"`
}

// Contract is an order the player (or auto-accept) works on for a reward.
type Contract struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Reward         decimal.Decimal `json:"reward"`
	XP             int64           `json:"xp"`
	DurationTicks  int             `json:"duration_ticks"`
	RemainingTicks int             `json:"remaining_ticks"`
}

// CraftingJob is in-progress crafting work. Wiped only by ascension.
type CraftingJob struct {
	Recipe         string `json:"recipe"`
	RemainingTicks int    `json:"remaining_ticks"`
}

// Manager is a hired automation NPC. Wiped only by ascension.
type Manager struct {
	Name      string `json:"name"`
	VentureID string `json:"venture_id"`
}

// Ledger is the single mutable aggregate for one save. All subsystems
// operate on a reference; it is never copied during play.
type Ledger struct {
	SaveVersion int       `json:"save_version"`
	CreatedAt   time.Time `json:"created_at"`

	// Progression
	PlayerLevel int   `json:"player_level"`
	XP          int64 `json:"xp"`
	Reputation  int   `json:"reputation"`
	Mood        int   `json:"mood"` // 0-100

	// Currency
	Money            decimal.Decimal `json:"money"` // invariant: never negative
	PremiumCurrency  int64           `json:"premium_currency"`
	TotalMoneyEarned decimal.Decimal `json:"total_money_earned"` // lifetime, monotonic

	// Time
	TotalPlayTimeSeconds int64  `json:"total_play_time_seconds"` // lifetime, monotonic
	TickCount            uint64 `json:"tick_count"`

	// Holdings
	Ventures   []*Venture      `json:"ventures"`
	Research   []*ResearchNode `json:"research"`
	Structures []*Structure    `json:"structures"`

	// Meta progress
	Prestige   PrestigeRecord  `json:"prestige"`
	Ascension  AscensionRecord `json:"ascension"`
	Automation AutomationFlags `json:"automation"`

	// Transient gameplay
	ActiveEvent        *TimedEvent     `json:"active_event,omitempty"`
	Offers             []*Offer        `json:"offers"`
	ActiveContract     *Contract       `json:"active_contract,omitempty"`
	AvailableContracts []*Contract     `json:"available_contracts"`
	ContractCooldown   int             `json:"contract_cooldown"`
	SpeedBoostTicks    int             `json:"speed_boost_ticks"`
	RushBoostTicks     int             `json:"rush_boost_ticks"`
	RushMultiplier     decimal.Decimal `json:"rush_multiplier"`
	DailyStreak        int             `json:"daily_streak"`

	// Ascension-only subsystems (untouched by ordinary prestige)
	CraftingJobs     []*CraftingJob `json:"crafting_jobs"`
	Equipment        []string       `json:"equipment"`
	Tools            map[string]int `json:"tools"`
	Managers         []*Manager     `json:"managers"`
	PendingStory     []string       `json:"pending_story"`
	LuckySpinCharges int            `json:"lucky_spin_charges"`
	TournamentScore  int64          `json:"tournament_score"`

	// Always preserved
	Achievements  map[string]bool   `json:"achievements"`
	Settings      map[string]string `json:"settings"`
	TutorialDone  bool              `json:"tutorial_done"`
	PremiumOwner  bool              `json:"premium_owner"`
	CosmeticsSeen map[string]bool   `json:"cosmetics_seen"`
}

// BaseStartMoney is the unmodified starting balance of a fresh save.
var BaseStartMoney = decimal.NewFromInt(500)

// NewBaselineVenture creates the single venture every save starts with.
func NewBaselineVenture(tier WorkerTier) *Venture {
	return &Venture{
		ID:                "venture-courier",
		Name:              "Courier Desk",
		Level:             1,
		BaseIncomePerSec:  decimal.NewFromInt(10),
		RunningCostPerSec: decimal.NewFromInt(2),
		Workers: []*Worker{
			{Name: "Sam", Tier: tier, Fatigue: 0, Idle: false},
		},
	}
}

// New creates a fresh ledger with first-launch defaults.
func New() *Ledger {
	return &Ledger{
		SaveVersion: 1,
		CreatedAt:   time.Now().UTC(),
		PlayerLevel: 1,
		Mood:        100,
		Money:       BaseStartMoney,
		Ventures:    []*Venture{NewBaselineVenture(TierRookie)},
		Research:    DefaultResearchTree(),
		Prestige: PrestigeRecord{
			TierCounts:          make(map[PrestigeTier]int),
			HighestTier:         PrestigeNone,
			PermanentMultiplier: decimal.NewFromInt(1),
			PurchasedUpgrades:   make(map[string]bool),
		},
		Ascension: AscensionRecord{
			PerkLevels: make(map[string]int),
		},
		RushMultiplier: decimal.NewFromInt(2),
		Tools:          make(map[string]int),
		Achievements:   make(map[string]bool),
		Settings:       make(map[string]string),
		CosmeticsSeen:  make(map[string]bool),
	}
}

// DefaultResearchTree returns the research nodes available on a fresh save.
func DefaultResearchTree() []*ResearchNode {
	return []*ResearchNode{
		{
			ID: "logistics-1", Name: "Route Planning",
			Cost: decimal.NewFromInt(750), DurationTicks: 60,
			EffectKind: EffectIncomeBonus, EffectValue: decimal.NewFromFloat(0.10),
		},
		{
			ID: "logistics-2", Name: "Fleet Telemetry", Prereqs: []string{"logistics-1"},
			Cost: decimal.NewFromInt(4000), DurationTicks: 180,
			EffectKind: EffectIncomeBonus, EffectValue: decimal.NewFromFloat(0.20),
		},
		{
			ID: "lean-ops", Name: "Lean Operations",
			Cost: decimal.NewFromInt(2500), DurationTicks: 120,
			EffectKind: EffectCostReduction, EffectValue: decimal.NewFromFloat(0.15),
		},
		{
			ID: "express-lanes", Name: "Express Lanes", Prereqs: []string{"logistics-1"},
			Cost: decimal.NewFromInt(6000), DurationTicks: 240,
			EffectKind: EffectDeliverySpeed, EffectValue: decimal.NewFromFloat(0.25),
		},
		{
			ID: "overdrive", Name: "Overdrive Protocols", Prereqs: []string{"logistics-2"},
			Cost: decimal.NewFromInt(15000), DurationTicks: 300,
			EffectKind: EffectRushBonus, EffectValue: decimal.NewFromFloat(0.50),
		},
	}
}

// Credit applies one tick's net earnings. A positive net is added in full
// and counted toward lifetime earnings. A negative net is absorbed down to
// a zero balance, never below (running costs are not an error condition).
func (l *Ledger) Credit(net decimal.Decimal) {
	if net.Sign() >= 0 {
		l.Money = l.Money.Add(net)
		l.TotalMoneyEarned = l.TotalMoneyEarned.Add(net)
		return
	}
	l.Money = l.Money.Add(net)
	if l.Money.Sign() < 0 {
		l.Money = decimal.Zero
	}
}

// Spend deducts amount if the balance covers it. Insufficient funds is an
// expected outcome, reported as false.
func (l *Ledger) Spend(amount decimal.Decimal) bool {
	if amount.Sign() < 0 || l.Money.LessThan(amount) {
		return false
	}
	l.Money = l.Money.Sub(amount)
	return true
}

// GainXP adds experience and applies any level-ups. Returns the number of
// levels gained.
func (l *Ledger) GainXP(xp int64) int {
	l.XP += xp
	gained := 0
	for l.XP >= xpForNextLevel(l.PlayerLevel) {
		l.XP -= xpForNextLevel(l.PlayerLevel)
		l.PlayerLevel++
		gained++
	}
	return gained
}

func xpForNextLevel(level int) int64 {
	return int64(100 * level)
}

// FindVenture returns the venture with the given id, or nil.
func (l *Ledger) FindVenture(id string) *Venture {
	for _, v := range l.Ventures {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// FindResearch returns the research node with the given id, or nil.
func (l *Ledger) FindResearch(id string) *ResearchNode {
	for _, n := range l.Research {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// FindStructure returns the built structure with the given id, or nil.
func (l *Ledger) FindStructure(id string) *Structure {
	for _, s := range l.Structures {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ResearchCompleted reports whether the node exists and has finished.
func (l *Ledger) ResearchCompleted(id string) bool {
	n := l.FindResearch(id)
	return n != nil && n.Completed
}

// HasUpgrade reports whether the permanent upgrade was purchased.
func (l *Ledger) HasUpgrade(id string) bool {
	return l.Prestige.PurchasedUpgrades[id]
}

// PerkLevel returns the stored level for an ascension perk (0 = unowned).
func (l *Ledger) PerkLevel(id string) int {
	return l.Ascension.PerkLevels[id]
}

// EventActiveAt reports whether the ledger's timed event covers the tick.
func (l *Ledger) EventActiveAt(tick uint64) bool {
	return l.ActiveEvent != nil &&
		tick >= l.ActiveEvent.StartedTick && tick < l.ActiveEvent.ExpiresTick
}
