// Package tuning holds the load-time configuration profile for the
// simulation: tick period, rate table cadence, economy knobs, and
// automation gates. Values ship as code defaults and can be overridden
// from a YAML file.
package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RateEntry is one row of the declarative dispatch table. A subsystem
// fires on ticks where tick % Interval == Offset. Offsets are chosen so
// no two subsystems with the same interval collide on the same tick.
type RateEntry struct {
	Name     string `yaml:"name"`
	Interval uint64 `yaml:"interval"`
	Offset   uint64 `yaml:"offset"`
}

// Profile is the full tuning configuration.
type Profile struct {
	TickMillis int `yaml:"tick_millis"` // real duration of one simulated second

	RateTable []RateEntry `yaml:"rate_table"`

	// Automation player-level gates
	AutoCollectLevel int `yaml:"auto_collect_level"`
	AutoAcceptLevel  int `yaml:"auto_accept_level"`
	AutoAssignLevel  int `yaml:"auto_assign_level"`

	// Worker fatigue
	FatiguePerTick      int `yaml:"fatigue_per_tick"`
	FatigueRestPerTick  int `yaml:"fatigue_rest_per_tick"`
	FatigueRestedThresh int `yaml:"fatigue_rested_thresh"`

	// Offers / contracts / events
	OfferTTLTicks      int `yaml:"offer_ttl_ticks"`
	MaxPendingOffers   int `yaml:"max_pending_offers"`
	MaxOpenContracts   int `yaml:"max_open_contracts"`
	ContractCooldown   int `yaml:"contract_cooldown"`
	EventDurationTicks int `yaml:"event_duration_ticks"`
	EventChancePercent int `yaml:"event_chance_percent"`
	BoostDurationTicks int `yaml:"boost_duration_ticks"`

	// Persistence
	SaveSlot string `yaml:"save_slot"`
}

// Subsystem names referenced by both the default rate table and the engine
// when it binds handlers.
const (
	RateEventCheck  = "event_check"
	RateOfferGen    = "offer_gen"
	RateContractGen = "contract_gen"
	RateAutoCollect = "auto_collect_accept"
	RateAutoAssign  = "auto_assign"
	RateResearch    = "research_advance"
	RateAutosave    = "autosave"
	RateNetSubmit   = "net_submit"
)

// Default returns the production profile.
func Default() *Profile {
	return &Profile{
		TickMillis: 1000,
		RateTable: []RateEntry{
			{Name: RateResearch, Interval: 1, Offset: 0},
			{Name: RateAutoCollect, Interval: 5, Offset: 2},
			{Name: RateEventCheck, Interval: 10, Offset: 1},
			{Name: RateAutoAssign, Interval: 20, Offset: 4},
			{Name: RateOfferGen, Interval: 30, Offset: 3},
			{Name: RateContractGen, Interval: 30, Offset: 7},
			{Name: RateAutosave, Interval: 60, Offset: 11},
			{Name: RateNetSubmit, Interval: 120, Offset: 23},
		},
		AutoCollectLevel:    10,
		AutoAcceptLevel:     15,
		AutoAssignLevel:     25,
		FatiguePerTick:      2,
		FatigueRestPerTick:  5,
		FatigueRestedThresh: 30,
		OfferTTLTicks:       90,
		MaxPendingOffers:    3,
		MaxOpenContracts:    3,
		ContractCooldown:    45,
		EventDurationTicks:  120,
		EventChancePercent:  20,
		BoostDurationTicks:  60,
		SaveSlot:            "default",
	}
}

// Load reads a YAML override file on top of the defaults.
func Load(path string) (*Profile, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning profile: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse tuning profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate rejects profiles the scheduler cannot run.
func (p *Profile) Validate() error {
	if p.TickMillis <= 0 {
		return fmt.Errorf("tick_millis must be positive, got %d", p.TickMillis)
	}
	seen := make(map[string]bool, len(p.RateTable))
	slots := make(map[[2]uint64]string, len(p.RateTable))
	for _, e := range p.RateTable {
		if e.Interval == 0 {
			return fmt.Errorf("rate entry %q has zero interval", e.Name)
		}
		if e.Offset >= e.Interval {
			return fmt.Errorf("rate entry %q offset %d >= interval %d", e.Name, e.Offset, e.Interval)
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate rate entry %q", e.Name)
		}
		seen[e.Name] = true
		slot := [2]uint64{e.Interval, e.Offset}
		if other, ok := slots[slot]; ok {
			return fmt.Errorf("rate entries %q and %q collide on interval %d offset %d",
				other, e.Name, e.Interval, e.Offset)
		}
		slots[slot] = e.Name
	}
	return nil
}

// TickPeriod is the real-time duration of one tick.
func (p *Profile) TickPeriod() time.Duration {
	return time.Duration(p.TickMillis) * time.Millisecond
}
