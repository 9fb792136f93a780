// Package engine contains the simulation loop and game logic.
// This is the heartbeat of Magnate.
//
// ARCHITECTURAL RULE: exactly one tick executes at a time. The engine owns
// the ledger; every synchronous mutation - ticks and player actions alike -
// runs under the same non-reentrant execution context. Asynchronous work
// (autosave, social submission) reads copied-out data and feeds results
// back through that same context.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
	"magnate/internal/events"
	"magnate/internal/platform/logger"
	"magnate/internal/platform/metrics"
	"magnate/internal/platform/tuning"
)

// contractContributionPoints is the fixed guild contribution earned per
// completed contract.
const contractContributionPoints = 10

// SaveStore is the persistence collaborator. Treated as atomic and
// crash-safe; the engine only decides when to call it.
type SaveStore interface {
	Save(l *ledger.Ledger) error
	Load() (*ledger.Ledger, bool, error)
}

// SocialBackend is the narrow async surface of the guild/leaderboard
// services. The engine only ever pushes scalar values outward and never
// blocks on the results.
type SocialBackend interface {
	Name() string
	IsAvailable() bool
	SubmitScore(ctx context.Context, score int64) error
	Contribute(ctx context.Context, points int64) error
	CheckAndFinalize(ctx context.Context) error
}

// boundRate is one rate-table row bound to its handler.
type boundRate struct {
	name     string
	interval uint64
	offset   uint64
	handler  func(tick uint64)
}

// Engine is the central orchestrator: it owns the ledger, the effect
// aggregator, the scheduler, and the rate-table subsystems.
type Engine struct {
	mu sync.Mutex

	ledger   *ledger.Ledger
	effects  *Effects
	logger   *logger.Logger
	eventLog *events.EventLog
	profile  *tuning.Profile
	store    SaveStore
	social   SocialBackend
	rng      *rand.Rand

	scheduler *Scheduler
	rateTable []boundRate

	guildBonus          decimal.Decimal
	pendingContribution atomic.Int64
	playtimeRemainder   time.Duration

	// onObservation is invoked once per tick with the tick's results.
	onObservation func(Observation)
}

// Option configures the engine at construction.
type Option func(*Engine)

// WithSocial attaches a social backend.
func WithSocial(s SocialBackend) Option {
	return func(e *Engine) { e.social = s }
}

// WithObserver sets the per-tick observation callback.
func WithObserver(fn func(Observation)) Option {
	return func(e *Engine) { e.onObservation = fn }
}

// WithSeed fixes the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// NewEngine initializes the core simulation over an already-sanitized
// ledger. store may be nil for headless runs.
func NewEngine(l *ledger.Ledger, profile *tuning.Profile, log *logger.Logger,
	eventLog *events.EventLog, store SaveStore, opts ...Option) *Engine {

	e := &Engine{
		ledger:     l,
		effects:    NewEffects(l),
		logger:     log,
		eventLog:   eventLog,
		profile:    profile,
		store:      store,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		guildBonus: decimal.Zero,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.scheduler = NewScheduler(profile.TickPeriod(), e.tick, e.creditPlayTime)
	e.bindRateTable()
	return e
}

// bindRateTable resolves the declarative profile entries to handlers.
// Unknown names are logged and skipped rather than rejected, so older
// profiles keep working.
func (e *Engine) bindRateTable() {
	handlers := map[string]func(uint64){
		tuning.RateEventCheck:  e.checkMarketEvents,
		tuning.RateOfferGen:    e.generateOffers,
		tuning.RateContractGen: e.generateContracts,
		tuning.RateAutoCollect: e.runAutoCollectAccept,
		tuning.RateAutoAssign:  e.runAutoAssign,
		tuning.RateResearch:    e.advanceResearch,
		tuning.RateAutosave:    e.autosave,
		tuning.RateNetSubmit:   e.submitSocial,
	}

	e.rateTable = e.rateTable[:0]
	for _, entry := range e.profile.RateTable {
		h, ok := handlers[entry.Name]
		if !ok {
			e.logger.Warn("Unknown rate table subsystem: " + entry.Name)
			continue
		}
		e.rateTable = append(e.rateTable, boundRate{
			name:     entry.Name,
			interval: entry.Interval,
			offset:   entry.Offset,
			handler:  h,
		})
	}
}

// Start spawns the scheduler loop.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting simulation engine...")
	go e.scheduler.Start(ctx)
}

// Stop halts the scheduler, flushes play time, and persists a final save.
func (e *Engine) Stop() {
	e.scheduler.Stop()
	e.saveNow("shutdown")
	e.logger.Info("Simulation engine stopped.")
}

// Pause suspends ticking and persists, flushing elapsed play time.
func (e *Engine) Pause() {
	e.scheduler.Pause()
	e.saveNow("pause")
}

// Resume restarts ticking after a pause.
func (e *Engine) Resume() {
	e.scheduler.Resume()
}

// Scheduler exposes the heartbeat for wiring and tests.
func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

// Ledger returns the live aggregate. Callers outside the engine must only
// touch it through Do.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// EventLog returns the action log.
func (e *Engine) EventLog() *events.EventLog {
	return e.eventLog
}

// Effects exposes the aggregator for read-only inspection.
func (e *Engine) Effects() *Effects {
	return e.effects
}

// SetObserver installs the per-tick observation callback after
// construction, for wirings where the consumer needs the engine first.
func (e *Engine) SetObserver(fn func(Observation)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onObservation = fn
}

// Do runs fn under the engine's execution context, fully before the next
// tick reads the ledger. Player-initiated actions go through here.
func (e *Engine) Do(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// SetGuildBonus applies the latest guild income bonus reported by the
// social backend. Queued under the execution context like any mutation.
func (e *Engine) SetGuildBonus(bonus decimal.Decimal) {
	e.Do(func() {
		if bonus.Sign() < 0 {
			bonus = decimal.Zero
		}
		e.guildBonus = bonus
	})
}

// tick is the scheduler callback: one full simulation tick. The session
// duration is read before e.mu is taken; nothing under e.mu may call
// back into the scheduler's lock.
func (e *Engine) tick() {
	session := e.scheduler.SessionDuration()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stepLocked(session)
}

// StepTick advances the simulation by exactly one tick, synchronously.
// Used by tests and the headless runner; the live scheduler goes through
// the same path.
func (e *Engine) StepTick() Observation {
	session := e.scheduler.SessionDuration()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepLocked(session)
}

// StepTicks advances n ticks and returns the last observation.
func (e *Engine) StepTicks(n int) Observation {
	var obs Observation
	for i := 0; i < n; i++ {
		obs = e.StepTick()
	}
	return obs
}

func (e *Engine) stepLocked(session time.Duration) Observation {
	started := time.Now()
	l := e.ledger

	// (1) economy, (2) counters, (3) rate-table dispatch.
	result := e.runPipeline()
	e.advanceTimers()
	l.TickCount++

	for _, entry := range e.rateTable {
		if l.TickCount%entry.interval == entry.offset {
			entry.handler(l.TickCount)
		}
	}

	metrics.Get().RecordTick(time.Since(started))

	obs := Observation{
		Tick:           l.TickCount,
		Net:            result.Net,
		Money:          l.Money,
		SessionSeconds: int64(session / time.Second),
		Capped:         result.Capped,
	}
	if e.onObservation != nil {
		e.onObservation(obs)
	}
	return obs
}

// creditPlayTime folds flushed running time into the lifetime counter,
// carrying sub-second remainders so long sessions do not drift.
func (e *Engine) creditPlayTime(elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := e.playtimeRemainder + elapsed
	seconds := total / time.Second
	e.playtimeRemainder = total - seconds*time.Second
	e.ledger.TotalPlayTimeSeconds += int64(seconds)
}

// gainXP awards experience and records level-ups. Caller holds the
// execution context.
func (e *Engine) gainXP(xp int64) {
	before := e.ledger.PlayerLevel
	if gained := e.ledger.GainXP(xp); gained > 0 {
		e.eventLog.Record(e.ledger.TickCount, events.EventTypeLevelUp,
			fmt.Sprintf("level-%d", e.ledger.PlayerLevel),
			map[string]interface{}{"from": before, "to": e.ledger.PlayerLevel})
	}
}

// autosave is the periodic persistence hook. Failures are logged and
// retried on the next window; the simulation keeps running.
func (e *Engine) autosave(tick uint64) {
	e.saveLocked("autosave")
}

// saveNow persists outside the tick path (pause/stop).
func (e *Engine) saveNow(reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.saveLocked(reason)
}

// saveLocked snapshots under the execution context. The store itself is
// treated as atomic; any error is absorbed here.
func (e *Engine) saveLocked(reason string) {
	if e.store == nil {
		return
	}
	err := e.store.Save(e.ledger)
	metrics.Get().RecordAutosave(err)
	if err != nil {
		e.logger.Error("Save failed (" + reason + "): " + err.Error())
	}
}

// submitSocial is the periodic best-effort submission hook. It snapshots
// the scalars it needs, then fires and forgets: any failure is swallowed,
// logged, and the contribution is re-queued for the next window.
func (e *Engine) submitSocial(tick uint64) {
	if e.social == nil || !e.social.IsAvailable() {
		return
	}

	score := e.ledger.TotalMoneyEarned.IntPart()
	points := e.pendingContribution.Swap(0)
	backend := e.social

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Errorf("Social submission panic: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := backend.SubmitScore(ctx, score)
		metrics.Get().RecordSubmit(err)
		if err != nil {
			e.logger.Error("Score submission failed: " + err.Error())
		}

		if points > 0 {
			if err := backend.Contribute(ctx, points); err != nil {
				metrics.Get().RecordSubmit(err)
				e.logger.Error("Guild contribution failed: " + err.Error())
				e.pendingContribution.Add(points)
			} else {
				metrics.Get().RecordSubmit(nil)
			}
		}

		if err := backend.CheckAndFinalize(ctx); err != nil {
			e.logger.Error("Bounty finalize failed: " + err.Error())
		}
	}()
}
