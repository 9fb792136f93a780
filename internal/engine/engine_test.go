package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"magnate/internal/domain/ledger"
	"magnate/internal/events"
	"magnate/internal/platform/logger"
	"magnate/internal/platform/tuning"
)

// countingStore records save calls; it satisfies SaveStore for tests.
type countingStore struct {
	saves int
}

func (s *countingStore) Save(l *ledger.Ledger) error {
	s.saves++
	return nil
}

func (s *countingStore) Load() (*ledger.Ledger, bool, error) {
	return nil, false, nil
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *ledger.Ledger) {
	t.Helper()
	l := ledger.New()
	opts = append([]Option{WithSeed(42)}, opts...)
	e := NewEngine(l, tuning.Default(), logger.NewLogger(),
		events.NewEventLog(nil), nil, opts...)
	return e, l
}

func TestStepTickAccruesNetIncome(t *testing.T) {
	e, l := newTestEngine(t)

	obs := e.StepTick()

	// Baseline venture: 10 income, 2 cost, one rookie worker.
	if !obs.Net.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected net 8, got %s", obs.Net)
	}
	want := ledger.BaseStartMoney.Add(decimal.NewFromInt(8))
	if !l.Money.Equal(want) {
		t.Errorf("expected money %s, got %s", want, l.Money)
	}
	if obs.Tick != 1 {
		t.Errorf("expected tick 1, got %d", obs.Tick)
	}
}

func TestMoneyNeverGoesNegative(t *testing.T) {
	e, l := newTestEngine(t)
	l.Money = decimal.Zero
	l.Ventures[0].RunningCostPerSec = decimal.NewFromInt(1_000)

	e.StepTicks(5)

	if l.Money.Sign() < 0 {
		t.Errorf("money must never go negative, got %s", l.Money)
	}
}

func TestStepTicksAdvancesTickCount(t *testing.T) {
	e, l := newTestEngine(t)

	obs := e.StepTicks(10)

	if obs.Tick != 10 || l.TickCount != 10 {
		t.Errorf("expected tick 10, got obs %d ledger %d", obs.Tick, l.TickCount)
	}
}

func TestRateTableDispatchFiresAtOffset(t *testing.T) {
	store := &countingStore{}
	l := ledger.New()
	profile := tuning.Default()
	profile.RateTable = []tuning.RateEntry{
		{Name: tuning.RateAutosave, Interval: 10, Offset: 3},
	}
	e := NewEngine(l, profile, logger.NewLogger(), events.NewEventLog(nil), store, WithSeed(1))

	e.StepTicks(2)
	if store.saves != 0 {
		t.Fatalf("autosave must not fire before its slot, saves=%d", store.saves)
	}

	e.StepTick() // tick 3: 3 % 10 == 3
	if store.saves != 1 {
		t.Errorf("expected one autosave at tick 3, got %d", store.saves)
	}

	e.StepTicks(9) // through tick 12
	if store.saves != 1 {
		t.Errorf("autosave must not fire again before tick 13, got %d", store.saves)
	}
	e.StepTick() // tick 13
	if store.saves != 2 {
		t.Errorf("expected second autosave at tick 13, got %d", store.saves)
	}
}

func TestUnknownRateEntrySkipped(t *testing.T) {
	l := ledger.New()
	profile := tuning.Default()
	profile.RateTable = append(profile.RateTable,
		tuning.RateEntry{Name: "does_not_exist", Interval: 7, Offset: 1})

	e := NewEngine(l, profile, logger.NewLogger(), events.NewEventLog(nil), nil, WithSeed(1))

	// Must not panic; the unknown entry is simply not bound.
	e.StepTicks(8)
	for _, entry := range e.rateTable {
		if entry.name == "does_not_exist" {
			t.Error("unknown subsystem must not be bound")
		}
	}
}

func TestPlayTimeRemainderCarry(t *testing.T) {
	e, l := newTestEngine(t)

	// Two flushes of 700ms credit exactly one second total so far.
	e.creditPlayTime(700 * 1e6) // 700ms in nanoseconds
	e.creditPlayTime(700 * 1e6)

	if l.TotalPlayTimeSeconds != 1 {
		t.Errorf("expected 1 second credited, got %d", l.TotalPlayTimeSeconds)
	}

	e.creditPlayTime(600 * 1e6) // remainder 400ms + 600ms = 1s
	if l.TotalPlayTimeSeconds != 2 {
		t.Errorf("expected 2 seconds credited, got %d", l.TotalPlayTimeSeconds)
	}
}

func TestObserverReceivesEachTick(t *testing.T) {
	var seen []Observation
	e, _ := newTestEngine(t, WithObserver(func(o Observation) {
		seen = append(seen, o)
	}))

	e.StepTicks(3)

	if len(seen) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(seen))
	}
	if seen[2].Tick != 3 {
		t.Errorf("expected final tick 3, got %d", seen[2].Tick)
	}
}

func TestGuildBonusClampedNonNegative(t *testing.T) {
	e, _ := newTestEngine(t)

	e.SetGuildBonus(decimal.NewFromInt(-5))

	if e.guildBonus.Sign() != 0 {
		t.Errorf("negative guild bonus must clamp to zero, got %s", e.guildBonus)
	}
}

func TestContractCompletionPaysOut(t *testing.T) {
	e, l := newTestEngine(t)
	l.ActiveContract = &ledger.Contract{
		ID:             "c1",
		Name:           "Test Order",
		Reward:         decimal.NewFromInt(500),
		XP:             50,
		RemainingTicks: 2,
	}
	before := l.Money

	e.StepTick()
	if l.ActiveContract == nil {
		t.Fatal("contract should still be running after one tick")
	}

	e.StepTick()
	if l.ActiveContract != nil {
		t.Fatal("contract should complete after its last tick")
	}
	if l.Money.LessThan(before.Add(decimal.NewFromInt(500))) {
		t.Errorf("reward should be credited, money %s -> %s", before, l.Money)
	}
	if l.Reputation != 1 {
		t.Errorf("completion should raise reputation, got %d", l.Reputation)
	}
	if l.ContractCooldown == 0 {
		t.Error("completion should start the contract cooldown")
	}
	if e.pendingContribution.Load() != contractContributionPoints {
		t.Errorf("completion should queue a guild contribution, got %d", e.pendingContribution.Load())
	}
}

func TestWorkerFatigueExhaustionSendsIdle(t *testing.T) {
	e, l := newTestEngine(t)
	w := l.Ventures[0].Workers[0]
	w.Fatigue = 99

	e.StepTick()

	if !w.Idle {
		t.Error("a worker at full fatigue must drop to idle")
	}
	if w.Fatigue != 100 {
		t.Errorf("fatigue should clamp at 100, got %d", w.Fatigue)
	}
}

func TestIdleWorkersProduceNothing(t *testing.T) {
	e, l := newTestEngine(t)
	l.Ventures[0].Workers[0].Idle = true
	l.Ventures[0].RunningCostPerSec = decimal.Zero

	obs := e.StepTick()

	if !obs.Net.IsZero() {
		t.Errorf("an all-idle venture must not produce, got net %s", obs.Net)
	}
}

// A pause landing while a tick is in flight must never wedge the engine:
// the scheduler's lock is not held across the play-time callback, and the
// tick path reads session time before taking the engine lock.
func TestPauseDuringInFlightTickCompletes(t *testing.T) {
	l := ledger.New()
	profile := tuning.Default()
	profile.TickMillis = 3_600_000 // keep the background ticker quiet
	e := NewEngine(l, profile, logger.NewLogger(),
		events.NewEventLog(nil), nil, WithSeed(1))
	s := e.Scheduler()
	cancel := startScheduler(t, s)
	defer cancel()

	// Arm a clock that parks its next caller: that caller is the pause
	// flush, mid-way through the scheduler's critical section.
	entered := make(chan struct{})
	release := make(chan struct{})
	var armed atomic.Bool
	base := time.Now()
	s.SetClock(func() time.Time {
		if armed.CompareAndSwap(true, false) {
			close(entered)
			<-release
		}
		return base
	})
	armed.Store(true)

	pauseDone := make(chan struct{})
	go func() {
		e.Pause()
		close(pauseDone)
	}()
	<-entered

	tickDone := make(chan struct{})
	go func() {
		e.StepTick()
		close(tickDone)
	}()

	time.Sleep(10 * time.Millisecond) // let the tick reach the contended lock
	close(release)

	select {
	case <-tickDone:
	case <-time.After(2 * time.Second):
		t.Fatal("tick blocked behind an in-flight pause")
	}
	select {
	case <-pauseDone:
	case <-time.After(2 * time.Second):
		t.Fatal("pause never completed")
	}
	if !s.Paused() {
		t.Error("scheduler should be paused afterwards")
	}
}
