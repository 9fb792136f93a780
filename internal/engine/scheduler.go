// Package engine - scheduler.go
// The fixed-rate heartbeat of the simulation. One tick is one simulated
// second and one atomic unit of work; a tick is never partially applied.
package engine

import (
	"context"
	"sync"
	"time"
)

// Scheduler drives the engine at a fixed period on a single logical
// thread. It knows nothing about the economy - only time progression and
// play-time accounting.
//
// LOCK ORDER: s.mu is never held across a call into the engine (onTick,
// onFlush), and the engine must not call back into the scheduler while
// holding its own lock. Both callbacks run lock-free from this side.
type Scheduler struct {
	period time.Duration
	clock  func() time.Time

	onTick  func()              // one simulation tick
	onFlush func(time.Duration) // credit elapsed running time

	mu           sync.Mutex
	running      bool
	paused       bool
	sessionStart time.Time
	sessionAccum time.Duration // running time flushed since Start
	stopChan     chan struct{}
}

// NewScheduler wires a scheduler to its tick and play-time callbacks.
func NewScheduler(period time.Duration, onTick func(), onFlush func(time.Duration)) *Scheduler {
	return &Scheduler{
		period:  period,
		clock:   time.Now,
		onTick:  onTick,
		onFlush: onFlush,
	}
}

// SetClock overrides the wall clock. Test hook.
func (s *Scheduler) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Start begins the loop. Call in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.paused = false
	s.sessionStart = s.clock()
	s.sessionAccum = 0
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			skip := s.paused || !s.running
			s.mu.Unlock()
			if skip {
				continue
			}
			s.onTick()
		}
	}
}

// flushLocked credits elapsed running time exactly once and rebases the
// session start, so a later flush cannot count the same interval again.
// Caller holds s.mu and must hand the returned duration to notifyFlush
// after releasing it.
func (s *Scheduler) flushLocked() time.Duration {
	now := s.clock()
	var elapsed time.Duration
	if !s.paused {
		if d := now.Sub(s.sessionStart); d > 0 {
			elapsed = d
			s.sessionAccum += d
		}
	}
	s.sessionStart = now
	return elapsed
}

// notifyFlush delivers flushed running time to the play-time callback.
// Must run without s.mu held: the callback takes the engine's lock.
func (s *Scheduler) notifyFlush(elapsed time.Duration) {
	if elapsed > 0 && s.onFlush != nil {
		s.onFlush(elapsed)
	}
}

// Pause suspends ticking. Elapsed running time is flushed immediately;
// wall-clock time spent paused is never credited.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if !s.running || s.paused {
		s.mu.Unlock()
		return
	}
	elapsed := s.flushLocked()
	s.paused = true
	s.mu.Unlock()
	s.notifyFlush(elapsed)
}

// Resume restarts ticking after a pause.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || !s.paused {
		return
	}
	s.paused = false
	s.sessionStart = s.clock()
}

// Stop halts the loop and flushes any remaining running time.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	elapsed := s.flushLocked()
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()
	s.notifyFlush(elapsed)
}

// Paused reports whether the scheduler is currently paused.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SessionDuration is the accumulated running time of this session,
// including the current unflushed segment.
func (s *Scheduler) SessionDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.sessionAccum
	if s.running && !s.paused {
		d += s.clock().Sub(s.sessionStart)
	}
	return d
}
