package engine

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TickInterval bounds how often the timer reports seconds remaining.
const TickInterval = time.Second

// PickTimer drives the time pressure for the current pick. One authoritative
// deadline instant is the only source of truth; ticks and expiry are both
// derived from it, never from a decremented counter.
//
// The expiry callback carries the pick number the timer was armed for so the
// serialization point can discard stale fires (a manual pick that raced the
// deadline, or a reset). The timer never mutates session state itself.
type PickTimer struct {
	clock    clockwork.Clock
	onExpire func(pickNumber int)
	onTick   func(pickNumber, secondsRemaining int)

	mu        sync.Mutex
	gen       uint64 // bumped on every arm/stop; run loops exit on mismatch
	pickNum   int
	deadline  time.Time
	remaining time.Duration // only meaningful while paused
	paused    bool
	running   bool
	stopCh    chan struct{}
}

// NewPickTimer creates a timer. onTick may be nil.
func NewPickTimer(clock clockwork.Clock, onExpire func(pickNumber int), onTick func(pickNumber, secondsRemaining int)) *PickTimer {
	return &PickTimer{clock: clock, onExpire: onExpire, onTick: onTick}
}

// Start arms a deadline of now+duration for the given pick number.
func (t *PickTimer) Start(pickNumber int, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.arm(pickNumber, duration)
}

// Reset re-arms a fresh full-duration deadline for the next pick. Called
// whenever a pick, manual or auto, is recorded.
func (t *PickTimer) Reset(pickNumber int, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.arm(pickNumber, duration)
}

// Pause freezes the remaining time and stops the countdown. Idempotent.
func (t *PickTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused || !t.running {
		return
	}
	t.remaining = t.deadline.Sub(t.clock.Now())
	if t.remaining < 0 {
		t.remaining = 0
	}
	t.paused = true
	t.running = false
	t.cancelLocked()
}

// Resume re-arms the deadline as now+remaining. No-op if not paused.
func (t *PickTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused {
		return
	}
	t.paused = false
	t.arm(t.pickNum, t.remaining)
}

// Stop cancels the countdown and any pending expiry.
func (t *PickTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
	t.running = false
	t.cancelLocked()
}

// Deadline reports the armed deadline; ok is false while stopped or paused.
func (t *PickTimer) Deadline() (deadline time.Time, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline, t.running
}

// Remaining reports time left on the clock, frozen while paused.
func (t *PickTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused {
		return t.remaining
	}
	if !t.running {
		return 0
	}
	rem := t.deadline.Sub(t.clock.Now())
	if rem < 0 {
		rem = 0
	}
	return rem
}

// arm requires t.mu held.
func (t *PickTimer) arm(pickNumber int, duration time.Duration) {
	t.cancelLocked()
	t.gen++
	t.pickNum = pickNumber
	t.deadline = t.clock.Now().Add(duration)
	t.paused = false
	t.running = true
	t.stopCh = make(chan struct{})

	timer := t.clock.NewTimer(duration)
	ticker := t.clock.NewTicker(TickInterval)
	go t.run(t.gen, pickNumber, timer, ticker, t.stopCh)
}

// cancelLocked requires t.mu held.
func (t *PickTimer) cancelLocked() {
	t.gen++
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
}

func (t *PickTimer) run(gen uint64, pickNumber int, timer clockwork.Timer, ticker clockwork.Ticker, stop chan struct{}) {
	defer timer.Stop()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return

		case <-ticker.Chan():
			t.mu.Lock()
			if gen != t.gen {
				t.mu.Unlock()
				return
			}
			secs := int(t.deadline.Sub(t.clock.Now()).Round(time.Second) / time.Second)
			if secs < 0 {
				secs = 0
			}
			t.mu.Unlock()
			if t.onTick != nil {
				t.onTick(pickNumber, secs)
			}

		case <-timer.Chan():
			t.mu.Lock()
			if gen != t.gen {
				t.mu.Unlock()
				return
			}
			t.running = false
			t.mu.Unlock()
			log.Debug().Int("pick_number", pickNumber).Msg("pick timer expired")
			if t.onExpire != nil {
				t.onExpire(pickNumber)
			}
			return
		}
	}
}
