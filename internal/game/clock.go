package game

import (
	"sync"
	"time"
)

// Phase tags each pending timer so a late-firing callback can be
// recognized as stale.
type Phase int

const (
	PhaseCountdown Phase = iota
	PhaseStimulus
	PhaseTimeout
	PhaseAdvance
)

type pendingTimer struct {
	gen   uint64
	timer *time.Timer
}

// Clock owns all delayed scheduling for a running trial. At most one
// timer is pending per phase; scheduling a phase replaces its previous
// timer, and a replaced or cancelled callback never runs.
type Clock struct {
	mu     sync.Mutex
	gen    uint64
	timers map[Phase]*pendingTimer
}

func NewClock() *Clock {
	return &Clock{timers: make(map[Phase]*pendingTimer)}
}

// Schedule runs fn after d unless the phase is cancelled or rescheduled
// first.
func (c *Clock) Schedule(p Phase, d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.timers[p]; ok {
		old.timer.Stop()
	}
	c.gen++
	gen := c.gen
	pt := &pendingTimer{gen: gen}
	pt.timer = time.AfterFunc(d, func() {
		if !c.claim(p, gen) {
			return
		}
		fn()
	})
	c.timers[p] = pt
}

// claim reports whether a firing callback is still the current one for
// its phase, clearing the registration if so. Stop cannot prevent a timer
// whose callback is already running, so this check is the real guard.
func (c *Clock) claim(p Phase, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	pt, ok := c.timers[p]
	if !ok || pt.gen != gen {
		return false
	}
	delete(c.timers, p)
	return true
}

func (c *Clock) Cancel(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pt, ok := c.timers[p]; ok {
		pt.timer.Stop()
		delete(c.timers, p)
	}
}

// CancelAll drops every pending timer. Pause and abort use this.
func (c *Clock) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p, pt := range c.timers {
		pt.timer.Stop()
		delete(c.timers, p)
	}
}

// Pending reports whether a timer is registered for the phase.
func (c *Clock) Pending(p Phase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.timers[p]
	return ok
}
