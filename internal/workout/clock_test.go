// ABOUTME: Manual clock used by sequencer tests to fire ticks deterministically.
// ABOUTME: Timers fire in due order when the test advances time.
package workout

import (
	"sync"
	"time"
)

type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)}
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.pending = append(c.pending, t)
	return t
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves time forward by d, firing every timer that comes due.
// Callbacks run without the clock lock so they may schedule new timers.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		idx := -1
		for i, t := range c.pending {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if idx == -1 || t.at.Before(c.pending[idx].at) {
				idx = i
			}
		}
		if idx == -1 {
			c.now = target
			c.mu.Unlock()
			return
		}
		next := c.pending[idx]
		next.fired = true
		c.pending = append(c.pending[:idx], c.pending[idx+1:]...)
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

// Active returns the number of timers that are neither stopped nor fired.
func (c *manualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
