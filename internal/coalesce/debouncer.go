// Package coalesce provides trailing-edge debouncing on an injectable clock.
package coalesce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer runs an action once after a burst of triggers has been quiet
// for the configured delay. Each Trigger restarts the window; there is no
// leading-edge invocation.
//
// The action runs on the clock's timer goroutine.
type Debouncer struct {
	clock  clockwork.Clock
	delay  time.Duration
	action func()

	mu    sync.Mutex
	timer clockwork.Timer
	gen   uint64
}

// New creates a Debouncer. The clock is injected so tests can drive it
// with clockwork.NewFakeClock.
func New(clock clockwork.Clock, delay time.Duration, action func()) *Debouncer {
	return &Debouncer{
		clock:  clock,
		delay:  delay,
		action: action,
	}
}

// Trigger arms the timer, superseding any pending deadline.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Delay returns the quiescence window.
func (d *Debouncer) Delay() time.Duration { return d.delay }

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A Trigger that lost the race against an expiring timer bumps gen.
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.action()
}
