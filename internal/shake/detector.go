// Package shake turns device-motion samples into a single coalesced
// "clear" request per burst of shaking.
package shake

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/markthomas93/WBBMTT/internal/coalesce"
	"github.com/markthomas93/WBBMTT/internal/domain"
)

const (
	DefaultThreshold = 300
	DefaultDelay     = 1000 * time.Millisecond
)

// State is the detector state.
type State int

const (
	Idle State = iota
	Cooling
)

func (s State) String() string {
	if s == Cooling {
		return "cooling"
	}
	return "idle"
}

// Detector is a two-state machine. An over-threshold sample while Idle
// arms the debouncer and enters Cooling; further over-threshold samples
// only restart the window. When the window elapses onShake runs once and
// the detector returns to Idle.
type Detector struct {
	threshold float64
	onShake   func()
	debounce  *coalesce.Debouncer

	mu       sync.Mutex
	state    State
	disabled bool
}

// NewDetector creates a detector. onShake runs on the clock's timer goroutine.
func NewDetector(clock clockwork.Clock, threshold float64, delay time.Duration, onShake func()) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	d := &Detector{threshold: threshold, onShake: onShake}
	d.debounce = coalesce.New(clock, delay, d.settle)
	return d
}

// Sample feeds one motion reading and reports whether it counted as a shake.
func (d *Detector) Sample(m domain.Motion) bool {
	if m.Acceleration == nil {
		return false
	}
	if m.Acceleration.MagnitudeSquared() <= d.threshold {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disabled {
		return false
	}
	d.state = Cooling
	d.debounce.Trigger()
	return true
}

// Disable turns the detector off, e.g. when no motion sensor exists.
func (d *Detector) Disable() {
	d.mu.Lock()
	d.disabled = true
	d.mu.Unlock()
}

// Enabled reports whether samples are still considered.
func (d *Detector) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.disabled
}

// State returns the current state.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Detector) settle() {
	d.mu.Lock()
	d.state = Idle
	d.mu.Unlock()

	if d.onShake != nil {
		d.onShake()
	}
}
