// Package hover tracks the pointer over a preview strip and fetches data for
// the hovered position without sharing mutable state across goroutines.
package hover

import (
	"math"
	"time"
)

const (
	DefaultTolerance = 1e-4
	DefaultDelay     = 300 * time.Millisecond
)

// State is either Idle or Hovering.
type State interface {
	isState()
}

type Idle struct{}

// Hovering means the pointer has rested near Pos (normalized 0..1) since
// Since.
type Hovering struct {
	Since time.Time
	Pos   float64
}

func (Idle) isState()     {}
func (Hovering) isState() {}

// Tracker is the hover state machine for one strip. Positions closer than
// Tolerance count as the same position. It is owned by the UI goroutine.
type Tracker struct {
	Tolerance float64
	state     State
}

func NewTracker() *Tracker {
	return &Tracker{Tolerance: DefaultTolerance, state: Idle{}}
}

func (t *Tracker) State() State {
	if t.state == nil {
		return Idle{}
	}
	return t.state
}

// Move reports the pointer at pos. Staying within tolerance keeps the dwell
// timer running; anything else restarts it.
func (t *Tracker) Move(pos float64, now time.Time) State {
	if h, ok := t.state.(Hovering); ok && math.Abs(pos-h.Pos) <= t.Tolerance {
		return h
	}
	t.state = Hovering{Since: now, Pos: pos}
	return t.state
}

// Leave returns to Idle.
func (t *Tracker) Leave() {
	t.state = Idle{}
}

// Dwell is how long the pointer has rested, zero when idle.
func (t *Tracker) Dwell(now time.Time) time.Duration {
	h, ok := t.state.(Hovering)
	if !ok {
		return 0
	}
	return now.Sub(h.Since)
}

// Ready reports whether the pointer has rested for at least delay, and
// where.
func (t *Tracker) Ready(now time.Time, delay time.Duration) (float64, bool) {
	h, ok := t.state.(Hovering)
	if !ok || now.Sub(h.Since) < delay {
		return 0, false
	}
	return h.Pos, true
}
