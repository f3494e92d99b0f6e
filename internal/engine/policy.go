package engine

import (
	"math"
	"time"
)

const (
	DefaultThrottle   = 300 * time.Millisecond
	durationTolerance = 0.01 // seconds
)

// Surface is what was last submitted for one preview surface.
type Surface struct {
	LastWidth       int
	LastDuration    float64
	LastActionCount int
	LastSubmit      time.Time
	Dirty           bool
}

// Policy decides when a surface needs a new render. Geometry changes and
// explicit invalidation always regenerate; a changed action count
// regenerates immediately unless live capture is running, in which case
// updates wait Throttle since the last live submission of any kind.
type Policy struct {
	Throttle time.Duration
	Now      func() time.Time
}

func NewPolicy(throttle time.Duration) *Policy {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Policy{Throttle: throttle, Now: time.Now}
}

func (p *Policy) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Policy) fullRedraw(s *Surface, width int, duration float64) bool {
	return s.Dirty || width != s.LastWidth || math.Abs(duration-s.LastDuration) > durationTolerance
}

// Decide reports whether the surface should be regenerated. A non-positive
// width never regenerates.
func (p *Policy) Decide(s *Surface, width int, duration float64, actionCount int, live bool) bool {
	if width <= 0 {
		return false
	}
	if p.fullRedraw(s, width, duration) {
		return true
	}
	if actionCount == s.LastActionCount {
		return false
	}
	if !live {
		return true
	}
	return p.now().Sub(s.LastSubmit) >= p.Throttle
}

// Commit records a submission. It runs whether or not the task made it into
// the queue; a dropped task is picked up again by the next edit.
func (p *Policy) Commit(s *Surface, width int, duration float64, actionCount int, live bool) {
	s.Dirty = false
	s.LastWidth = width
	s.LastDuration = duration
	s.LastActionCount = actionCount
	if live {
		s.LastSubmit = p.now()
	}
}
