package source

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Action is one sample of the script's motion curve.
type Action struct {
	At  int64 `json:"at"`  // timestamp in milliseconds, >= 0
	Pos int   `json:"pos"` // position 0-100
}

// Sequence is an ordered list of actions. Timestamps must be strictly
// increasing; nothing in this module reorders them.
type Sequence []Action

// Clone returns an independent copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Last returns the final action and false if the sequence is empty.
func (s Sequence) Last() (Action, bool) {
	if len(s) == 0 {
		return Action{}, false
	}
	return s[len(s)-1], true
}

// Validate reports the first action that breaks the ordering or range rules.
func Validate(s Sequence) error {
	for i, a := range s {
		if a.At < 0 {
			return fmt.Errorf("action %d: negative timestamp %d", i, a.At)
		}
		if a.Pos < 0 || a.Pos > 100 {
			return fmt.Errorf("action %d: position %d out of range", i, a.Pos)
		}
		if i > 0 && a.At <= s[i-1].At {
			return fmt.Errorf("action %d: timestamp %d not after %d", i, a.At, s[i-1].At)
		}
	}
	return nil
}

type Axis int

const (
	AxisPrimary Axis = iota
	AxisSecondary
)

func (a Axis) String() string {
	switch a {
	case AxisPrimary:
		return "primary"
	case AxisSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Source provides read-only access to the action sequences of a script.
type Source interface {
	Actions(axis Axis) Sequence
}

// Store is the in-memory action data the editor mutates. Readers outside the
// editing goroutine must go through Snapshot.
type Store struct {
	mu        sync.RWMutex
	primary   Sequence
	secondary Sequence
	live      atomic.Bool
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) axisPtr(axis Axis) *Sequence {
	if axis == AxisSecondary {
		return &s.secondary
	}
	return &s.primary
}

// Set replaces the sequence of an axis with a copy of seq.
func (s *Store) Set(axis Axis, seq Sequence) error {
	if err := Validate(seq); err != nil {
		return fmt.Errorf("set %s: %w", axis, err)
	}
	s.mu.Lock()
	*s.axisPtr(axis) = seq.Clone()
	s.mu.Unlock()
	return nil
}

// Append adds an action to the end of an axis. The timestamp must be later
// than the current last action.
func (s *Store) Append(axis Axis, a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.axisPtr(axis)
	if last, ok := seq.Last(); ok && a.At <= last.At {
		return fmt.Errorf("append %s: timestamp %d not after %d", axis, a.At, last.At)
	}
	if err := Validate(Sequence{a}); err != nil {
		return fmt.Errorf("append %s: %w", axis, err)
	}
	*seq = append(*seq, a)
	return nil
}

// Actions implements Source. The returned slice is a snapshot.
func (s *Store) Actions(axis Axis) Sequence {
	return s.Snapshot(axis)
}

// Snapshot returns a deep copy of an axis, safe to hand to another goroutine.
func (s *Store) Snapshot(axis Axis) Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.axisPtr(axis).Clone()
}

func (s *Store) Count(axis Axis) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(*s.axisPtr(axis))
}

// SetLive toggles the live capture flag.
func (s *Store) SetLive(v bool) {
	s.live.Store(v)
}

func (s *Store) Live() bool {
	return s.live.Load()
}
