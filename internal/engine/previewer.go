package engine

import (
	"github.com/ivlev/funpreview/internal/renderer"
	"github.com/ivlev/funpreview/internal/source"
)

// ActionStore is the part of source.Store the previewer reads.
type ActionStore interface {
	Snapshot(axis source.Axis) source.Sequence
	Count(axis source.Axis) int
	Live() bool
}

// Previewer keeps the timeline and heatmap surfaces up to date. It is meant
// to be driven from a single goroutine, once per frame of the host UI.
type Previewer struct {
	Pool   *Pool
	Policy *Policy
	Store  ActionStore
	Detail renderer.Detail

	surfaces map[Kind]*Surface
}

func NewPreviewer(pool *Pool, policy *Policy, store ActionStore) *Previewer {
	if policy == nil {
		policy = NewPolicy(DefaultThrottle)
	}
	return &Previewer{
		Pool:   pool,
		Policy: policy,
		Store:  store,
		surfaces: map[Kind]*Surface{
			KindTimeline: {Dirty: true},
			KindHeatmap:  {Dirty: true},
		},
	}
}

// Surface returns the tracked state for kind.
func (p *Previewer) Surface(kind Kind) *Surface {
	s, ok := p.surfaces[kind]
	if !ok {
		s = &Surface{Dirty: true}
		p.surfaces[kind] = s
	}
	return s
}

// MarkDirty forces the next Tick for kind to regenerate.
func (p *Previewer) MarkDirty(kind Kind) {
	p.Surface(kind).Dirty = true
}

// Tick submits a render for kind when the policy says the surface is stale.
// It reports whether a task was handed to the pool.
func (p *Previewer) Tick(kind Kind, width, height int, duration float64) bool {
	s := p.Surface(kind)
	count := p.Store.Count(source.AxisPrimary)
	live := p.Store.Live()

	if !p.Policy.Decide(s, width, duration, count, live) {
		return false
	}

	task := Task{
		Kind:     kind,
		Width:    width,
		Height:   height,
		Duration: duration,
		Detail:   p.Detail,
		Actions:  p.Store.Snapshot(source.AxisPrimary),
	}
	ok := p.Pool.Submit(task)
	p.Policy.Commit(s, width, duration, count, live)
	return ok
}
