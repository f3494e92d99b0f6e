// Package engine runs preview rasterization off the interactive goroutine.
//
// A fixed set of workers reads tasks from a bounded queue, renders them and
// pushes results to a second bounded queue. Producers never block: a task
// that does not fit is dropped, because a newer one will follow on the next
// edit. Results carry no ordering guarantee across kinds; consumers keep the
// newest per kind (see Latest).
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/funpreview/internal/renderer"
	"github.com/ivlev/funpreview/internal/source"
	"github.com/ivlev/funpreview/internal/system"
)

// Kind tells the consumer which surface a result belongs to.
type Kind = renderer.Mode

const (
	KindTimeline = renderer.ModeTimeline
	KindHeatmap  = renderer.ModeHeatmap
)

// Task is a self-contained render request. Actions must be a snapshot the
// producer no longer mutates.
type Task struct {
	Kind     Kind
	Width    int
	Height   int
	Duration float64 // seconds
	Detail   renderer.Detail
	Actions  source.Sequence
}

// Result is a finished preview. Ownership of Image passes to whoever
// dequeues it.
type Result struct {
	Kind  Kind
	Image *image.RGBA
}

// Pix returns the raw RGBA bytes, exactly Width*Height*4 long.
func (r Result) Pix() []byte {
	if r.Image == nil {
		return nil
	}
	return r.Image.Pix
}

// Release hands the buffer back to the image pool. The result must not be
// used afterwards.
func (r Result) Release() {
	if r.Image != nil {
		system.PutImage(r.Image)
	}
}

// RasterFunc renders one task. A panic inside it is recovered by the pool.
type RasterFunc func(Task) *image.RGBA

// RendererFunc adapts a Renderer to a RasterFunc.
func RendererFunc(r *renderer.Renderer) RasterFunc {
	return func(t Task) *image.RGBA {
		return r.Rasterize(t.Width, t.Height, t.Duration, t.Actions, t.Kind, t.Detail)
	}
}

type PoolConfig struct {
	Workers    int
	QueueSize  int
	ResultSize int
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Workers: 2, QueueSize: 8, ResultSize: 8}
}

type Stats struct {
	Submitted int64
	Dropped   int64
	Completed int64
	Failed    int64
}

var (
	ErrAlreadyStarted = errors.New("pool already started")
	ErrStopped        = errors.New("pool stopped")
)

type Pool struct {
	cfg    PoolConfig
	raster RasterFunc
	log    logrus.FieldLogger

	tasks   chan Task
	results chan Result

	mu      sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	stopped atomic.Bool

	submitted atomic.Int64
	dropped   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewPool builds a pool. A nil raster renders with the default Renderer;
// a nil logger discards output.
func NewPool(cfg PoolConfig, raster RasterFunc, log logrus.FieldLogger) *Pool {
	def := DefaultPoolConfig()
	if cfg.Workers < 2 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.ResultSize < 1 {
		cfg.ResultSize = def.ResultSize
	}
	if raster == nil {
		raster = RendererFunc(renderer.New(nil))
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Pool{
		cfg:     cfg,
		raster:  raster,
		log:     log,
		tasks:   make(chan Task, cfg.QueueSize),
		results: make(chan Result, cfg.ResultSize),
	}
}

func (p *Pool) Config() PoolConfig {
	return p.cfg
}

// Start launches the workers. They run until ctx is cancelled or Shutdown
// is called.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped.Load() {
		return ErrStopped
	}
	if p.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		id := i
		p.group.Go(func() error {
			p.worker(ctx, id)
			return nil
		})
	}
	p.log.WithField("workers", p.cfg.Workers).Debug("preview pool started")
	return nil
}

// Shutdown stops the workers and waits for them. A raster call already in
// progress runs to completion. Calling it more than once is harmless.
func (p *Pool) Shutdown() {
	p.stopped.Store(true)

	p.mu.Lock()
	cancel, group := p.cancel, p.group
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	_ = group.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.tasks:
			img, ok := p.run(id, task)
			if !ok {
				continue
			}
			select {
			case p.results <- Result{Kind: task.Kind, Image: img}:
				p.completed.Add(1)
			case <-ctx.Done():
				system.PutImage(img)
				return
			}
		}
	}
}

func (p *Pool) run(id int, task Task) (img *image.RGBA, ok bool) {
	fields := logrus.Fields{
		"worker":  id,
		"kind":    task.Kind.String(),
		"size":    fmt.Sprintf("%dx%d", task.Width, task.Height),
		"actions": len(task.Actions),
	}
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			p.log.WithFields(fields).Errorf("preview task failed: %v", r)
			img, ok = nil, false
		}
	}()

	img = p.raster(task)
	if img == nil {
		p.failed.Add(1)
		p.log.WithFields(fields).Warn("preview task produced no image")
		return nil, false
	}
	return img, true
}

// Submit enqueues a task without blocking. It reports false when the queue
// is full or the pool has been shut down; the task is then dropped.
func (p *Pool) Submit(task Task) bool {
	if p.stopped.Load() {
		p.dropped.Add(1)
		return false
	}
	select {
	case p.tasks <- task:
		p.submitted.Add(1)
		return true
	default:
		p.dropped.Add(1)
		p.log.WithField("kind", task.Kind.String()).Debug("task queue full, dropping preview task")
		return false
	}
}

func (p *Pool) SubmitTimeline(width, height int, duration float64, actions source.Sequence, detail renderer.Detail) bool {
	return p.Submit(Task{Kind: KindTimeline, Width: width, Height: height, Duration: duration, Detail: detail, Actions: actions})
}

func (p *Pool) SubmitHeatmap(width, height int, duration float64, actions source.Sequence) bool {
	return p.Submit(Task{Kind: KindHeatmap, Width: width, Height: height, Duration: duration, Actions: actions})
}

// DrainResults returns every result queued right now without waiting.
func (p *Pool) DrainResults() []Result {
	var out []Result
	for {
		select {
		case r := <-p.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Results exposes the result queue for consumers that prefer to select on it.
func (p *Pool) Results() <-chan Result {
	return p.results
}

func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Dropped:   p.dropped.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Latest keeps the last result of each kind and releases the buffers of the
// ones it supersedes.
func Latest(results []Result) map[Kind]Result {
	out := make(map[Kind]Result, 2)
	for _, r := range results {
		if prev, ok := out[r.Kind]; ok {
			prev.Release()
		}
		out[r.Kind] = r
	}
	return out
}
