package hover

import (
	"context"
	"sync"
)

// FetchFunc loads the value for key. It should return promptly once ctx is
// cancelled.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

type Response[K comparable, V any] struct {
	Key   K
	Value V
	Err   error
}

// Fetcher runs at most one live request at a time. A new request cancels the
// one in flight, and only the newest request's response is ever delivered on
// Results. An unread response is replaced by a newer one.
type Fetcher[K comparable, V any] struct {
	fetch   FetchFunc[K, V]
	results chan Response[K, V]

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFetcher[K comparable, V any](fetch FetchFunc[K, V]) *Fetcher[K, V] {
	return &Fetcher[K, V]{
		fetch:   fetch,
		results: make(chan Response[K, V], 1),
	}
}

func (f *Fetcher[K, V]) Results() <-chan Response[K, V] {
	return f.results
}

// Request starts fetching key, superseding any earlier request.
func (f *Fetcher[K, V]) Request(ctx context.Context, key K) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	id := f.seq
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer cancel()
		v, err := f.fetch(ctx, key)
		f.deliver(id, Response[K, V]{Key: key, Value: v, Err: err})
	}()
}

func (f *Fetcher[K, V]) deliver(id uint64, r Response[K, V]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.seq {
		return
	}
	select {
	case <-f.results:
	default:
	}
	f.results <- r
}

// Cancel abandons the request in flight; its response is not delivered.
func (f *Fetcher[K, V]) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.seq++
}

// Wait blocks until every started fetch has returned.
func (f *Fetcher[K, V]) Wait() {
	f.wg.Wait()
}
