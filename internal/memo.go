package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Memo is a keyed cache of expensive computations. Concurrent requests for a
// key that isn't fresh share one in-flight computation, and failures are never
// cached.
//
// Entries older than maxAge are treated as absent but stay in the table until
// they're overwritten.
type Memo[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]

	maxAge time.Duration // Zero means entries never expire.
	now    func() time.Time

	metrics *memoMetrics
}

// entry is a single table slot. createdAt is never mutated after creation.
type entry[V any] struct {
	value     V
	hasValue  bool
	createdAt time.Time
	pending   *flight[V] // Set while a computation is running.
}

// flight is one shared unit of work. Publishing val/err happens-before
// close(done), so readers after <-done observe the final values.
type flight[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// NewMemo creates an empty table. Metrics are registered on reg under the
// given name.
func NewMemo[K comparable, V any](name string, maxAge time.Duration, reg prometheus.Registerer) *Memo[K, V] {
	return &Memo[K, V]{
		entries: map[K]*entry[V]{},
		maxAge:  maxAge,
		now:     time.Now,
		metrics: newMemoMetrics(reg, name),
	}
}

// Get returns the value for key if a fresh one exists. It never waits on a
// pending computation.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.fresh(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetOrCompute returns a fresh value for key, computing it with fn if
// necessary. fn runs at most once at a time per key. Callers arriving while it
// runs wait for its result.
//
// fn receives a context that isn't cancelled when ctx is, because other
// callers may be waiting on it. A cancelled ctx only stops this caller from
// waiting.
func (m *Memo[K, V]) GetOrCompute(ctx context.Context, key K, fn func(context.Context) (V, error)) (V, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && m.fresh(e) {
		m.mu.Unlock()
		m.metrics.hits.Inc()
		return e.value, nil
	}
	m.metrics.misses.Inc()

	if ok && e.pending != nil {
		f := e.pending
		m.mu.Unlock()
		m.metrics.coalesced.Inc()
		return f.wait(ctx)
	}

	// We're the leader. Publish the placeholder before releasing the lock so
	// anyone arriving during the computation attaches to it.
	f := &flight[V]{done: make(chan struct{})}
	m.entries[key] = &entry[V]{createdAt: m.now(), pending: f}
	m.mu.Unlock()

	m.metrics.computes.Inc()
	go m.compute(context.WithoutCancel(ctx), key, f, fn)

	return f.wait(ctx)
}

// compute runs fn and settles the flight. On success the entry gets its value;
// on failure the entry is dropped so the next caller retries.
func (m *Memo[K, V]) compute(ctx context.Context, key K, f *flight[V], fn func(context.Context) (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			Log(ctx).Error("panic", "details", r)
			f.err = fmt.Errorf("computation panicked: %v", r)
			m.settle(key, f)
		}
	}()

	f.val, f.err = fn(ctx)
	m.settle(key, f)
}

func (m *Memo[K, V]) settle(key K, f *flight[V]) {
	m.mu.Lock()
	// Only touch the slot if it's still ours. A Put may have replaced it.
	if e, ok := m.entries[key]; ok && e.pending == f {
		if f.err != nil {
			delete(m.entries, key)
		} else {
			m.entries[key] = &entry[V]{value: f.val, hasValue: true, createdAt: e.createdAt}
		}
	}
	m.mu.Unlock()

	if f.err != nil {
		m.metrics.failures.Inc()
	}
	close(f.done)
}

func (f *flight[V]) wait(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Put inserts or overwrites a value, stamped with the current time.
func (m *Memo[K, V]) Put(key K, value V) {
	m.Restore(key, value, m.now())
}

// Restore inserts a value with an explicit creation time, e.g. when loading
// a persisted snapshot.
func (m *Memo[K, V]) Restore(key K, value V, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &entry[V]{value: value, hasValue: true, createdAt: createdAt}
}

// Snapshotted is a point-in-time copy of an entry's value.
type Snapshotted[V any] struct {
	Value     V
	CreatedAt time.Time
}

// Snapshot copies every entry that holds a value, including stale ones.
func (m *Memo[K, V]) Snapshot() map[K]Snapshotted[V] {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[K]Snapshotted[V], len(m.entries))
	for k, e := range m.entries {
		if !e.hasValue {
			continue
		}
		out[k] = Snapshotted[V]{Value: e.value, CreatedAt: e.createdAt}
	}
	return out
}

// fresh must be called with the lock held.
func (m *Memo[K, V]) fresh(e *entry[V]) bool {
	if !e.hasValue {
		return false
	}
	if m.maxAge <= 0 {
		return true
	}
	return m.now().Sub(e.createdAt) <= m.maxAge
}
