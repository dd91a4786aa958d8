package cache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"AstroCore/pkg/logger"
)

// Memoizer is a namespaced get-or-compute layer over a Service. Concurrent
// misses on one key share a single computation. Failed computations are not
// stored, so the next call retries.
type Memoizer struct {
	store     Service
	namespace string
	group     singleflight.Group
	onLookup  func(namespace string, hit bool)
	log       *logger.Logger
}

// MemoOption configures a Memoizer.
type MemoOption func(*Memoizer)

// WithLookupHook is called after every lookup with the hit/miss outcome.
func WithLookupHook(fn func(namespace string, hit bool)) MemoOption {
	return func(m *Memoizer) { m.onLookup = fn }
}

// WithMemoLogger logs store failures, which never fail the call.
func WithMemoLogger(l *logger.Logger) MemoOption {
	return func(m *Memoizer) { m.log = l }
}

func NewMemoizer(store Service, namespace string, opts ...MemoOption) *Memoizer {
	m := &Memoizer{store: store, namespace: namespace, log: logger.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Namespace returns the key prefix.
func (m *Memoizer) Namespace() string { return m.namespace }

// Key prefixes key with the namespace.
func (m *Memoizer) Key(key string) string { return m.namespace + ":" + key }

// Invalidate drops one key.
func (m *Memoizer) Invalidate(ctx context.Context, key string) error {
	return m.store.Delete(ctx, m.Key(key))
}

// Purge drops every key in the namespace.
func (m *Memoizer) Purge(ctx context.Context) error {
	return m.store.DeleteByPattern(ctx, BuildPattern(m.namespace))
}

func (m *Memoizer) lookup(hit bool) {
	if m.onLookup != nil {
		m.onLookup(m.namespace, hit)
	}
}

// GetOrCompute returns the cached value for key or runs compute and caches
// its result for ttl. The cached value is returned unmodified until it
// expires; callers must treat it as read-only. Cache read or write errors
// degrade to computing without caching.
//
// Concurrent callers share one computation. It runs detached from the
// cancellation of whichever caller started it, and each caller stops waiting
// when its own ctx is done.
func GetOrCompute[T any](ctx context.Context, m *Memoizer, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	full := m.Key(key)

	var cached T
	err := m.store.Get(ctx, full, &cached)
	if err == nil {
		m.lookup(true)
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		m.log.Warn("cache read failed", logger.String("key", full), logger.Error(err))
	}
	m.lookup(false)

	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(full, func() (interface{}, error) {
		res, err := compute(shared)
		if err != nil {
			return res, err
		}
		if err := m.store.Set(shared, full, res, ttl); err != nil {
			m.log.Warn("cache write failed", logger.String("key", full), logger.Error(err))
		}
		return res, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		res, _ := r.Val.(T)
		return res, nil
	}
}
