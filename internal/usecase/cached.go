package usecase

import (
	"context"
	"time"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/domain/service"
	"AstroCore/pkg/cache"
	"AstroCore/pkg/util"
)

// Default cache lifetimes per chart kind.
const (
	DefaultNatalTTL     = 7 * 24 * time.Hour
	DefaultTransitTTL   = time.Hour
	DefaultCompositeTTL = 7 * 24 * time.Hour
)

// ComputedHook runs after a fresh (not cache-served) computation succeeds.
type ComputedHook func(ctx context.Context, key string, chart models.Chart, took time.Duration)

// CacheConfig configures the cached charters.
type CacheConfig struct {
	TTL        time.Duration
	OnComputed ComputedHook
	Now        func() time.Time
}

type CacheOption func(*CacheConfig)

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CacheConfig) {
		if ttl > 0 {
			c.TTL = ttl
		}
	}
}

func WithComputedHook(h ComputedHook) CacheOption {
	return func(c *CacheConfig) { c.OnComputed = h }
}

func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *CacheConfig) { c.Now = now }
}

func buildCacheConfig(ttl time.Duration, opts []CacheOption) *CacheConfig {
	cfg := &CacheConfig{TTL: ttl, Now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *CacheConfig) computed(ctx context.Context, key string, chart models.Chart, start time.Time) {
	if c.OnComputed != nil {
		c.OnComputed(ctx, key, chart, time.Since(start))
	}
}

// CachedNatal memoizes a NatalCharter.
type CachedNatal struct {
	next     service.NatalCharter
	memo     *cache.Memoizer
	accuracy models.Accuracy
	cfg      *CacheConfig
}

var _ service.NatalCharter = (*CachedNatal)(nil)

func NewCachedNatal(next service.NatalCharter, memo *cache.Memoizer, acc models.Accuracy, opts ...CacheOption) *CachedNatal {
	return &CachedNatal{next: next, memo: memo, accuracy: acc, cfg: buildCacheConfig(DefaultNatalTTL, opts)}
}

func (c *CachedNatal) Compute(ctx context.Context, req models.NatalRequest) (*models.NatalChart, error) {
	key := NatalKey(req, c.accuracy)
	return cache.GetOrCompute(ctx, c.memo, key, c.cfg.TTL, func(ctx context.Context) (*models.NatalChart, error) {
		start := time.Now()
		chart, err := c.next.Compute(ctx, req)
		if err != nil {
			return nil, err
		}
		c.cfg.computed(ctx, c.memo.Key(key), chart, start)
		return chart, nil
	})
}

// CachedTransit memoizes a TransitCharter at hour granularity. Requests
// within the same hour share the chart computed for the top of that hour.
type CachedTransit struct {
	next     service.TransitCharter
	memo     *cache.Memoizer
	accuracy models.Accuracy
	cfg      *CacheConfig
}

var _ service.TransitCharter = (*CachedTransit)(nil)

func NewCachedTransit(next service.TransitCharter, memo *cache.Memoizer, acc models.Accuracy, opts ...CacheOption) *CachedTransit {
	return &CachedTransit{next: next, memo: memo, accuracy: acc, cfg: buildCacheConfig(DefaultTransitTTL, opts)}
}

func (c *CachedTransit) Compute(ctx context.Context, req models.TransitRequest) (*models.TransitChart, error) {
	at := req.At
	if at.IsZero() {
		at = c.cfg.Now()
	}
	req.At = util.TopOfHour(at)
	key := TransitKey(req.At, req.Natal, req.WithAspects, c.accuracy)
	return cache.GetOrCompute(ctx, c.memo, key, c.cfg.TTL, func(ctx context.Context) (*models.TransitChart, error) {
		start := time.Now()
		chart, err := c.next.Compute(ctx, req)
		if err != nil {
			return nil, err
		}
		c.cfg.computed(ctx, c.memo.Key(key), chart, start)
		return chart, nil
	})
}

// CachedComposite memoizes a CompositeCharter with a pair-order independent key.
type CachedComposite struct {
	next     service.CompositeCharter
	memo     *cache.Memoizer
	accuracy models.Accuracy
	cfg      *CacheConfig
}

var _ service.CompositeCharter = (*CachedComposite)(nil)

func NewCachedComposite(next service.CompositeCharter, memo *cache.Memoizer, acc models.Accuracy, opts ...CacheOption) *CachedComposite {
	return &CachedComposite{next: next, memo: memo, accuracy: acc, cfg: buildCacheConfig(DefaultCompositeTTL, opts)}
}

func (c *CachedComposite) Compute(ctx context.Context, req models.CompositeRequest) (*models.CompositeChart, error) {
	key := CompositeKey(req, c.accuracy)
	return cache.GetOrCompute(ctx, c.memo, key, c.cfg.TTL, func(ctx context.Context) (*models.CompositeChart, error) {
		start := time.Now()
		chart, err := c.next.Compute(ctx, req)
		if err != nil {
			return nil, err
		}
		c.cfg.computed(ctx, c.memo.Key(key), chart, start)
		return chart, nil
	})
}
