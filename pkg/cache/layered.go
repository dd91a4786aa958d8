package cache

import (
	"context"
	"reflect"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: Redis).
type LayeredCache struct {
	memCache   *MemoryCache
	redisCache *RedisCache
	l1TTL      time.Duration
}

// NewLayeredCache creates a layered cache with memory and Redis.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
		L1TTL:         time.Hour,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memCache:   NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		redisCache: redisCache,
		l1TTL:      cfg.L1TTL,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// Write-through: Redis first, then memory
	if err := lc.redisCache.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, lc.promoteTTL(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}

	if err := lc.redisCache.Get(ctx, key, dest); err != nil {
		return err
	}

	// Promote the decoded value, never outliving the L2 entry.
	ttl := lc.l1TTL
	if remaining, err := lc.redisCache.TTL(ctx, key); err == nil && remaining > 0 {
		ttl = lc.promoteTTL(remaining)
	}
	_ = lc.memCache.Set(ctx, key, reflect.ValueOf(dest).Elem().Interface(), ttl)
	return nil
}

func (lc *LayeredCache) promoteTTL(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.l1TTL {
		return expiration
	}
	return lc.l1TTL
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.redisCache.Delete(ctx, keys...)
}

func (lc *LayeredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	_ = lc.memCache.DeleteByPattern(ctx, pattern)
	return lc.redisCache.DeleteByPattern(ctx, pattern)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.memCache.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.redisCache.Exists(ctx, keys...)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.redisCache.Close()
}
