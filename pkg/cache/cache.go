package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface. Values are replaced wholesale
// by Set; there is no partial update.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Get copies the cached value into dest, which must be a non-nil pointer.
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}
