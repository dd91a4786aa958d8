package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestMemoryCacheReturnsStoredPointer(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := &sample{Name: "sun", Value: 280.37}
	require.NoError(t, mc.Set(ctx, "k", in, time.Minute))

	var out *sample
	require.NoError(t, mc.Get(ctx, "k", &out))
	assert.Same(t, in, out)

	var byValue sample
	require.NoError(t, mc.Get(ctx, "k", &byValue))
	assert.Equal(t, *in, byValue)
}

func TestMemoryCacheJSONFallback(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", map[string]interface{}{"name": "moon", "value": 1.5}, time.Minute))
	var out sample
	require.NoError(t, mc.Get(ctx, "k", &out))
	assert.Equal(t, sample{Name: "moon", Value: 1.5}, out)

	assert.Error(t, mc.Get(ctx, "k", out))
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", 20*time.Millisecond))
	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
	ok, _ = mc.Exists(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	time.Sleep(2 * time.Millisecond)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v)) // a is now most recent
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	for _, k := range []string{"natal:1", "natal:2", "transit:1"} {
		require.NoError(t, mc.Set(ctx, k, k, time.Minute))
	}
	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("natal")))

	ok, _ := mc.Exists(ctx, "natal:1", "natal:2")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "transit:1")
	assert.True(t, ok)
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "natal:1990-06-15:unknown:W", GenerateKeyWithParams("natal", "1990-06-15", "unknown", "W"))
	assert.Len(t, HashKey("x"), 32)
}
