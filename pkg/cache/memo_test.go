package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeRunsOnce(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	m := NewMemoizer(mc, "natal")
	ctx := context.Background()

	var calls int32
	compute := func(context.Context) (*sample, error) {
		atomic.AddInt32(&calls, 1)
		return &sample{Name: "chart"}, nil
	}

	first, err := GetOrCompute(ctx, m, "k", time.Minute, compute)
	require.NoError(t, err)
	second, err := GetOrCompute(ctx, m, "k", time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Same(t, first, second)

	ok, _ := mc.Exists(ctx, "natal:k")
	assert.True(t, ok)
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	m := NewMemoizer(mc, "natal")
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := GetOrCompute(ctx, m, "k", time.Minute, func(context.Context) (*sample, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	ok, _ := mc.Exists(ctx, "natal:k")
	assert.False(t, ok)

	got, err := GetOrCompute(ctx, m, "k", time.Minute, func(context.Context) (*sample, error) {
		return &sample{Name: "retry"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "retry", got.Name)
}

func TestGetOrComputeExpires(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	m := NewMemoizer(mc, "transit")
	ctx := context.Background()

	var calls int32
	compute := func(context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	v, _ := GetOrCompute(ctx, m, "k", 20*time.Millisecond, compute)
	assert.Equal(t, 1, v)
	time.Sleep(40 * time.Millisecond)
	v, _ = GetOrCompute(ctx, m, "k", 20*time.Millisecond, compute)
	assert.Equal(t, 2, v)
}

func TestGetOrComputeSharesInFlight(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	m := NewMemoizer(mc, "natal")
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	compute := func(context.Context) (*sample, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &sample{Name: "shared"}, nil
	}

	var wg sync.WaitGroup
	results := make([]*sample, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = GetOrCompute(ctx, m, "k", time.Minute, compute)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestGetOrComputeIgnoresOtherCallersCancellation(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	m := NewMemoizer(mc, "transit")

	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(ctx context.Context) (*sample, error) {
		close(started)
		select {
		case <-release:
			return &sample{Name: "shared"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := GetOrCompute(leaderCtx, m, "k", time.Minute, compute)
		leaderErr <- err
	}()
	<-started

	type result struct {
		v   *sample
		err error
	}
	follower := make(chan result, 1)
	go func() {
		v, err := GetOrCompute(context.Background(), m, "k", time.Minute, compute)
		follower <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	got := <-follower
	require.NoError(t, got.err)
	assert.Equal(t, "shared", got.v.Name)

	ok, _ := mc.Exists(context.Background(), "transit:k")
	assert.True(t, ok)
}

func TestLookupHook(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var hits, misses int
	m := NewMemoizer(mc, "composite", WithLookupHook(func(ns string, hit bool) {
		assert.Equal(t, "composite", ns)
		if hit {
			hits++
		} else {
			misses++
		}
	}))
	ctx := context.Background()
	compute := func(context.Context) (string, error) { return "x", nil }

	_, _ = GetOrCompute(ctx, m, "a", time.Minute, compute)
	_, _ = GetOrCompute(ctx, m, "a", time.Minute, compute)
	_, _ = GetOrCompute(ctx, m, "b", time.Minute, compute)

	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

type failingStore struct{ Service }

func (failingStore) Get(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}

func TestGetOrComputeSurvivesStoreFailure(t *testing.T) {
	m := NewMemoizer(&failingStore{}, "natal")
	v, err := GetOrCompute(context.Background(), m, "k", time.Minute, func(context.Context) (string, error) {
		return "computed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
}

func TestPurgeNamespace(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()
	natal := NewMemoizer(mc, "natal")
	transit := NewMemoizer(mc, "transit")

	compute := func(context.Context) (string, error) { return "x", nil }
	_, _ = GetOrCompute(ctx, natal, "a", time.Minute, compute)
	_, _ = GetOrCompute(ctx, transit, "a", time.Minute, compute)

	require.NoError(t, natal.Purge(ctx))
	ok, _ := mc.Exists(ctx, natal.Key("a"))
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, transit.Key("a"))
	assert.True(t, ok)
}

func TestInvalidateRecomputes(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()
	m := NewMemoizer(mc, "composite")

	var calls int32
	compute := func(context.Context) (int32, error) { return atomic.AddInt32(&calls, 1), nil }

	v, err := GetOrCompute(ctx, m, "pair", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	require.NoError(t, m.Invalidate(ctx, "pair"))
	v, err = GetOrCompute(ctx, m, "pair", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
}
