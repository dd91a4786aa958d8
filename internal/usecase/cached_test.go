package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/services/aspects"
	"AstroCore/pkg/cache"
)

func newMemo(t *testing.T, ns string) *cache.Memoizer {
	t.Helper()
	store := cache.NewMemoryCache(cache.WithMemoryCleanup(time.Hour))
	t.Cleanup(func() { _ = store.Close() })
	return cache.NewMemoizer(store, ns)
}

func TestCachedNatalComputesOnce(t *testing.T) {
	eph := newFakeEphemeris()
	var hooks int
	cached := NewCachedNatal(newNatal(eph), newMemo(t, NamespaceNatal), eph.Accuracy(),
		WithComputedHook(func(context.Context, string, models.Chart, time.Duration) { hooks++ }))

	req := models.NatalRequest{Birth: birth("1990-06-15", "14:30"), WithAspects: true}
	first, err := cached.Compute(context.Background(), req)
	require.NoError(t, err)
	calls := eph.calls.Load()

	second, err := cached.Compute(context.Background(), req)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, calls, eph.calls.Load())
	assert.Equal(t, 1, hooks)
}

func TestCachedNatalDoesNotCacheFailures(t *testing.T) {
	eph := newFakeEphemeris()
	eph.failOn = models.Venus
	eph.failErr = errors.New("unavailable")
	cached := NewCachedNatal(newNatal(eph), newMemo(t, NamespaceNatal), eph.Accuracy())
	req := models.NatalRequest{Birth: birth("1990-06-15", "14:30")}

	_, err := cached.Compute(context.Background(), req)
	require.Error(t, err)

	eph.failOn = -1
	chart, err := cached.Compute(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, chart)
}

func TestCachedNatalConcurrentCallers(t *testing.T) {
	eph := newFakeEphemeris()
	cached := NewCachedNatal(newNatal(eph), newMemo(t, NamespaceNatal), eph.Accuracy())
	req := models.NatalRequest{Birth: birth("1990-06-15", "14:30")}

	var wg sync.WaitGroup
	charts := make([]*models.NatalChart, 8)
	for i := range charts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := cached.Compute(context.Background(), req)
			assert.NoError(t, err)
			charts[i] = c
		}(i)
	}
	wg.Wait()

	for _, c := range charts {
		require.NotNil(t, c)
		assert.Equal(t, charts[0].Points, c.Points)
	}
}

func TestCachedTransitSharesTheHour(t *testing.T) {
	eph := newFakeEphemeris()
	cached := NewCachedTransit(NewTransitCalculator(eph, aspects.NewEngine()), newMemo(t, NamespaceTransit), eph.Accuracy())

	a, err := cached.Compute(context.Background(), models.TransitRequest{At: time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)})
	require.NoError(t, err)
	b, err := cached.Compute(context.Background(), models.TransitRequest{At: time.Date(2024, 3, 1, 10, 55, 0, 0, time.UTC)})
	require.NoError(t, err)
	c, err := cached.Compute(context.Background(), models.TransitRequest{At: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), a.CalculatedAt)
}

func TestCachedCompositeIgnoresPairOrder(t *testing.T) {
	eph := newFakeEphemeris()
	cached := NewCachedComposite(newComposite(eph), newMemo(t, NamespaceComposite), eph.Accuracy())
	a := birth("1985-02-01", "08:00")
	b := birth("1990-06-15", "14:30")

	ab, err := cached.Compute(context.Background(), models.CompositeRequest{A: a, B: b})
	require.NoError(t, err)
	ba, err := cached.Compute(context.Background(), models.CompositeRequest{A: b, B: a})
	require.NoError(t, err)
	assert.Same(t, ab, ba)
}

func TestKeys(t *testing.T) {
	b := birth("1990-06-15", "14:30")
	assert.Equal(t,
		"birth:1990-06-15:14:30:40.7128:-74.006:America/New_York:W:true:precise",
		NatalKey(models.NatalRequest{Birth: b, WithAspects: true}, models.AccuracyPrecise))

	b.TimeUnknown = true
	assert.Contains(t, NatalKey(models.NatalRequest{Birth: b}, models.AccuracyPrecise), ":unknown:")

	at := time.Date(2024, 3, 1, 10, 59, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T10:none:false:approximate", TransitKey(at, nil, false, models.AccuracyApproximate))

	x, y := birth("1985-02-01", "08:00"), birth("1990-06-15", "14:30")
	assert.Equal(t,
		CompositeKey(models.CompositeRequest{A: x, B: y}, models.AccuracyPrecise),
		CompositeKey(models.CompositeRequest{A: y, B: x}, models.AccuracyPrecise))
}

func TestKeysKeepFullPrecision(t *testing.T) {
	a := birth("1990-06-15", "14:30")
	b := a
	b.Latitude += 0.00001
	assert.NotEqual(t,
		NatalKey(models.NatalRequest{Birth: a}, models.AccuracyPrecise),
		NatalKey(models.NatalRequest{Birth: b}, models.AccuracyPrecise))

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	natal := func(lon, speed float64) *models.NatalChart {
		return &models.NatalChart{Points: []models.FormattedPoint{{Name: "Sun", Longitude: 10, ExactLongitude: lon, Speed: speed}}}
	}
	base := TransitKey(at, natal(10.001, 1), true, models.AccuracyPrecise)
	assert.NotEqual(t, base, TransitKey(at, natal(10.002, 1), true, models.AccuracyPrecise))
	assert.NotEqual(t, base, TransitKey(at, natal(10.001, -1), true, models.AccuracyPrecise))
	assert.Equal(t, base, TransitKey(at.Add(59*time.Minute), natal(10.001, 1), true, models.AccuracyPrecise))
}

func TestChartAuditorArchivesAndPublishes(t *testing.T) {
	archive := &fakeArchive{}
	pub := &fakePublisher{}
	auditor := NewChartAuditor(archive, pub, nil, nil)

	eph := newFakeEphemeris()
	cached := NewCachedNatal(newNatal(eph), newMemo(t, NamespaceNatal), eph.Accuracy(), WithComputedHook(auditor.Hook()))
	_, err := cached.Compute(context.Background(), models.NatalRequest{Birth: birth("1990-06-15", "14:30")})
	require.NoError(t, err)
	auditor.Wait()

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, models.KindNatal, ev.Kind)
	assert.Equal(t, models.AccuracyPrecise, ev.Accuracy)
	assert.Equal(t, len(models.TrackedBodies), ev.PointCount)
	assert.NotEmpty(t, ev.ID)

	require.Len(t, archive.records, len(models.TrackedBodies))
	for _, r := range archive.records {
		assert.Equal(t, ev.ID, r.ChartID)
		assert.Equal(t, ev.CacheKey, r.CacheKey)
	}
}

func TestChartAuditorFailureDoesNotStopPublishing(t *testing.T) {
	archive := &fakeArchive{err: errors.New("clickhouse down")}
	pub := &fakePublisher{}
	auditor := NewChartAuditor(archive, pub, nil, nil)

	auditor.Record(context.Background(), "natal:x", &models.NatalChart{Accuracy: models.AccuracyPrecise}, time.Millisecond)
	auditor.Wait()
	assert.Len(t, pub.events, 1)
}

func TestPrecomputeHandlerWarmsCache(t *testing.T) {
	eph := newFakeEphemeris()
	cached := NewCachedNatal(newNatal(eph), newMemo(t, NamespaceNatal), eph.Accuracy())
	h := NewPrecomputeHandler("charts.precompute", cached, nil, nil)
	assert.Equal(t, "charts.precompute", h.Topic())

	msg, err := json.Marshal(models.PrecomputeRequest{Birth: birth("1990-06-15", "14:30"), HouseSystem: "whole_sign"})
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), msg))
	calls := eph.calls.Load()

	_, err = cached.Compute(context.Background(), models.NatalRequest{Birth: birth("1990-06-15", "14:30")})
	require.NoError(t, err)
	assert.Equal(t, calls, eph.calls.Load())
}

func TestPrecomputeHandlerRejectsBadMessages(t *testing.T) {
	h := NewPrecomputeHandler("t", NewCachedNatal(newNatal(newFakeEphemeris()), newMemo(t, NamespaceNatal), models.AccuracyPrecise), nil, nil)
	assert.Error(t, h.Handle(context.Background(), []byte("{")))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"house_system":"nope"}`)))
}
