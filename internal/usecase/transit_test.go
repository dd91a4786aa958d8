package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/services/aspects"
)

func TestTransitChartHasNoHouses(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 20, 0, 0, time.FixedZone("X", 3600))
	calc := NewTransitCalculator(newFakeEphemeris(), aspects.NewEngine())

	chart, err := calc.Compute(context.Background(), models.TransitRequest{At: at})
	require.NoError(t, err)

	assert.Equal(t, at.UTC(), chart.CalculatedAt)
	assert.Equal(t, time.UTC, chart.CalculatedAt.Location())
	assert.False(t, chart.ComparedNatal)
	assert.Nil(t, chart.Aspects)
	require.Len(t, chart.Points, len(models.TrackedBodies))
	for _, p := range chart.Points {
		assert.Zero(t, p.House, p.Name)
	}
}

func TestTransitChartDefaultsToNow(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	calc := NewTransitCalculator(newFakeEphemeris(), aspects.NewEngine(), WithClock(func() time.Time { return now }))

	chart, err := calc.Compute(context.Background(), models.TransitRequest{})
	require.NoError(t, err)
	assert.Equal(t, now, chart.CalculatedAt)
}

func TestTransitAspectsAgainstNatalAreCrossPairsOnly(t *testing.T) {
	eph := newFakeEphemeris()
	natal, err := newNatal(eph).Compute(context.Background(), models.NatalRequest{Birth: birth("1990-06-15", "14:30")})
	require.NoError(t, err)

	calc := NewTransitCalculator(eph, aspects.NewEngine())
	chart, err := calc.Compute(context.Background(), models.TransitRequest{
		At:          time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Natal:       natal,
		WithAspects: true,
	})
	require.NoError(t, err)

	assert.True(t, chart.ComparedNatal)
	require.NotEmpty(t, chart.Aspects)
	for _, a := range chart.Aspects {
		t1 := strings.HasPrefix(a.Point1, TransitPrefix)
		t2 := strings.HasPrefix(a.Point2, TransitPrefix)
		assert.NotEqual(t, t1, t2, "%s / %s", a.Point1, a.Point2)
	}
	// transit points themselves keep their plain names
	assert.Equal(t, "Sun", chart.Points[0].Name)
}

func TestTransitToTransitAspects(t *testing.T) {
	calc := NewTransitCalculator(newFakeEphemeris(), aspects.NewEngine())
	chart, err := calc.Compute(context.Background(), models.TransitRequest{
		At:          time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		WithAspects: true,
	})
	require.NoError(t, err)

	require.NotEmpty(t, chart.Aspects)
	for _, a := range chart.Aspects {
		assert.False(t, strings.HasPrefix(a.Point1, TransitPrefix))
	}
}
