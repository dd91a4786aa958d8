package aspects

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroCore/internal/domain/models"
)

func pt(name string, lon, speed float64) models.FormattedPoint {
	return models.FormattedPoint{Name: name, Longitude: lon, Speed: speed}
}

func TestConjunctionWithinOrb(t *testing.T) {
	e := NewEngine()
	got := e.Detect([]models.FormattedPoint{pt("A", 120, 1), pt("B", 123, 0.5)}, nil, nil)

	require.Len(t, got, 1)
	a := got[0]
	assert.Equal(t, models.Conjunction, a.Type)
	assert.Equal(t, 3.0, a.Orb)
	assert.Equal(t, 8.0, a.MaxOrb)
	assert.InDelta(t, 0.625, a.Exactness, 1e-12)
	assert.Equal(t, "A", a.Point1)
	assert.Equal(t, "B", a.Point2)
}

func TestExactTrine(t *testing.T) {
	e := NewEngine()
	got := e.Detect([]models.FormattedPoint{pt("A", 10, 1), pt("B", 130, 1)}, nil, nil)

	require.Len(t, got, 1)
	assert.Equal(t, models.Trine, got[0].Type)
	assert.Equal(t, 0.0, got[0].Orb)
	assert.Equal(t, 1.0, got[0].Exactness)
}

func TestOrbOverrideExcludes(t *testing.T) {
	e := NewEngine()
	points := []models.FormattedPoint{pt("A", 120, 1), pt("B", 123, 0.5)}

	got := e.Detect(points, nil, models.OrbOverrides{models.Conjunction: 1})
	assert.Empty(t, got)

	got = e.Detect(points, nil, models.OrbOverrides{models.Conjunction: 4})
	require.Len(t, got, 1)
	assert.Equal(t, 4.0, got[0].MaxOrb)
}

func TestSeparationWrapsAround(t *testing.T) {
	assert.Equal(t, 20.0, Separation(350, 10))
	assert.Equal(t, 20.0, Separation(10, 350))
	assert.Equal(t, 180.0, Separation(0, 180))
	assert.Equal(t, 0.0, Separation(0, 720))
}

func TestSunMoonPairMultiplier(t *testing.T) {
	points := []models.FormattedPoint{pt("Sun", 0, 1), pt("Moon", 9.5, 13)}

	got := NewEngine().Detect(points, models.NewAspectSet(models.Conjunction), nil)
	require.Len(t, got, 1)
	assert.Equal(t, 10.0, got[0].MaxOrb)

	got = NewEngine(WithoutPairMultipliers()).Detect(points, models.NewAspectSet(models.Conjunction), nil)
	assert.Empty(t, got)

	got = NewEngine(WithPairMultiplier("Moon", "Sun", 1.5)).Detect(points, models.NewAspectSet(models.Conjunction), models.OrbOverrides{models.Conjunction: 7})
	require.Len(t, got, 1)
	assert.Equal(t, 10.5, got[0].MaxOrb)
}

func TestDeclinationTypesSkipped(t *testing.T) {
	got := NewEngine().Detect(
		[]models.FormattedPoint{pt("A", 0, 1), pt("B", 0.2, 1)},
		models.NewAspectSet(models.Parallel, models.ContraParallel),
		nil,
	)
	assert.Empty(t, got)
}

func TestRequestedTypesOnly(t *testing.T) {
	points := []models.FormattedPoint{pt("A", 0, 1), pt("B", 90, 1), pt("C", 180, 1)}
	got := NewEngine().Detect(points, models.NewAspectSet(models.Square), nil)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, models.Square, a.Type)
	}
}

func TestExactnessNonIncreasing(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	points := make([]models.FormattedPoint, 14)
	for i := range points {
		points[i] = pt(string(rune('A'+i)), r.Float64()*360, r.Float64()*2-0.5)
	}
	got := NewEngine().Detect(points, nil, nil)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Exactness, got[i].Exactness)
	}
	for _, a := range got {
		assert.LessOrEqual(t, a.Orb, a.MaxOrb)
		assert.InDelta(t, 1-a.Orb/a.MaxOrb, a.Exactness, 1e-12)
	}
}

func TestStableOrderForTies(t *testing.T) {
	// Two exact oppositions discovered in pair order A-B then C-D.
	points := []models.FormattedPoint{pt("A", 0, 1), pt("B", 180, 1), pt("C", 60, 1), pt("D", 240, 1)}
	got := NewEngine().Detect(points, models.NewAspectSet(models.Opposition), nil)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Point1)
	assert.Equal(t, "C", got[1].Point1)
}

func TestApplying(t *testing.T) {
	conj := models.NewAspectSet(models.Conjunction)
	e := NewEngine()

	// Faster body behind the slower one, both direct: closing.
	got := e.Detect([]models.FormattedPoint{pt("Fast", 10, 1.2), pt("Slow", 13, 0.1)}, conj, nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].Applying)

	// Faster body already past: separating.
	got = e.Detect([]models.FormattedPoint{pt("Fast", 14, 1.2), pt("Slow", 13, 0.1)}, conj, nil)
	require.Len(t, got, 1)
	assert.False(t, got[0].Applying)

	// Across 0° Aries.
	got = e.Detect([]models.FormattedPoint{pt("Fast", 358, 1.2), pt("Slow", 2, 0.1)}, conj, nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].Applying)

	// Both retrograde, faster one ahead in the zodiac moving back onto the slower.
	got = e.Detect([]models.FormattedPoint{pt("Fast", 15, -0.8), pt("Slow", 13, -0.1)}, conj, nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].Applying)

	// Opposite directions: direct body behind the retrograde one.
	got = e.Detect([]models.FormattedPoint{pt("Direct", 10, 0.5), pt("Retro", 12, -0.2)}, conj, nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].Applying)
	got = e.Detect([]models.FormattedPoint{pt("Direct", 12, 0.5), pt("Retro", 10, -0.2)}, conj, nil)
	require.Len(t, got, 1)
	assert.False(t, got[0].Applying)

	opp := models.NewAspectSet(models.Opposition)
	got = e.Detect([]models.FormattedPoint{pt("A", 0, 1), pt("B", 178, -0.1)}, opp, nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].Applying)
	got = e.Detect([]models.FormattedPoint{pt("A", 0, 1), pt("B", 178, 0.1)}, opp, nil)
	require.Len(t, got, 1)
	assert.False(t, got[0].Applying)

	trine := models.NewAspectSet(models.Trine)
	got = e.Detect([]models.FormattedPoint{pt("A", 0, 0.1), pt("B", 121, 1)}, trine, nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].Applying)
	got = e.Detect([]models.FormattedPoint{pt("A", 0, 1), pt("B", 121, 0.1)}, trine, nil)
	require.Len(t, got, 1)
	assert.False(t, got[0].Applying)
}

func TestFilterByImportance(t *testing.T) {
	in := []models.Aspect{
		{Type: models.Conjunction, Exactness: 0.625}, // 0.625
		{Type: models.SemiSextile, Exactness: 1},     // 0.2
		{Type: models.Trine, Exactness: 0.5},         // 0.4
	}
	got := FilterByImportance(in, 0.4)
	require.Len(t, got, 2)
	assert.Equal(t, models.Conjunction, got[0].Type)
	assert.Equal(t, models.Trine, got[1].Type)

	assert.Len(t, Cap(in, 3, 0.9), 3)
	assert.Len(t, Cap(in, 2, 0.9), 0)
}
