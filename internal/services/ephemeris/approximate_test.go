package ephemeris

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/services/timeconv"
)

func TestApproximatePositionsAtJ2000(t *testing.T) {
	eph := NewApproximateEphemeris()
	ctx := context.Background()

	// Reference longitudes for 2000-01-01 12:00 UT, with the tolerance the
	// reduced model is expected to meet.
	want := []struct {
		body models.Body
		lon  float64
		tol  float64
	}{
		{models.Sun, 280.37, 0.05},
		{models.Moon, 223.32, 0.5},
		{models.Mercury, 271.89, 0.2},
		{models.Mars, 327.96, 0.2},
		{models.Jupiter, 25.25, 0.3},
		{models.Saturn, 40.40, 0.3},
		{models.Chiron, 251.5, 1.5},
		{models.NorthNode, 125.04, 0.01},
	}
	for _, w := range want {
		pos, err := eph.PointPosition(ctx, timeconv.J2000, w.body, models.DefaultCalcFlags)
		require.NoError(t, err, w.body.String())
		assert.InDelta(t, w.lon, pos.Longitude, w.tol, w.body.String())
	}
}

func TestApproximateSpeeds(t *testing.T) {
	eph := NewApproximateEphemeris()
	ctx := context.Background()

	sun, err := eph.PointPosition(ctx, timeconv.J2000, models.Sun, models.DefaultCalcFlags)
	require.NoError(t, err)
	assert.InDelta(t, 1.019, sun.LongitudeSpeed, 0.01)
	assert.InDelta(t, 0.983, sun.Distance, 0.001)

	// Saturn was retrograde at the turn of 2000, Mercury around 2000-03-01.
	saturn, err := eph.PointPosition(ctx, timeconv.J2000, models.Saturn, models.DefaultCalcFlags)
	require.NoError(t, err)
	assert.Less(t, saturn.LongitudeSpeed, 0.0)

	mercury, err := eph.PointPosition(ctx, timeconv.J2000+60, models.Mercury, models.DefaultCalcFlags)
	require.NoError(t, err)
	assert.Less(t, mercury.LongitudeSpeed, 0.0)

	node, err := eph.PointPosition(ctx, timeconv.J2000, models.NorthNode, models.DefaultCalcFlags)
	require.NoError(t, err)
	assert.InDelta(t, -0.05295, node.LongitudeSpeed, 1e-4)
}

func TestApproximateUnknownBody(t *testing.T) {
	_, err := NewApproximateEphemeris().PointPosition(context.Background(), timeconv.J2000, models.Body(42), 0)
	var ece *models.EphemerisComputationError
	require.True(t, errors.As(err, &ece))
	assert.Equal(t, "position", ece.Op)
}

func TestApproximateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewApproximateEphemeris().PointPosition(ctx, timeconv.J2000, models.Sun, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnglesFromSiderealTime(t *testing.T) {
	eps := 23.439291
	assert.InDelta(t, 90.0, Ascendant(0, eps, 0), 1e-9)
	assert.InDelta(t, 0.0, Midheaven(0, eps), 1e-9)
	assert.InDelta(t, 180.0, Ascendant(90, eps, 51.5), 1e-9)
	assert.InDelta(t, 90.0, Midheaven(90, eps), 1e-9)
	assert.InDelta(t, 268.78, Ascendant(200, eps, 40), 0.01)
	assert.InDelta(t, 201.64, Midheaven(200, eps), 0.01)
	assert.InDelta(t, 280.46061837, SiderealTime(timeconv.J2000, 0), 1e-9)
}

func TestApproximateHouses(t *testing.T) {
	eph := NewApproximateEphemeris()
	ctx := context.Background()

	ws, err := eph.HousesAndAngles(ctx, timeconv.J2000, 40, -74, models.WholeSign)
	require.NoError(t, err)
	start := float64(int(ws.Ascendant/30) * 30)
	for i, c := range ws.Cusps {
		assert.InDelta(t, normDeg(start+float64(i)*30), c, 1e-9)
	}

	eq, err := eph.HousesAndAngles(ctx, timeconv.J2000, 40, -74, models.Equal)
	require.NoError(t, err)
	assert.InDelta(t, eq.Ascendant, eq.Cusps[0], 1e-9)

	emc, err := eph.HousesAndAngles(ctx, timeconv.J2000, 40, -74, models.EqualMC)
	require.NoError(t, err)
	assert.InDelta(t, emc.Midheaven, emc.Cusps[9], 1e-9)

	po, err := eph.HousesAndAngles(ctx, timeconv.J2000, 40, -74, models.Porphyry)
	require.NoError(t, err)
	assert.InDelta(t, po.Ascendant, po.Cusps[0], 1e-9)
	assert.InDelta(t, po.Midheaven, po.Cusps[9], 1e-9)
	assert.InDelta(t, normDeg(po.Midheaven+180), po.Cusps[3], 1e-9)
	for i := 1; i < 12; i++ {
		gap := normDeg(po.Cusps[i] - po.Cusps[i-1])
		assert.Greater(t, gap, 0.0)
		assert.Less(t, gap, 90.0)
	}
}

func TestApproximateHousesFailures(t *testing.T) {
	eph := NewApproximateEphemeris()
	ctx := context.Background()

	_, err := eph.HousesAndAngles(ctx, timeconv.J2000, 78.2, 15.6, models.Porphyry)
	var ece *models.EphemerisComputationError
	require.True(t, errors.As(err, &ece))
	assert.Equal(t, "houses", ece.Op)

	_, err = eph.HousesAndAngles(ctx, timeconv.J2000, 40, -74, models.Placidus)
	require.True(t, errors.As(err, &ece))

	_, err = eph.HousesAndAngles(ctx, timeconv.J2000, 95, 0, models.WholeSign)
	require.True(t, errors.As(err, &ece))

	// Whole-sign houses are defined everywhere.
	_, err = eph.HousesAndAngles(ctx, timeconv.J2000, 78.2, 15.6, models.WholeSign)
	require.NoError(t, err)
}
