package ephemeris

import (
	"context"
	"fmt"
	"math"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/services/timeconv"
)

const (
	auKM = 149597870.7
	// general precession in longitude, degrees per Julian century
	precessionRate = 1.396971
	// half-width of the central difference used for speeds, in days
	speedStep = 0.5
)

// ApproximateEphemeris is the reduced-accuracy adapter. Planets come from
// mean Keplerian elements projected to geocentric ecliptic coordinates, the
// Moon from a truncated lunar series, the node from its mean motion. Expect
// errors from arc-minutes for the Sun to about a degree for Chiron.
// Charts computed with it are labelled models.AccuracyApproximate.
type ApproximateEphemeris struct{}

func NewApproximateEphemeris() *ApproximateEphemeris { return &ApproximateEphemeris{} }

func (a *ApproximateEphemeris) Name() string { return "approximate" }

func (a *ApproximateEphemeris) Accuracy() models.Accuracy { return models.AccuracyApproximate }

// PointPosition returns the tropical geocentric position of body with
// central-difference speeds. flags are accepted for interface parity.
func (a *ApproximateEphemeris) PointPosition(ctx context.Context, jd float64, body models.Body, _ models.CalcFlag) (models.PointPosition, error) {
	if err := ctx.Err(); err != nil {
		return models.PointPosition{}, &models.EphemerisComputationError{Op: "position", Body: body.String(), Err: err}
	}
	pos, ok := position(jd, body)
	if !ok {
		return models.PointPosition{}, &models.EphemerisComputationError{
			Op: "position", Body: body.String(), Err: fmt.Errorf("body id %d not supported in approximate mode", body.ID()),
		}
	}
	before, _ := position(jd-speedStep, body)
	after, _ := position(jd+speedStep, body)
	span := 2 * speedStep
	pos.LongitudeSpeed = lonDelta(before.Longitude, after.Longitude) / span
	pos.LatitudeSpeed = (after.Latitude - before.Latitude) / span
	pos.DistanceSpeed = (after.Distance - before.Distance) / span
	return pos, nil
}

func position(jd float64, body models.Body) (models.PointPosition, bool) {
	t := timeconv.JulianCenturies(jd)
	switch body {
	case models.Sun:
		lon, lat, r := orbitEarth.heliocentric(t).spherical()
		return ofDate(normDeg(lon+180), -lat, r, t), true
	case models.Moon:
		return moon(jd), true
	case models.NorthNode:
		d := jd - timeconv.J2000
		return models.PointPosition{Longitude: normDeg(125.04452 - 0.0529538083*d)}, true
	}
	o, ok := planetOrbits[body]
	if !ok {
		return models.PointPosition{}, false
	}
	earth := orbitEarth.heliocentric(t)
	lon, lat, r := o.heliocentric(t).sub(earth).spherical()
	return ofDate(lon, lat, r, t), true
}

var planetOrbits = map[models.Body]orbit{
	models.Mercury: orbitMercury,
	models.Venus:   orbitVenus,
	models.Mars:    orbitMars,
	models.Jupiter: orbitJupiter,
	models.Saturn:  orbitSaturn,
	models.Uranus:  orbitUranus,
	models.Neptune: orbitNeptune,
	models.Pluto:   orbitPluto,
	models.Chiron:  orbitChiron,
}

// ofDate moves a J2000 longitude to the equinox of date.
func ofDate(lon, lat, r, t float64) models.PointPosition {
	return models.PointPosition{Longitude: normDeg(lon + precessionRate*t), Latitude: lat, Distance: r}
}

// moon evaluates the leading terms of the lunar longitude, latitude and
// distance series. Distance is returned in AU.
func moon(jd float64) models.PointPosition {
	d := jd - timeconv.J2000
	l := 218.316 + 13.176396*d  // mean longitude
	m := 134.963 + 13.064993*d  // mean anomaly
	f := 93.272 + 13.229350*d   // argument of latitude
	el := 297.850 + 12.190749*d // mean elongation
	ms := 357.529 + 0.98560028*d

	sin := func(x float64) float64 { return math.Sin(rad(x)) }
	cos := func(x float64) float64 { return math.Cos(rad(x)) }

	lon := l + 6.289*sin(m) +
		1.274*sin(2*el-m) +
		0.658*sin(2*el) +
		0.214*sin(2*m) -
		0.186*sin(ms) -
		0.114*sin(2*f)
	lat := 5.128*sin(f) + 0.281*sin(m+f) + 0.278*sin(m-f)
	dist := 385001 - 20905*cos(m) - 3699*cos(2*el-m) - 2956*cos(2*el)

	return models.PointPosition{Longitude: normDeg(lon), Latitude: lat, Distance: dist / auKM}
}

// HousesAndAngles derives the angles from local sidereal time and builds
// cusps for the systems that need no quadrant trisection by time.
func (a *ApproximateEphemeris) HousesAndAngles(ctx context.Context, jd, lat, lon float64, hs models.HouseSystem) (models.HouseData, error) {
	if err := ctx.Err(); err != nil {
		return models.HouseData{}, &models.EphemerisComputationError{Op: "houses", Err: err}
	}
	data, err := approximateHouses(jd, lat, lon, hs)
	if err != nil {
		return models.HouseData{}, &models.EphemerisComputationError{Op: "houses", Err: err}
	}
	return data, nil
}
