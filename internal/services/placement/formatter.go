// Package placement turns raw longitudes into sign, degree and house placements.
package placement

import (
	"math"

	"github.com/shopspring/decimal"

	"AstroCore/internal/domain/models"
)

// minuteEpsilon absorbs float error so 45.5 yields 30' and not 29'.
const minuteEpsilon = 1e-9

// FormatPoint places a raw position. house is 0 when not assigned.
func FormatPoint(name string, pos models.PointPosition, house int) models.FormattedPoint {
	lon := models.NormalizeDegree(pos.Longitude)
	sign := models.SignOf(lon)
	deg, minute := degreeMinute(lon)
	return models.FormattedPoint{
		Name:           name,
		Sign:           sign,
		SignGlyph:      sign.Glyph(),
		Degree:         deg,
		Minute:         minute,
		Longitude:      truncate2(lon),
		ExactLongitude: lon,
		House:          house,
		Retrograde:     pos.LongitudeSpeed < 0,
		Speed:          pos.LongitudeSpeed,
	}
}

// FormatAngle places a chart angle. Angles have no speed.
func FormatAngle(name string, longitude float64, house int) models.FormattedPoint {
	return FormatPoint(name, models.PointPosition{Longitude: longitude}, house)
}

func degreeMinute(lon float64) (int, int) {
	inSign := math.Mod(lon, 30)
	deg := math.Floor(inSign)
	minute := int(math.Floor((inSign-deg)*60 + minuteEpsilon))
	if minute > 59 {
		minute = 59
	}
	return int(deg), minute
}

// truncate2 cuts to two decimals toward zero so a longitude never rounds up
// into the next sign.
func truncate2(v float64) float64 {
	return decimal.NewFromFloat(v).Truncate(2).InexactFloat64()
}
