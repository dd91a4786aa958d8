package placement

import (
	"math"

	"AstroCore/internal/domain/models"
)

// HousePosition returns the whole-sign house (1-12) of degree for a chart
// rising at ascendant.
func HousePosition(degree, ascendant float64) int {
	return 1 + (int(models.SignOf(degree))-int(models.SignOf(ascendant))+12)%12
}

// AssignHouse is HousePosition guarded by the house system. Only whole-sign
// houses follow from sign offsets; anything else needs true cusp boundaries.
func AssignHouse(hs models.HouseSystem, degree, ascendant float64) (int, error) {
	if hs != models.WholeSign {
		return 0, &models.UnsupportedHouseSystemError{System: hs, Op: "assign house"}
	}
	return HousePosition(degree, ascendant), nil
}

// WholeSignCusps returns twelve cusps starting at 0° of the ascendant's sign.
func WholeSignCusps(ascendant float64) []models.HouseCusp {
	first := int(models.SignOf(ascendant))
	cusps := make([]models.HouseCusp, 12)
	for i := range cusps {
		sign := models.Sign((first + i) % 12)
		cusps[i] = models.HouseCusp{
			House:       i + 1,
			Sign:        sign,
			SignGlyph:   sign.Glyph(),
			StartDegree: 0,
			Degree:      float64(int(sign) * 30),
		}
	}
	return cusps
}

// FormatCusps formats the cusps of any house system. Whole-sign cusps are
// rebuilt from the ascendant; other systems use the adapter's cusps as is.
func FormatCusps(hs models.HouseSystem, data models.HouseData) []models.HouseCusp {
	if hs == models.WholeSign {
		return WholeSignCusps(data.Ascendant)
	}
	cusps := make([]models.HouseCusp, 12)
	for i, c := range data.Cusps {
		lon := models.NormalizeDegree(c)
		sign := models.SignOf(lon)
		cusps[i] = models.HouseCusp{
			House:       i + 1,
			Sign:        sign,
			SignGlyph:   sign.Glyph(),
			StartDegree: truncate2(math.Mod(lon, 30)),
			Degree:      truncate2(lon),
		}
	}
	return cusps
}
