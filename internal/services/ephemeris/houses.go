package ephemeris

import (
	"fmt"
	"math"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/services/timeconv"
)

// polarLimit is the latitude beyond which the ecliptic can coincide with the
// horizon and quadrant cusps are undefined.
const polarLimit = 66.56

// Obliquity is the mean obliquity of the ecliptic in degrees.
func Obliquity(jd float64) float64 {
	return 23.439291 - 0.0130042*timeconv.JulianCenturies(jd)
}

// SiderealTime is the local mean sidereal time in degrees for an east-positive
// longitude.
func SiderealTime(jd, lon float64) float64 {
	return normDeg(280.46061837 + 360.98564736629*(jd-timeconv.J2000) + lon)
}

// Midheaven is the ecliptic longitude culminating at armc.
func Midheaven(armc, eps float64) float64 {
	return normDeg(deg(math.Atan2(math.Sin(rad(armc)), math.Cos(rad(armc))*math.Cos(rad(eps)))))
}

// Ascendant is the ecliptic longitude rising in the east at armc and latitude lat.
func Ascendant(armc, eps, lat float64) float64 {
	r, e := rad(armc), rad(eps)
	return normDeg(deg(math.Atan2(math.Cos(r), -(math.Sin(r)*math.Cos(e) + math.Tan(rad(lat))*math.Sin(e)))))
}

func approximateHouses(jd, lat, lon float64, hs models.HouseSystem) (models.HouseData, error) {
	if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return models.HouseData{}, fmt.Errorf("coordinates out of range: lat %v lon %v", lat, lon)
	}
	eps := Obliquity(jd)
	armc := SiderealTime(jd, lon)
	data := models.HouseData{
		ARMC:                armc,
		Midheaven:           Midheaven(armc, eps),
		Ascendant:           Ascendant(armc, eps, lat),
		EquatorialAscendant: Ascendant(armc, eps, 0),
	}
	if lat >= 0 {
		data.Vertex = Ascendant(armc+180, eps, lat-90)
	} else {
		data.Vertex = Ascendant(armc+180, eps, lat+90)
	}

	switch hs {
	case models.WholeSign:
		start := math.Floor(data.Ascendant/30) * 30
		fillEqual(&data, start, 0)
	case models.Equal, models.EqualAlt:
		fillEqual(&data, data.Ascendant, 0)
	case models.EqualMC:
		fillEqual(&data, data.Midheaven, 9)
	case models.EqualAries:
		fillEqual(&data, 0, 0)
	case models.Porphyry:
		if math.Abs(lat) > polarLimit {
			return models.HouseData{}, fmt.Errorf("house system %s undefined at latitude %.2f", hs, lat)
		}
		fillPorphyry(&data)
	default:
		return models.HouseData{}, fmt.Errorf("house system %s (%s) not available in approximate mode", hs, hs.Code())
	}
	return data, nil
}

// fillEqual places 30° houses with cusp index anchor at start.
func fillEqual(data *models.HouseData, start float64, anchor int) {
	for i := range data.Cusps {
		data.Cusps[i] = normDeg(start + float64(i-anchor)*30)
	}
}

func fillPorphyry(data *models.HouseData) {
	asc, mc := data.Ascendant, data.Midheaven
	ic, dsc := normDeg(mc+180), normDeg(asc+180)
	q1 := normDeg(ic - asc)
	q2 := normDeg(dsc - ic)
	data.Cusps[0] = asc
	data.Cusps[1] = normDeg(asc + q1/3)
	data.Cusps[2] = normDeg(asc + 2*q1/3)
	data.Cusps[3] = ic
	data.Cusps[4] = normDeg(ic + q2/3)
	data.Cusps[5] = normDeg(ic + 2*q2/3)
	for i := 6; i < 12; i++ {
		data.Cusps[i] = normDeg(data.Cusps[i-6] + 180)
	}
}
