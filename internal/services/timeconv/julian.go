package timeconv

import "time"

// J2000 is the Julian day of 2000-01-01 12:00 UTC.
const J2000 = 2451545.0

// JulianDay converts an instant to a Julian day number (UT). The integer
// part uses the Fliegel-Van Flandern day count for the proleptic Gregorian
// calendar, so it is valid for years after -4800.
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	year := t.Year()
	month := int(t.Month())
	day := t.Day()

	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3

	jdn := day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045

	hour := float64(t.Hour())
	minute := float64(t.Minute())
	second := float64(t.Second()) + float64(t.Nanosecond())/1e9

	return float64(jdn) + (hour-12)/24 + minute/1440 + second/86400
}

// JulianCenturies returns Julian centuries of 36525 days since J2000.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / 36525
}
