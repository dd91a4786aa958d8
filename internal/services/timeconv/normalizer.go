package timeconv

import (
	"errors"
	"strings"
	"sync"
	"time"

	// embedded zoneinfo
	_ "time/tzdata"

	"AstroCore/internal/domain/models"
)

const (
	dateLayout = "2006-01-02"
	// DefaultClock is substituted by chart calculators when the birth time is unknown.
	DefaultClock = "12:00"
)

var clockLayouts = []string{"15:04", "15:04:05"}

var (
	errEmpty  = errors.New("empty value")
	errDSTGap = errors.New("wall-clock time does not exist in zone (DST gap)")
)

// Normalizer converts civil dates in an IANA zone to Julian days.
// Loaded zones are cached; it is safe for concurrent use.
type Normalizer struct {
	zones sync.Map // name -> *time.Location
}

func NewNormalizer() *Normalizer { return &Normalizer{} }

// Location resolves an IANA zone name. "Local" and empty names are rejected
// so results never depend on the host configuration.
func (n *Normalizer) Location(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &models.TimeConversionError{Field: "timezone", Value: name, Err: errEmpty}
	}
	if name == "Local" {
		return nil, &models.TimeConversionError{Field: "timezone", Value: name, Err: errors.New("host-local zone is not allowed")}
	}
	if v, ok := n.zones.Load(name); ok {
		return v.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &models.TimeConversionError{Field: "timezone", Value: name, Err: err}
	}
	n.zones.Store(name, loc)
	return loc, nil
}

// LocalTime builds the instant for a civil date and wall-clock time in tz.
// The zone offset is the one in force on that date. Times skipped by a DST
// transition are rejected.
func (n *Normalizer) LocalTime(date, clock, tz string) (time.Time, error) {
	loc, err := n.Location(tz)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, &models.TimeConversionError{Field: "date", Value: date, Err: err}
	}
	c, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc)
	if t.Day() != d.Day() || t.Hour() != c.Hour() || t.Minute() != c.Minute() {
		return time.Time{}, &models.TimeConversionError{Field: "time", Value: clock, Err: errDSTGap}
	}
	return t, nil
}

// LocalToJulianDay converts date ("YYYY-MM-DD"), clock ("HH:MM" or
// "HH:MM:SS") and an IANA zone into a Julian day (UT). A missing clock is an
// error; callers decide what to substitute.
func (n *Normalizer) LocalToJulianDay(date, clock, tz string) (float64, error) {
	t, err := n.LocalTime(date, clock, tz)
	if err != nil {
		return 0, err
	}
	return JulianDay(t), nil
}

func parseClock(clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return time.Time{}, &models.TimeConversionError{Field: "time", Value: clock, Err: errEmpty}
	}
	var lastErr error
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, clock)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &models.TimeConversionError{Field: "time", Value: clock, Err: lastErr}
}
