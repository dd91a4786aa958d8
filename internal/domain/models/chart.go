package models

import "time"

// ChartKind tags the chart variant.
type ChartKind string

const (
	KindNatal     ChartKind = "natal"
	KindTransit   ChartKind = "transit"
	KindComposite ChartKind = "composite"
)

// FormattedPoint is the placed, human-facing view of a PointPosition.
// Longitude is truncated to two decimals; ExactLongitude keeps the full value
// for derived charts.
type FormattedPoint struct {
	Name           string  `json:"name"`
	Sign           Sign    `json:"sign"`
	SignGlyph      string  `json:"sign_glyph"`
	Degree         int     `json:"degree"`
	Minute         int     `json:"minute"`
	Longitude      float64 `json:"longitude"`
	ExactLongitude float64 `json:"exact_longitude"`
	House          int     `json:"house,omitempty"`
	Retrograde     bool    `json:"retrograde"`
	Speed          float64 `json:"speed"`
}

// Exact returns the untruncated longitude, falling back to Longitude for
// points built without one.
func (p FormattedPoint) Exact() float64 {
	if p.ExactLongitude == 0 {
		return p.Longitude
	}
	return p.ExactLongitude
}

// HouseCusp is the start of one house.
type HouseCusp struct {
	House       int     `json:"house"`
	Sign        Sign    `json:"sign"`
	SignGlyph   string  `json:"sign_glyph"`
	StartDegree float64 `json:"start_degree"`
	Degree      float64 `json:"degree"`
}

// Angles holds the primary chart angles.
type Angles struct {
	Ascendant FormattedPoint `json:"ascendant"`
	Midheaven FormattedPoint `json:"midheaven"`
}

// Chart is implemented by NatalChart, TransitChart and CompositeChart only.
type Chart interface {
	Kind() ChartKind
	PointList() []FormattedPoint
	AspectList() []Aspect
	sealed()
}

// NatalChart is a birth chart.
type NatalChart struct {
	JulianDay          float64          `json:"julian_day"`
	HouseSystem        HouseSystem      `json:"house_system"`
	Accuracy           Accuracy         `json:"accuracy"`
	TimeUnknownApplied bool             `json:"time_unknown_applied"`
	Points             []FormattedPoint `json:"points"`
	Houses             []HouseCusp      `json:"houses"`
	Angles             Angles           `json:"angles"`
	Aspects            []Aspect         `json:"aspects,omitempty"`
}

func (c *NatalChart) Kind() ChartKind             { return KindNatal }
func (c *NatalChart) PointList() []FormattedPoint { return c.Points }
func (c *NatalChart) AspectList() []Aspect        { return c.Aspects }
func (c *NatalChart) sealed()                     {}

// AspectPoints returns the bodies followed by the two angles, the input
// set for aspect detection.
func (c *NatalChart) AspectPoints() []FormattedPoint {
	out := make([]FormattedPoint, 0, len(c.Points)+2)
	out = append(out, c.Points...)
	return append(out, c.Angles.Ascendant, c.Angles.Midheaven)
}

// Point finds a point by name.
func (c *NatalChart) Point(name string) (FormattedPoint, bool) {
	return findPoint(c.Points, name)
}

// TransitChart holds location-independent positions at a UTC instant.
type TransitChart struct {
	CalculatedAt  time.Time        `json:"calculated_at"`
	JulianDay     float64          `json:"julian_day"`
	Accuracy      Accuracy         `json:"accuracy"`
	Points        []FormattedPoint `json:"points"`
	Aspects       []Aspect         `json:"aspects,omitempty"`
	ComparedNatal bool             `json:"compared_natal"`
}

func (c *TransitChart) Kind() ChartKind             { return KindTransit }
func (c *TransitChart) PointList() []FormattedPoint { return c.Points }
func (c *TransitChart) AspectList() []Aspect        { return c.Aspects }
func (c *TransitChart) sealed()                     {}

// CompositeChart is the midpoint chart of two natal charts.
type CompositeChart struct {
	HouseSystem HouseSystem      `json:"house_system"`
	Accuracy    Accuracy         `json:"accuracy"`
	Points      []FormattedPoint `json:"points"`
	Houses      []HouseCusp      `json:"houses"`
	Angles      Angles           `json:"angles"`
	Aspects     []Aspect         `json:"aspects,omitempty"`
}

func (c *CompositeChart) Kind() ChartKind             { return KindComposite }
func (c *CompositeChart) PointList() []FormattedPoint { return c.Points }
func (c *CompositeChart) AspectList() []Aspect        { return c.Aspects }
func (c *CompositeChart) sealed()                     {}

// AspectPoints returns the composite bodies and angles.
func (c *CompositeChart) AspectPoints() []FormattedPoint {
	out := make([]FormattedPoint, 0, len(c.Points)+2)
	out = append(out, c.Points...)
	return append(out, c.Angles.Ascendant, c.Angles.Midheaven)
}

func findPoint(points []FormattedPoint, name string) (FormattedPoint, bool) {
	for _, p := range points {
		if p.Name == name {
			return p, true
		}
	}
	return FormattedPoint{}, false
}

// BirthData describes one person's birth moment and place.
type BirthData struct {
	Date        string  `json:"date"`           // YYYY-MM-DD
	Time        string  `json:"time,omitempty"` // HH:MM[:SS], empty when unknown
	TimeUnknown bool    `json:"time_unknown"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
}

// HasTime reports whether a usable birth time was supplied.
func (b BirthData) HasTime() bool { return !b.TimeUnknown && b.Time != "" }

// NatalRequest is the input of a natal calculation.
type NatalRequest struct {
	Birth       BirthData   `json:"birth"`
	HouseSystem HouseSystem `json:"house_system"`
	WithAspects bool        `json:"with_aspects"`
}

// TransitRequest is the input of a transit calculation.
type TransitRequest struct {
	At          time.Time   `json:"at"`
	Natal       *NatalChart `json:"-"`
	WithAspects bool        `json:"with_aspects"`
}

// CompositeRequest is the input of a composite calculation.
type CompositeRequest struct {
	A           BirthData   `json:"a"`
	B           BirthData   `json:"b"`
	HouseSystem HouseSystem `json:"house_system"`
	WithAspects bool        `json:"with_aspects"`
}
