package models

import (
	"fmt"
	"strings"
)

// AspectType names an angular relationship.
type AspectType string

const (
	Conjunction    AspectType = "conjunction"
	Opposition     AspectType = "opposition"
	Trine          AspectType = "trine"
	Square         AspectType = "square"
	Sextile        AspectType = "sextile"
	SemiSextile    AspectType = "semi-sextile"
	SemiSquare     AspectType = "semi-square"
	Sesquiquadrate AspectType = "sesquiquadrate"
	Quintile       AspectType = "quintile"
	BiQuintile     AspectType = "bi-quintile"
	Quincunx       AspectType = "quincunx"
	Parallel       AspectType = "parallel"
	ContraParallel AspectType = "contra-parallel"
)

// AspectDefinition holds the fixed properties of an aspect type.
type AspectDefinition struct {
	Type  AspectType
	Angle float64
	Orb   float64 // default maximum orb in degrees
	Power int     // importance weight, 1-10
	// Declination aspects need latitude data and are skipped on the longitude path.
	Declination bool
}

var aspectDefinitions = []AspectDefinition{
	{Type: Conjunction, Angle: 0, Orb: 8, Power: 10},
	{Type: Opposition, Angle: 180, Orb: 8, Power: 10},
	{Type: Trine, Angle: 120, Orb: 8, Power: 8},
	{Type: Square, Angle: 90, Orb: 7, Power: 8},
	{Type: Sextile, Angle: 60, Orb: 6, Power: 5},
	{Type: Quincunx, Angle: 150, Orb: 3, Power: 4},
	{Type: SemiSquare, Angle: 45, Orb: 2, Power: 3},
	{Type: Sesquiquadrate, Angle: 135, Orb: 2, Power: 3},
	{Type: Quintile, Angle: 72, Orb: 2, Power: 3},
	{Type: SemiSextile, Angle: 30, Orb: 2, Power: 2},
	{Type: BiQuintile, Angle: 144, Orb: 2, Power: 2},
	{Type: Parallel, Angle: 0, Orb: 1, Power: 4, Declination: true},
	{Type: ContraParallel, Angle: 180, Orb: 1, Power: 4, Declination: true},
}

// AspectDefinitions returns all 13 definitions in canonical order.
func AspectDefinitions() []AspectDefinition {
	out := make([]AspectDefinition, len(aspectDefinitions))
	copy(out, aspectDefinitions)
	return out
}

// Definition looks up the definition of t.
func (t AspectType) Definition() (AspectDefinition, bool) {
	for _, d := range aspectDefinitions {
		if d.Type == t {
			return d, true
		}
	}
	return AspectDefinition{}, false
}

// Power returns the importance weight of t, 0 if unknown.
func (t AspectType) Power() int {
	d, _ := t.Definition()
	return d.Power
}

// ParseAspectType accepts the canonical name, case-insensitively, with
// underscores or spaces in place of hyphens.
func ParseAspectType(s string) (AspectType, error) {
	norm := strings.ToLower(strings.NewReplacer("_", "-", " ", "-").Replace(strings.TrimSpace(s)))
	t := AspectType(norm)
	if _, ok := t.Definition(); !ok {
		return "", fmt.Errorf("unknown aspect type %q", s)
	}
	return t, nil
}

// AspectSet is a set of requested aspect types.
type AspectSet map[AspectType]struct{}

// NewAspectSet builds a set from the given types.
func NewAspectSet(types ...AspectType) AspectSet {
	s := make(AspectSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// AllAspects returns a set with every aspect type.
func AllAspects() AspectSet {
	s := make(AspectSet, len(aspectDefinitions))
	for _, d := range aspectDefinitions {
		s[d.Type] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s AspectSet) Has(t AspectType) bool {
	_, ok := s[t]
	return ok
}

// OrbOverrides replaces the default orb of an aspect type.
type OrbOverrides map[AspectType]float64

// Aspect is a detected relationship between two named points.
type Aspect struct {
	Point1    string     `json:"point1"`
	Point2    string     `json:"point2"`
	Type      AspectType `json:"type"`
	Angle     float64    `json:"angle"`
	Orb       float64    `json:"orb"`
	MaxOrb    float64    `json:"max_orb"`
	Applying  bool       `json:"applying"`
	Exactness float64    `json:"exactness"`
}

// Involves reports whether name is one of the aspect's points.
func (a Aspect) Involves(name string) bool {
	return a.Point1 == name || a.Point2 == name
}
