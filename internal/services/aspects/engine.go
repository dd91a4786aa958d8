// Package aspects detects angular relationships between placed points.
package aspects

import (
	"math"
	"sort"

	"AstroCore/internal/domain/models"
)

// DefaultSunMoonMultiplier widens orbs for the Sun-Moon pair.
const DefaultSunMoonMultiplier = 1.25

type pairKey struct{ a, b string }

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Config holds engine options.
type Config struct {
	pairs map[pairKey]float64
}

type Option func(*Config)

// WithPairMultiplier scales the maximum orb of every aspect between a and b.
func WithPairMultiplier(a, b string, m float64) Option {
	return func(c *Config) { c.pairs[newPairKey(a, b)] = m }
}

// WithoutPairMultipliers drops the default Sun-Moon widening.
func WithoutPairMultipliers() Option {
	return func(c *Config) { c.pairs = make(map[pairKey]float64) }
}

// Engine detects aspects. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	multipliers map[pairKey]float64
}

func NewEngine(opts ...Option) *Engine {
	cfg := &Config{pairs: map[pairKey]float64{
		newPairKey(models.Sun.String(), models.Moon.String()): DefaultSunMoonMultiplier,
	}}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Engine{multipliers: cfg.pairs}
}

// Separation is the shorter arc between two longitudes, in [0, 180].
func Separation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

func (e *Engine) multiplier(a, b string) float64 {
	if m, ok := e.multipliers[newPairKey(a, b)]; ok {
		return m
	}
	return 1
}

// Detect returns every aspect in types formed by an unordered pair of points,
// sorted by exactness (most exact first, ties in discovery order). A nil set
// means all types. Declination aspects are skipped since points carry no
// latitude. An override replaces the base orb of its type before the pair
// multiplier is applied.
func (e *Engine) Detect(points []models.FormattedPoint, types models.AspectSet, overrides models.OrbOverrides) []models.Aspect {
	if types == nil {
		types = models.AllAspects()
	}
	defs := make([]models.AspectDefinition, 0, len(types))
	for _, d := range models.AspectDefinitions() {
		if d.Declination || !types.Has(d.Type) {
			continue
		}
		if o, ok := overrides[d.Type]; ok {
			d.Orb = o
		}
		defs = append(defs, d)
	}

	var out []models.Aspect
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			p1, p2 := points[i], points[j]
			sep := Separation(p1.Longitude, p2.Longitude)
			mult := e.multiplier(p1.Name, p2.Name)
			for _, d := range defs {
				maxOrb := d.Orb * mult
				if maxOrb <= 0 {
					continue
				}
				orb := math.Abs(sep - d.Angle)
				if orb > maxOrb {
					continue
				}
				out = append(out, models.Aspect{
					Point1:    p1.Name,
					Point2:    p2.Name,
					Type:      d.Type,
					Angle:     d.Angle,
					Orb:       orb,
					MaxOrb:    maxOrb,
					Applying:  isApplying(d.Type, p1, p2),
					Exactness: 1 - orb/maxOrb,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Exactness > out[j].Exactness })
	return out
}

// isApplying decides whether the aspect is tightening.
//
// Only conjunction is geometric. Opposition applies when the bodies move in
// opposite directions. Every other type uses speed1 - speed2 < 0, which is a
// relative-motion approximation and not exact for all configurations.
func isApplying(t models.AspectType, p1, p2 models.FormattedPoint) bool {
	s1, s2 := p1.Speed, p2.Speed
	switch t {
	case models.Opposition:
		return s1*s2 < 0
	case models.Conjunction:
		if s1*s2 < 0 {
			fwd, retro := p1, p2
			if s1 < 0 {
				fwd, retro = p2, p1
			}
			return signedDelta(fwd.Longitude, retro.Longitude) > 0
		}
		fast, slow := p1, p2
		if math.Abs(s2) > math.Abs(s1) {
			fast, slow = p2, p1
		}
		switch {
		case fast.Speed > 0:
			return signedDelta(fast.Longitude, slow.Longitude) > 0
		case fast.Speed < 0:
			return signedDelta(fast.Longitude, slow.Longitude) < 0
		default:
			return false
		}
	default:
		return s1-s2 < 0
	}
}

// signedDelta is to - from reduced to (-180, 180]; positive when to lies ahead
// of from in zodiacal order.
func signedDelta(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
