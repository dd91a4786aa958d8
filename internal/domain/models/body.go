package models

// Body identifies a tracked celestial point. Values match the ephemeris
// service body ids.
type Body int

const (
	Sun       Body = 0
	Moon      Body = 1
	Mercury   Body = 2
	Venus     Body = 3
	Mars      Body = 4
	Jupiter   Body = 5
	Saturn    Body = 6
	Uranus    Body = 7
	Neptune   Body = 8
	Pluto     Body = 9
	NorthNode Body = 11 // true node
	Chiron    Body = 15
)

// TrackedBodies is the fixed body set of every chart, in output order.
var TrackedBodies = []Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto, Chiron, NorthNode,
}

// Angle point names. Angles are computed from house data, not tracked as bodies.
const (
	AscendantName = "Ascendant"
	MidheavenName = "Midheaven"
)

// ID returns the ephemeris body id.
func (b Body) ID() int { return int(b) }

func (b Body) String() string {
	switch b {
	case Sun:
		return "Sun"
	case Moon:
		return "Moon"
	case Mercury:
		return "Mercury"
	case Venus:
		return "Venus"
	case Mars:
		return "Mars"
	case Jupiter:
		return "Jupiter"
	case Saturn:
		return "Saturn"
	case Uranus:
		return "Uranus"
	case Neptune:
		return "Neptune"
	case Pluto:
		return "Pluto"
	case NorthNode:
		return "North Node"
	case Chiron:
		return "Chiron"
	default:
		return "Unknown"
	}
}

// CalcFlag is a bitmask passed through to the ephemeris adapter.
type CalcFlag int

const (
	FlagSwissEph CalcFlag = 2
	FlagSpeed    CalcFlag = 256
)

// DefaultCalcFlags requests positions with speeds.
const DefaultCalcFlags = FlagSwissEph | FlagSpeed
