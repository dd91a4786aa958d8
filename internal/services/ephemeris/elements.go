package ephemeris

import "math"

// orbit holds J2000 mean Keplerian elements and their rates per Julian
// century (a in AU, angles in degrees). Planet values are the JPL
// approximate elements valid 1800-2050.
type orbit struct {
	a, e, i, l, peri, node                   float64
	aDot, eDot, iDot, lDot, periDot, nodeDot float64
}

var (
	orbitMercury = orbit{0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081}
	orbitVenus = orbit{0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418}
	orbitEarth = orbit{1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
		0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0}
	orbitMars = orbit{1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343}
	orbitJupiter = orbit{5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106}
	orbitSaturn = orbit{9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794}
	orbitUranus = orbit{19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589}
	orbitNeptune = orbit{30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664}
	orbitPluto = orbit{39.48211675, 0.24882730, 17.14001206, 238.92903833, 224.06891629, 110.30393684,
		-0.00031596, 0.00005170, 0.00004818, 145.20780515, -0.04062942, -0.01183482}
	// Osculating elements near the 1996 perihelion, mean motion only.
	orbitChiron = orbit{13.648, 0.3787, 6.93, 216.3, 188.6, 209.3,
		0, 0, 0, 714.0, 0, 0}
)

type vec3 struct{ x, y, z float64 }

func (v vec3) sub(o vec3) vec3 { return vec3{v.x - o.x, v.y - o.y, v.z - o.z} }

// spherical returns longitude (deg, [0,360)), latitude (deg) and radius.
func (v vec3) spherical() (lon, lat, r float64) {
	r = math.Sqrt(v.x*v.x + v.y*v.y + v.z*v.z)
	lon = normDeg(deg(math.Atan2(v.y, v.x)))
	lat = deg(math.Atan2(v.z, math.Hypot(v.x, v.y)))
	return lon, lat, r
}

// heliocentric returns J2000 ecliptic coordinates at t Julian centuries.
func (o orbit) heliocentric(t float64) vec3 {
	a := o.a + o.aDot*t
	e := o.e + o.eDot*t
	inc := rad(o.i + o.iDot*t)
	l := o.l + o.lDot*t
	peri := o.peri + o.periDot*t
	node := o.node + o.nodeDot*t

	argPeri := rad(peri - node)
	m := rad(math.Mod(l-peri, 360))
	ecc := solveKepler(m, e)

	xp := a * (math.Cos(ecc) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ecc)

	cw, sw := math.Cos(argPeri), math.Sin(argPeri)
	cn, sn := math.Cos(rad(node)), math.Sin(rad(node))
	ci, si := math.Cos(inc), math.Sin(inc)

	return vec3{
		x: (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp,
		y: (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp,
		z: (sw*si)*xp + (cw*si)*yp,
	}
}

// solveKepler solves M = E - e sin E for E with Newton iterations (radians).
func solveKepler(m, e float64) float64 {
	ecc := m + e*math.Sin(m)
	for i := 0; i < 12; i++ {
		delta := (ecc - e*math.Sin(ecc) - m) / (1 - e*math.Cos(ecc))
		ecc -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	return ecc
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

func normDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// lonDelta is b - a reduced to (-180, 180].
func lonDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
