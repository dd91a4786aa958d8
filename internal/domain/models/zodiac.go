package models

import (
	"fmt"
	"math"
)

// Sign is a zodiac sign index, Aries = 0 through Pisces = 11.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

type Element string

const (
	Fire  Element = "Fire"
	Earth Element = "Earth"
	Air   Element = "Air"
	Water Element = "Water"
)

type Modality string

const (
	Cardinal Modality = "Cardinal"
	Fixed    Modality = "Fixed"
	Mutable  Modality = "Mutable"
)

// SignInfo is one row of the fixed zodiac table.
type SignInfo struct {
	Sign     Sign     `json:"-"`
	Name     string   `json:"name"`
	Glyph    string   `json:"glyph"`
	Element  Element  `json:"element"`
	Modality Modality `json:"modality"`
}

var zodiac = [12]SignInfo{
	{Aries, "Aries", "♈", Fire, Cardinal},
	{Taurus, "Taurus", "♉", Earth, Fixed},
	{Gemini, "Gemini", "♊", Air, Mutable},
	{Cancer, "Cancer", "♋", Water, Cardinal},
	{Leo, "Leo", "♌", Fire, Fixed},
	{Virgo, "Virgo", "♍", Earth, Mutable},
	{Libra, "Libra", "♎", Air, Cardinal},
	{Scorpio, "Scorpio", "♏", Water, Fixed},
	{Sagittarius, "Sagittarius", "♐", Fire, Mutable},
	{Capricorn, "Capricorn", "♑", Earth, Cardinal},
	{Aquarius, "Aquarius", "♒", Air, Fixed},
	{Pisces, "Pisces", "♓", Water, Mutable},
}

// Info returns the table row for s. Out-of-range values wrap.
func (s Sign) Info() SignInfo { return zodiac[((int(s)%12)+12)%12] }

func (s Sign) String() string { return s.Info().Name }

// Glyph returns the sign's unicode glyph.
func (s Sign) Glyph() string { return s.Info().Glyph }

// NormalizeDegree reduces any longitude into [0, 360).
func NormalizeDegree(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// SignOf returns floor(longitude/30) mod 12 after normalization.
func SignOf(longitude float64) Sign {
	return Sign(int(NormalizeDegree(longitude)/30) % 12)
}

// ZodiacSign returns the sign table entry for a longitude.
func ZodiacSign(longitude float64) SignInfo {
	return SignOf(longitude).Info()
}

// Signs returns a copy of the full zodiac table.
func Signs() []SignInfo {
	out := make([]SignInfo, len(zodiac))
	copy(out, zodiac[:])
	return out
}

// MarshalText encodes the sign by name.
func (s Sign) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a sign name.
func (s *Sign) UnmarshalText(b []byte) error {
	for _, info := range zodiac {
		if info.Name == string(b) {
			*s = info.Sign
			return nil
		}
	}
	return fmt.Errorf("unknown sign %q", b)
}
