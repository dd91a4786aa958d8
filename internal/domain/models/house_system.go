package models

import (
	"fmt"
	"strings"
)

// HouseSystem is the single-letter house system code understood by the
// ephemeris service.
type HouseSystem byte

const (
	Placidus      HouseSystem = 'P'
	Koch          HouseSystem = 'K'
	Porphyry      HouseSystem = 'O'
	Regiomontanus HouseSystem = 'R'
	Campanus      HouseSystem = 'C'
	Equal         HouseSystem = 'A'
	EqualAlt      HouseSystem = 'E'
	WholeSign     HouseSystem = 'W'
	Meridian      HouseSystem = 'X'
	Morinus       HouseSystem = 'M'
	Alcabitius    HouseSystem = 'B'
	Topocentric   HouseSystem = 'T'
	Krusinski     HouseSystem = 'U'
	Vehlow        HouseSystem = 'V'
	Horizontal    HouseSystem = 'H'
	APC           HouseSystem = 'Y'
	Gauquelin     HouseSystem = 'G'
	Sripati       HouseSystem = 'S'
	EqualMC       HouseSystem = 'D'
	EqualAries    HouseSystem = 'N'
	Sunshine      HouseSystem = 'I'
	PullenSD      HouseSystem = 'L'
	PullenSR      HouseSystem = 'Q'
)

var houseSystemNames = map[HouseSystem]string{
	Placidus:      "placidus",
	Koch:          "koch",
	Porphyry:      "porphyry",
	Regiomontanus: "regiomontanus",
	Campanus:      "campanus",
	Equal:         "equal",
	EqualAlt:      "equal",
	WholeSign:     "whole_sign",
	Meridian:      "meridian",
	Morinus:       "morinus",
	Alcabitius:    "alcabitius",
	Topocentric:   "topocentric",
	Krusinski:     "krusinski",
	Vehlow:        "vehlow",
	Horizontal:    "horizontal",
	APC:           "apc",
	Gauquelin:     "gauquelin",
	Sripati:       "sripati",
	EqualMC:       "equal_mc",
	EqualAries:    "equal_aries",
	Sunshine:      "sunshine",
	PullenSD:      "pullen_sd",
	PullenSR:      "pullen_sr",
}

// Code returns the one-letter code.
func (h HouseSystem) Code() string { return string(rune(h)) }

func (h HouseSystem) String() string {
	if n, ok := houseSystemNames[h]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%q)", rune(h))
}

// Valid reports whether h is a known code.
func (h HouseSystem) Valid() bool {
	_, ok := houseSystemNames[h]
	return ok
}

// ParseHouseSystem accepts a one-letter code ("W") or a name ("whole_sign",
// "whole-sign", "Placidus"). Empty input yields WholeSign.
func ParseHouseSystem(s string) (HouseSystem, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WholeSign, nil
	}
	if len(s) == 1 {
		h := HouseSystem(strings.ToUpper(s)[0])
		if h.Valid() {
			return h, nil
		}
		return 0, fmt.Errorf("unknown house system code %q", s)
	}
	name := strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(s))
	for h, n := range houseSystemNames {
		if n == name && h != EqualAlt {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown house system %q", s)
}

// MarshalText encodes the house system as its code.
func (h HouseSystem) MarshalText() ([]byte, error) { return []byte(h.Code()), nil }

// UnmarshalText accepts anything ParseHouseSystem does.
func (h *HouseSystem) UnmarshalText(b []byte) error {
	v, err := ParseHouseSystem(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}
