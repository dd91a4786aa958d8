package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/services/aspects"
	"AstroCore/internal/services/timeconv"
	"AstroCore/internal/usecase"
	"AstroCore/pkg/util"
)

var natalCmd = &cobra.Command{
	Use:   "natal",
	Short: "Compute a natal chart",
	RunE:  runNatal,
}

var transitCmd = &cobra.Command{
	Use:   "transit",
	Short: "Compute the sky at an instant, optionally against a natal chart",
	RunE:  runTransit,
}

var compositeCmd = &cobra.Command{
	Use:   "composite",
	Short: "Compute the midpoint chart of two people",
	RunE:  runComposite,
}

var housesCmd = &cobra.Command{
	Use:   "houses",
	Short: "Print raw house cusps and angles from the ephemeris",
	RunE:  runHouses,
}

func init() {
	addBirthFlags(natalCmd.Flags(), "")
	addChartFlags(natalCmd.Flags())

	transitCmd.Flags().String("at", "", "instant as RFC3339 or unix seconds (default now)")
	addBirthFlags(transitCmd.Flags(), "natal-")
	addChartFlags(transitCmd.Flags())

	addBirthFlags(compositeCmd.Flags(), "a-")
	addBirthFlags(compositeCmd.Flags(), "b-")
	addChartFlags(compositeCmd.Flags())

	addBirthFlags(housesCmd.Flags(), "")
	housesCmd.Flags().String("house-system", "W", "house system code or name")

	rootCmd.AddCommand(natalCmd, transitCmd, compositeCmd, housesCmd)
}

func addBirthFlags(fs *pflag.FlagSet, prefix string) {
	fs.String(prefix+"date", "", "birth date YYYY-MM-DD")
	fs.String(prefix+"time", "", "birth time HH:MM[:SS], empty for unknown")
	fs.Float64(prefix+"lat", 0, "latitude in degrees, north positive")
	fs.Float64(prefix+"lon", 0, "longitude in degrees, east positive")
	fs.String(prefix+"tz", "UTC", "IANA timezone")
}

func addChartFlags(fs *pflag.FlagSet) {
	fs.String("house-system", "W", "house system code or name")
	fs.Bool("aspects", true, "include aspects")
}

func birthFromFlags(fs *pflag.FlagSet, prefix string) (models.BirthData, error) {
	date, _ := fs.GetString(prefix + "date")
	if date == "" {
		return models.BirthData{}, fmt.Errorf("--%sdate is required", prefix)
	}
	clock, _ := fs.GetString(prefix + "time")
	lat, _ := fs.GetFloat64(prefix + "lat")
	lon, _ := fs.GetFloat64(prefix + "lon")
	tz, _ := fs.GetString(prefix + "tz")
	return models.BirthData{
		Date:        date,
		Time:        clock,
		TimeUnknown: clock == "",
		Latitude:    lat,
		Longitude:   lon,
		Timezone:    tz,
	}, nil
}

func chartFlags(fs *pflag.FlagSet) (models.HouseSystem, bool, error) {
	code, _ := fs.GetString("house-system")
	hs, err := models.ParseHouseSystem(code)
	if err != nil {
		return 0, false, err
	}
	withAspects, _ := fs.GetBool("aspects")
	return hs, withAspects, nil
}

func newNatalCalculator(cmd *cobra.Command) (*usecase.NatalCalculator, error) {
	eph, err := newEphemeris(cmd)
	if err != nil {
		return nil, err
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return usecase.NewNatalCalculator(eph, timeconv.NewNormalizer(), aspects.NewEngine(), usecase.WithCalcTimeout(timeout)), nil
}

func runNatal(cmd *cobra.Command, _ []string) error {
	birth, err := birthFromFlags(cmd.Flags(), "")
	if err != nil {
		return err
	}
	hs, withAspects, err := chartFlags(cmd.Flags())
	if err != nil {
		return err
	}
	calc, err := newNatalCalculator(cmd)
	if err != nil {
		return err
	}
	chart, err := calc.Compute(cmd.Context(), models.NatalRequest{Birth: birth, HouseSystem: hs, WithAspects: withAspects})
	if err != nil {
		return err
	}
	return printJSON(cmd, chart)
}

func runTransit(cmd *cobra.Command, _ []string) error {
	fs := cmd.Flags()
	hs, withAspects, err := chartFlags(fs)
	if err != nil {
		return err
	}
	eph, err := newEphemeris(cmd)
	if err != nil {
		return err
	}
	timeout, _ := fs.GetDuration("timeout")
	engine := aspects.NewEngine()

	req := models.TransitRequest{WithAspects: withAspects}
	if at, _ := fs.GetString("at"); at != "" {
		t, ok := util.ParseTime(at)
		if !ok {
			return fmt.Errorf("--at must be RFC3339 or unix seconds, got %q", at)
		}
		req.At = t
	}
	if date, _ := fs.GetString("natal-date"); date != "" {
		birth, err := birthFromFlags(fs, "natal-")
		if err != nil {
			return err
		}
		natal := usecase.NewNatalCalculator(eph, timeconv.NewNormalizer(), engine, usecase.WithCalcTimeout(timeout))
		req.Natal, err = natal.Compute(cmd.Context(), models.NatalRequest{Birth: birth, HouseSystem: hs})
		if err != nil {
			return err
		}
	}

	transit := usecase.NewTransitCalculator(eph, engine, usecase.WithCalcTimeout(timeout))
	chart, err := transit.Compute(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd, chart)
}

func runComposite(cmd *cobra.Command, _ []string) error {
	fs := cmd.Flags()
	a, err := birthFromFlags(fs, "a-")
	if err != nil {
		return err
	}
	b, err := birthFromFlags(fs, "b-")
	if err != nil {
		return err
	}
	hs, withAspects, err := chartFlags(fs)
	if err != nil {
		return err
	}
	natal, err := newNatalCalculator(cmd)
	if err != nil {
		return err
	}
	timeout, _ := fs.GetDuration("timeout")
	calc := usecase.NewCompositeCalculator(natal, aspects.NewEngine(), usecase.WithCalcTimeout(timeout))
	chart, err := calc.Compute(cmd.Context(), models.CompositeRequest{A: a, B: b, HouseSystem: hs, WithAspects: withAspects})
	if err != nil {
		return err
	}
	return printJSON(cmd, chart)
}

// houseReport is the raw ephemeris house output with the derived Julian day.
type houseReport struct {
	JulianDay   float64            `json:"julian_day"`
	HouseSystem models.HouseSystem `json:"house_system"`
	Accuracy    models.Accuracy    `json:"accuracy"`
	Houses      models.HouseData   `json:"houses"`
}

func runHouses(cmd *cobra.Command, _ []string) error {
	fs := cmd.Flags()
	birth, err := birthFromFlags(fs, "")
	if err != nil {
		return err
	}
	code, _ := fs.GetString("house-system")
	hs, err := models.ParseHouseSystem(code)
	if err != nil {
		return err
	}
	clock := birth.Time
	if clock == "" {
		clock = "12:00"
	}
	jd, err := timeconv.NewNormalizer().LocalToJulianDay(birth.Date, clock, birth.Timezone)
	if err != nil {
		return err
	}
	eph, err := newEphemeris(cmd)
	if err != nil {
		return err
	}
	timeout, _ := fs.GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	houses, err := eph.HousesAndAngles(ctx, jd, birth.Latitude, birth.Longitude, hs)
	if err != nil {
		return err
	}
	return printJSON(cmd, houseReport{JulianDay: jd, HouseSystem: hs, Accuracy: eph.Accuracy(), Houses: houses})
}
