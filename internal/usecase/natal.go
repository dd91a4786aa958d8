package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
	"AstroCore/internal/domain/service"
	"AstroCore/internal/services/aspects"
	"AstroCore/internal/services/placement"
	"AstroCore/internal/services/timeconv"
)

// NatalCalculator builds birth charts from an ephemeris adapter.
type NatalCalculator struct {
	sky    skyPositions
	eph    domrepo.Ephemeris
	tc     *timeconv.Normalizer
	engine *aspects.Engine
	cfg    *CalcConfig
}

var _ service.NatalCharter = (*NatalCalculator)(nil)

func NewNatalCalculator(eph domrepo.Ephemeris, tc *timeconv.Normalizer, engine *aspects.Engine, opts ...CalcOption) *NatalCalculator {
	cfg := buildCalcConfig(opts)
	return &NatalCalculator{
		sky:    skyPositions{eph: eph, flags: cfg.Flags},
		eph:    eph,
		tc:     tc,
		engine: engine,
		cfg:    cfg,
	}
}

// Compute returns a complete chart or an error, never a partial chart.
func (n *NatalCalculator) Compute(ctx context.Context, req models.NatalRequest) (*models.NatalChart, error) {
	start := time.Now()
	chart, err := n.compute(ctx, req)
	n.cfg.observe(models.KindNatal, start, err)
	return chart, err
}

func (n *NatalCalculator) compute(ctx context.Context, req models.NatalRequest) (*models.NatalChart, error) {
	hs := req.HouseSystem
	if hs == 0 {
		hs = models.WholeSign
	}
	if hs != models.WholeSign {
		return nil, chartError(models.KindNatal, "houses",
			&models.UnsupportedHouseSystemError{System: hs, Op: "natal chart"})
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	clock, defaulted := birthClock(req.Birth)
	jd, err := n.tc.LocalToJulianDay(req.Birth.Date, clock, req.Birth.Timezone)
	if err != nil {
		return nil, chartError(models.KindNatal, "time", err)
	}

	var (
		houses    models.HouseData
		positions []models.PointPosition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		houses, err = n.sky.houses(gctx, jd, req.Birth.Latitude, req.Birth.Longitude, hs)
		return err
	})
	g.Go(func() error {
		var err error
		positions, err = n.sky.bodies(gctx, jd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, chartError(models.KindNatal, "ephemeris", err)
	}

	points := make([]models.FormattedPoint, len(positions))
	for i, pos := range positions {
		body := models.TrackedBodies[i]
		house, err := placement.AssignHouse(hs, pos.Longitude, houses.Ascendant)
		if err != nil {
			return nil, chartError(models.KindNatal, "houses", err)
		}
		points[i] = placement.FormatPoint(body.String(), pos, house)
	}

	chart := &models.NatalChart{
		JulianDay:          jd,
		HouseSystem:        hs,
		Accuracy:           n.eph.Accuracy(),
		TimeUnknownApplied: defaulted,
		Points:             points,
		Houses:             placement.FormatCusps(hs, houses),
		Angles:             angles(houses.Ascendant, houses.Midheaven),
	}
	if req.WithAspects {
		found := n.engine.Detect(chart.AspectPoints(), n.cfg.AspectTypes, n.cfg.Orbs)
		chart.Aspects = aspects.Cap(found, aspects.ChartLimit, aspects.ChartThreshold)
	}
	return chart, nil
}

// birthClock returns the clock to use and whether the noon default was applied.
func birthClock(b models.BirthData) (string, bool) {
	if b.HasTime() {
		return b.Time, false
	}
	return timeconv.DefaultClock, true
}

func angles(asc, mc float64) models.Angles {
	return models.Angles{
		Ascendant: placement.FormatAngle(models.AscendantName, asc, 1),
		Midheaven: placement.FormatAngle(models.MidheavenName, mc, placement.HousePosition(mc, asc)),
	}
}
