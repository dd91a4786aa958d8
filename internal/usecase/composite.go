package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/domain/service"
	"AstroCore/internal/services/aspects"
	"AstroCore/internal/services/placement"
)

// CompositeCalculator builds midpoint charts from two natal charts.
type CompositeCalculator struct {
	natal  service.NatalCharter
	engine *aspects.Engine
	cfg    *CalcConfig
}

var _ service.CompositeCharter = (*CompositeCalculator)(nil)

// NewCompositeCalculator takes the natal charter used for both people,
// usually the cached one.
func NewCompositeCalculator(natal service.NatalCharter, engine *aspects.Engine, opts ...CalcOption) *CompositeCalculator {
	return &CompositeCalculator{natal: natal, engine: engine, cfg: buildCalcConfig(opts)}
}

func (c *CompositeCalculator) Compute(ctx context.Context, req models.CompositeRequest) (*models.CompositeChart, error) {
	start := time.Now()
	chart, err := c.compute(ctx, req)
	c.cfg.observe(models.KindComposite, start, err)
	return chart, err
}

func (c *CompositeCalculator) compute(ctx context.Context, req models.CompositeRequest) (*models.CompositeChart, error) {
	hs := req.HouseSystem
	if hs == 0 {
		hs = models.WholeSign
	}
	if hs != models.WholeSign {
		return nil, chartError(models.KindComposite, "houses",
			&models.UnsupportedHouseSystemError{System: hs, Op: "composite chart"})
	}

	a, b := CanonicalPair(req.A, req.B)
	var chartA, chartB *models.NatalChart
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chartA, err = c.natal.Compute(gctx, models.NatalRequest{Birth: a, HouseSystem: hs})
		return err
	})
	g.Go(func() error {
		var err error
		chartB, err = c.natal.Compute(gctx, models.NatalRequest{Birth: b, HouseSystem: hs})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, chartError(models.KindComposite, "natal", err)
	}

	asc := Midpoint(chartA.Angles.Ascendant.Exact(), chartB.Angles.Ascendant.Exact())
	mc := Midpoint(chartA.Angles.Midheaven.Exact(), chartB.Angles.Midheaven.Exact())

	points := make([]models.FormattedPoint, 0, len(chartA.Points))
	for _, pa := range chartA.Points {
		pb, ok := chartB.Point(pa.Name)
		if !ok {
			return nil, chartError(models.KindComposite, "midpoints", fmt.Errorf("point %q missing from second chart", pa.Name))
		}
		pos := models.PointPosition{
			Longitude:      Midpoint(pa.Exact(), pb.Exact()),
			LongitudeSpeed: (pa.Speed + pb.Speed) / 2,
		}
		points = append(points, placement.FormatPoint(pa.Name, pos, placement.HousePosition(pos.Longitude, asc)))
	}

	chart := &models.CompositeChart{
		HouseSystem: hs,
		Accuracy:    chartA.Accuracy,
		Points:      points,
		Houses:      placement.WholeSignCusps(asc),
		Angles:      angles(asc, mc),
	}
	if req.WithAspects {
		found := c.engine.Detect(chart.AspectPoints(), c.cfg.AspectTypes, c.cfg.Orbs)
		chart.Aspects = aspects.Cap(found, aspects.ChartLimit, aspects.ChartThreshold)
	}
	return chart, nil
}

// Midpoint returns the circular midpoint of two longitudes on the shorter arc.
func Midpoint(a, b float64) float64 {
	a, b = models.NormalizeDegree(a), models.NormalizeDegree(b)
	diff := math.Abs(a - b)
	if diff > 180 {
		return models.NormalizeDegree(math.Min(a, b) - (360-diff)/2)
	}
	return (a + b) / 2
}

// CanonicalPair orders two people so that (a, b) and (b, a) produce the
// same chart and cache key.
func CanonicalPair(a, b models.BirthData) (models.BirthData, models.BirthData) {
	if birthLess(b, a) {
		return b, a
	}
	return a, b
}

func birthLess(x, y models.BirthData) bool {
	switch {
	case x.Date != y.Date:
		return x.Date < y.Date
	case x.Time != y.Time:
		return x.Time < y.Time
	case x.Latitude != y.Latitude:
		return x.Latitude < y.Latitude
	case x.Longitude != y.Longitude:
		return x.Longitude < y.Longitude
	default:
		return x.Timezone < y.Timezone
	}
}
