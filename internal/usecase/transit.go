package usecase

import (
	"context"
	"strings"
	"time"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
	"AstroCore/internal/domain/service"
	"AstroCore/internal/services/aspects"
	"AstroCore/internal/services/placement"
	"AstroCore/internal/services/timeconv"
)

// TransitPrefix marks transiting points when compared against a natal chart.
const TransitPrefix = "Transit "

// TransitCalculator computes location-independent sky positions.
type TransitCalculator struct {
	sky    skyPositions
	eph    domrepo.Ephemeris
	engine *aspects.Engine
	cfg    *CalcConfig
}

var _ service.TransitCharter = (*TransitCalculator)(nil)

func NewTransitCalculator(eph domrepo.Ephemeris, engine *aspects.Engine, opts ...CalcOption) *TransitCalculator {
	cfg := buildCalcConfig(opts)
	return &TransitCalculator{
		sky:    skyPositions{eph: eph, flags: cfg.Flags},
		eph:    eph,
		engine: engine,
		cfg:    cfg,
	}
}

func (t *TransitCalculator) Compute(ctx context.Context, req models.TransitRequest) (*models.TransitChart, error) {
	start := time.Now()
	chart, err := t.compute(ctx, req)
	t.cfg.observe(models.KindTransit, start, err)
	return chart, err
}

func (t *TransitCalculator) compute(ctx context.Context, req models.TransitRequest) (*models.TransitChart, error) {
	at := req.At
	if at.IsZero() {
		at = t.cfg.Now()
	}
	at = at.UTC()

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	jd := timeconv.JulianDay(at)
	positions, err := t.sky.bodies(ctx, jd)
	if err != nil {
		return nil, chartError(models.KindTransit, "ephemeris", err)
	}

	points := make([]models.FormattedPoint, len(positions))
	for i, pos := range positions {
		points[i] = placement.FormatPoint(models.TrackedBodies[i].String(), pos, 0)
	}

	chart := &models.TransitChart{
		CalculatedAt:  at,
		JulianDay:     jd,
		Accuracy:      t.eph.Accuracy(),
		Points:        points,
		ComparedNatal: req.Natal != nil,
	}
	if !req.WithAspects {
		return chart, nil
	}
	if req.Natal == nil {
		found := t.engine.Detect(points, t.cfg.AspectTypes, t.cfg.Orbs)
		chart.Aspects = aspects.Cap(found, aspects.ChartLimit, aspects.ChartThreshold)
		return chart, nil
	}
	chart.Aspects = t.crossAspects(points, req.Natal)
	return chart, nil
}

// crossAspects detects aspects between transiting and natal points only.
func (t *TransitCalculator) crossAspects(points []models.FormattedPoint, natal *models.NatalChart) []models.Aspect {
	natalPoints := natal.AspectPoints()
	all := make([]models.FormattedPoint, 0, len(points)+len(natalPoints))
	for _, p := range points {
		p.Name = TransitPrefix + p.Name
		all = append(all, p)
	}
	all = append(all, natalPoints...)

	found := t.engine.Detect(all, t.cfg.AspectTypes, t.cfg.Orbs)
	cross := found[:0]
	for _, a := range found {
		if isTransit(a.Point1) != isTransit(a.Point2) {
			cross = append(cross, a)
		}
	}
	return aspects.Cap(cross, aspects.TransitLimit, aspects.TransitThreshold)
}

func isTransit(name string) bool { return strings.HasPrefix(name, TransitPrefix) }
