package repository

import (
	"context"
	"time"

	"AstroCore/internal/domain/models"
)

// Ephemeris is the position/house solver. Implementations must return an
// *models.EphemerisComputationError on failure and never zero values.
type Ephemeris interface {
	Name() string
	Accuracy() models.Accuracy
	PointPosition(ctx context.Context, jd float64, body models.Body, flags models.CalcFlag) (models.PointPosition, error)
	HousesAndAngles(ctx context.Context, jd, lat, lon float64, hs models.HouseSystem) (models.HouseData, error)
}

// ChartArchive stores computed chart points for later analysis.
type ChartArchive interface {
	Init(ctx context.Context) error // ensure tables
	StoreBatch(ctx context.Context, records []models.ChartRecord) error
	Query(ctx context.Context, kind models.ChartKind, from, to time.Time, limit int) ([]models.ChartRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher announces computed charts.
type EventPublisher interface {
	PublishChartComputed(ctx context.Context, ev *models.ChartComputedEvent) error
	Close() error
}

type Metrics interface {
	RecordChart(kind models.ChartKind, result string, seconds float64)
	RecordCacheLookup(namespace string, hit bool)
	RecordError(kind string)
}
