package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
	"AstroCore/pkg/logger"
	"AstroCore/pkg/metrics"
)

const auditTimeout = 10 * time.Second

// ChartAuditor archives and announces freshly computed charts. Both sinks are
// optional and best effort: failures are logged and counted, never returned.
type ChartAuditor struct {
	archive   domrepo.ChartArchive
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	wg        sync.WaitGroup
}

// NewChartAuditor accepts nil for either sink.
func NewChartAuditor(archive domrepo.ChartArchive, publisher domrepo.EventPublisher, m domrepo.Metrics, log *logger.Logger) *ChartAuditor {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &ChartAuditor{archive: archive, publisher: publisher, metrics: m, log: log}
}

// Hook adapts the auditor to the cached charters.
func (a *ChartAuditor) Hook() ComputedHook { return a.Record }

// Record queues the chart for archiving and publishing and returns immediately.
func (a *ChartAuditor) Record(ctx context.Context, key string, chart models.Chart, took time.Duration) {
	if a.archive == nil && a.publisher == nil {
		return
	}
	now := time.Now().UTC()
	id := uuid.NewString()
	points := chart.PointList()

	event := &models.ChartComputedEvent{
		ID:          id,
		Kind:        chart.Kind(),
		CacheKey:    key,
		Accuracy:    chartAccuracy(chart),
		ComputedAt:  now,
		PointCount:  len(points),
		AspectCount: len(chart.AspectList()),
		DurationMS:  took.Milliseconds(),
	}
	records := make([]models.ChartRecord, len(points))
	for i, p := range points {
		records[i] = models.ChartRecord{ChartID: id, Kind: chart.Kind(), CacheKey: key, ComputedAt: now, Point: p}
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()
		if a.archive != nil {
			if err := a.archive.StoreBatch(ctx, records); err != nil {
				a.fail("archive_store", id, err)
			}
		}
		if a.publisher != nil {
			if err := a.publisher.PublishChartComputed(ctx, event); err != nil {
				a.fail("event_publish", id, err)
			}
		}
	}()
}

// Wait blocks until queued audits finish.
func (a *ChartAuditor) Wait() { a.wg.Wait() }

func (a *ChartAuditor) fail(kind, id string, err error) {
	a.metrics.RecordError(kind)
	a.log.Warn("chart audit failed", logger.String("stage", kind), logger.String("chart_id", id), logger.Error(err))
}

func chartAccuracy(c models.Chart) models.Accuracy {
	switch v := c.(type) {
	case *models.NatalChart:
		return v.Accuracy
	case *models.TransitChart:
		return v.Accuracy
	case *models.CompositeChart:
		return v.Accuracy
	}
	return ""
}
