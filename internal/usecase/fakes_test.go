package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"AstroCore/internal/domain/models"
)

// fakeEphemeris returns deterministic positions derived from the body id and
// the Julian day.
type fakeEphemeris struct {
	asc, mc float64
	failOn  models.Body
	failErr error
	block   chan struct{} // when set, every call waits for it to close
	calls   atomic.Int64
}

func newFakeEphemeris() *fakeEphemeris {
	return &fakeEphemeris{asc: 15, mc: 280, failOn: -1}
}

func (f *fakeEphemeris) Name() string              { return "fake" }
func (f *fakeEphemeris) Accuracy() models.Accuracy { return models.AccuracyPrecise }

func (f *fakeEphemeris) PointPosition(_ context.Context, jd float64, body models.Body, _ models.CalcFlag) (models.PointPosition, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if body == f.failOn {
		return models.PointPosition{}, f.failErr
	}
	speed := 1.0
	if body == models.Saturn {
		speed = -0.05
	}
	return models.PointPosition{
		Longitude:      float64(body)*27 + math.Mod(jd, 1)*10,
		LongitudeSpeed: speed,
	}, nil
}

func (f *fakeEphemeris) HousesAndAngles(_ context.Context, jd, _, _ float64, _ models.HouseSystem) (models.HouseData, error) {
	if f.block != nil {
		<-f.block
	}
	return models.HouseData{Ascendant: f.asc + math.Mod(jd, 1), Midheaven: f.mc}, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	records []models.ChartRecord
	err     error
}

func (a *fakeArchive) Init(context.Context) error { return nil }

func (a *fakeArchive) StoreBatch(_ context.Context, rs []models.ChartRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rs...)
	return a.err
}

func (a *fakeArchive) Query(context.Context, models.ChartKind, time.Time, time.Time, int) ([]models.ChartRecord, error) {
	return nil, errors.New("not implemented")
}

func (a *fakeArchive) Health(context.Context) error { return nil }
func (a *fakeArchive) Close() error                 { return nil }

type fakePublisher struct {
	mu     sync.Mutex
	events []*models.ChartComputedEvent
}

func (p *fakePublisher) PublishChartComputed(_ context.Context, e *models.ChartComputedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func birth(date, clock string) models.BirthData {
	return models.BirthData{
		Date:      date,
		Time:      clock,
		Latitude:  40.7128,
		Longitude: -74.006,
		Timezone:  "America/New_York",
	}
}
