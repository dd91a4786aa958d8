package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroCore/internal/domain/models"
)

func TestInsertStatement(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("X", 7200))
	records := []models.ChartRecord{
		{ChartID: "c1", Kind: models.KindNatal, CacheKey: "natal:k", ComputedAt: at, Point: models.FormattedPoint{
			Name: "Sun", Sign: models.Taurus, Degree: 15, Minute: 30, Longitude: 45.5, House: 2, Retrograde: false, Speed: 0.98,
		}},
		{ChartID: "c1", Kind: models.KindNatal, CacheKey: "natal:k", ComputedAt: at, Point: models.FormattedPoint{
			Name: "Saturn", Sign: models.Pisces, Degree: 3, Minute: 1, Longitude: 333.02, House: 12, Retrograde: true, Speed: -0.02,
		}},
	}

	q, args := insertStatement("chart_points", records)
	assert.True(t, strings.HasPrefix(q, "INSERT INTO chart_points (chart_id, kind,"))
	assert.Equal(t, 2, strings.Count(q, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"))
	require.Len(t, args, 24)

	assert.Equal(t, "natal", args[1])
	assert.Equal(t, at.UTC(), args[3])
	assert.Equal(t, "Taurus", args[5])
	assert.Equal(t, uint8(0), args[10])
	assert.Equal(t, "Pisces", args[17])
	assert.Equal(t, uint8(1), args[22])
}

func TestArchiveSchemaUsesTable(t *testing.T) {
	a := NewClickHouseChartArchive(nil, "", nil)
	schema := a.Schema()
	require.Len(t, schema, 1)
	assert.Contains(t, schema[0], "CREATE TABLE IF NOT EXISTS chart_points")
}

type recordingProducer struct {
	topic string
	key   []byte
	value interface{}
}

func (p *recordingProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func TestKafkaEventPublisher(t *testing.T) {
	prod := &recordingProducer{}
	pub := NewKafkaEventPublisher(prod, "charts.computed")
	ev := &models.ChartComputedEvent{ID: "abc", Kind: models.KindTransit}

	require.NoError(t, pub.PublishChartComputed(context.Background(), ev))
	assert.Equal(t, "charts.computed", prod.topic)
	assert.Equal(t, []byte("abc"), prod.key)
	assert.Same(t, ev, prod.value)
}
