package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
	"AstroCore/pkg/logger"
)

const archiveColumns = "chart_id, kind, cache_key, computed_at, name, sign, degree, minute, longitude, house, retrograde, speed"

const archiveChunkSize = 2000

// ClickHouseChartArchive stores one row per point of each computed chart.
type ClickHouseChartArchive struct {
	db    *sql.DB
	table string
	log   *logger.Logger
}

var _ domrepo.ChartArchive = (*ClickHouseChartArchive)(nil)

func NewClickHouseChartArchive(db *sql.DB, table string, log *logger.Logger) *ClickHouseChartArchive {
	if table == "" {
		table = "chart_points"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ClickHouseChartArchive{db: db, table: table, log: log}
}

// Schema returns the DDL for the archive table.
func (s *ClickHouseChartArchive) Schema() []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    chart_id    String,
    kind        LowCardinality(String),
    cache_key   String,
    computed_at DateTime64(3, 'UTC'),
    name        LowCardinality(String),
    sign        LowCardinality(String),
    degree      UInt8,
    minute      UInt8,
    longitude   Float64,
    house       UInt8,
    retrograde  UInt8,
    speed       Float64
) ENGINE = MergeTree
ORDER BY (kind, computed_at, chart_id)
TTL toDateTime(computed_at) + INTERVAL 90 DAY`, s.table)}
}

func (s *ClickHouseChartArchive) Init(ctx context.Context) error {
	for _, stmt := range s.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init chart archive: %w", err)
		}
	}
	return nil
}

// StoreBatch inserts records in multi-row chunks.
func (s *ClickHouseChartArchive) StoreBatch(ctx context.Context, records []models.ChartRecord) error {
	start := time.Now()
	for from := 0; from < len(records); from += archiveChunkSize {
		to := min(from+archiveChunkSize, len(records))
		q, args := insertStatement(s.table, records[from:to])
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.log.Error("clickhouse chart archive insert failed",
				logger.String("table", s.table),
				logger.Int("rows", to-from),
				logger.Error(err),
			)
			return fmt.Errorf("store chart records: %w", err)
		}
	}
	s.log.Debug("clickhouse chart archive insert ok",
		logger.Int("rows", len(records)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func insertStatement(table string, records []models.ChartRecord) (string, []interface{}) {
	values := make([]string, len(records))
	args := make([]interface{}, 0, len(records)*12)
	for i, r := range records {
		values[i] = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		p := r.Point
		var retro uint8
		if p.Retrograde {
			retro = 1
		}
		args = append(args,
			r.ChartID,
			string(r.Kind),
			r.CacheKey,
			r.ComputedAt.UTC(),
			p.Name,
			p.Sign.String(),
			uint8(p.Degree),
			uint8(p.Minute),
			p.Longitude,
			uint8(p.House),
			retro,
			p.Speed,
		)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, archiveColumns, strings.Join(values, ","))
	return q, args
}

// Query returns archived rows of one chart kind, newest first.
func (s *ClickHouseChartArchive) Query(ctx context.Context, kind models.ChartKind, from, to time.Time, limit int) ([]models.ChartRecord, error) {
	if limit <= 0 {
		limit = 1000
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE kind = ? AND computed_at >= ? AND computed_at <= ? ORDER BY computed_at DESC LIMIT ?",
		archiveColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, string(kind), from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query chart records: %w", err)
	}
	defer rows.Close()

	var out []models.ChartRecord
	for rows.Next() {
		var (
			r            models.ChartRecord
			kindStr      string
			signName     string
			deg, minute  uint8
			house, retro uint8
		)
		if err := rows.Scan(&r.ChartID, &kindStr, &r.CacheKey, &r.ComputedAt, &r.Point.Name, &signName,
			&deg, &minute, &r.Point.Longitude, &house, &retro, &r.Point.Speed); err != nil {
			return nil, fmt.Errorf("scan chart record: %w", err)
		}
		r.Kind = models.ChartKind(kindStr)
		if err := r.Point.Sign.UnmarshalText([]byte(signName)); err != nil {
			return nil, fmt.Errorf("scan chart record: %w", err)
		}
		r.Point.SignGlyph = r.Point.Sign.Glyph()
		r.Point.Degree, r.Point.Minute, r.Point.House = int(deg), int(minute), int(house)
		r.Point.Retrograde = retro == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseChartArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *ClickHouseChartArchive) Close() error { return nil }
