package models

import "time"

// ChartComputedEvent announces a freshly computed (not cache-served) chart.
type ChartComputedEvent struct {
	ID          string    `json:"id"`
	Kind        ChartKind `json:"kind"`
	CacheKey    string    `json:"cache_key"`
	Accuracy    Accuracy  `json:"accuracy"`
	ComputedAt  time.Time `json:"computed_at"`
	PointCount  int       `json:"point_count"`
	AspectCount int       `json:"aspect_count"`
	DurationMS  int64     `json:"duration_ms"`
}

// PrecomputeRequest asks a worker to compute and cache a natal chart ahead of use.
type PrecomputeRequest struct {
	Birth       BirthData `json:"birth"`
	HouseSystem string    `json:"house_system"`
	WithAspects bool      `json:"with_aspects"`
}

// ChartRecord is one archived point row of a computed chart.
type ChartRecord struct {
	ChartID    string         `json:"chart_id"`
	Kind       ChartKind      `json:"kind"`
	CacheKey   string         `json:"cache_key"`
	ComputedAt time.Time      `json:"computed_at"`
	Point      FormattedPoint `json:"point"`
}
