package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"AstroCore/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	charts       *prometheus.CounterVec
	chartLatency *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// New registers the recorder with the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		charts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrocore_charts_total",
				Help: "Chart computations by kind and result",
			},
			[]string{"kind", "result"},
		),
		chartLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astrocore_chart_duration_seconds",
				Help:    "Duration of chart computations in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"kind"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrocore_cache_lookups_total",
				Help: "Chart cache lookups by namespace and result",
			},
			[]string{"namespace", "result"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrocore_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordChart records one chart computation.
func (r *Recorder) RecordChart(kind models.ChartKind, result string, seconds float64) {
	r.charts.WithLabelValues(string(kind), result).Inc()
	r.chartLatency.WithLabelValues(string(kind)).Observe(seconds)
}

// RecordCacheLookup records a hit or miss.
func (r *Recorder) RecordCacheLookup(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(namespace, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordChart(models.ChartKind, string, float64) {}
func (Noop) RecordCacheLookup(string, bool)                {}
func (Noop) RecordError(string)                            {}
