package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"AstroCore/pkg/logger"
)

// HTTPMetrics holds request collectors registered against one registerer.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
	size     *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "astrocore_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "astrocore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "class"}),
		inFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "astrocore_http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		}, []string{"route", "method"}),
		size: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "astrocore_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{200, 500, 1_000, 2_000, 5_000, 10_000, 50_000, 100_000},
		}, []string{"route", "method", "class"}),
	}
}

// Middleware records request metrics labelled by the route template, and
// logs 5xx responses and requests slower than slowThreshold.
func (m *HTTPMetrics) Middleware(l *logger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			m.inFlight.WithLabelValues(route, method).Inc()
			defer m.inFlight.WithLabelValues(route, method).Dec()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			status := strconv.Itoa(res.Status)
			class := statusClass(res.Status)
			took := time.Since(start)

			m.requests.WithLabelValues(route, method, status).Inc()
			m.duration.WithLabelValues(route, method, class).Observe(took.Seconds())
			m.size.WithLabelValues(route, method, class).Observe(float64(res.Size))

			if l == nil {
				return nil
			}
			switch {
			case res.Status >= 500:
				l.Error("http request failed",
					logger.String("route", route),
					logger.String("method", method),
					logger.String("status", status),
					logger.Duration("duration_ms", took),
				)
			case slowThreshold > 0 && took >= slowThreshold:
				l.Warn("http request slow",
					logger.String("route", route),
					logger.String("method", method),
					logger.String("status", status),
					logger.Duration("duration_ms", took),
				)
			}
			return nil
		}
	}
}

func statusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
