// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors, registered on their own registry so that
// several servers can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	GenerationsTotal    *prometheus.CounterVec
	GenerationDuration  prometheus.Histogram
	ImageBytes          prometheus.Histogram
}

// New creates and registers all collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		GenerationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogstory_generations_total",
				Help: "Total number of story generations.",
			},
			[]string{"status", "kind"}, // status: success, failure
		),

		GenerationDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ogstory_generation_duration_seconds",
				Help:    "Duration of story generations.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),

		ImageBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ogstory_image_bytes",
				Help:    "Size of generated PNG images.",
				Buckets: prometheus.ExponentialBuckets(64<<10, 2, 8),
			},
		),
	}
}

// ObserveGeneration records the outcome of one generation. kind is empty
// on success.
func (m *Metrics) ObserveGeneration(d time.Duration, size int, kind string) {
	m.GenerationDuration.Observe(d.Seconds())
	if kind != "" {
		m.GenerationsTotal.WithLabelValues("failure", kind).Inc()
		return
	}
	m.GenerationsTotal.WithLabelValues("success", "").Inc()
	m.ImageBytes.Observe(float64(size))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by route pattern and status.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
			return err
		}
	}
}
