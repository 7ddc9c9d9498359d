// Package metrics exposes Prometheus metrics for scans, removals and HTTP
// requests.
//
//	m := metrics.New()
//	m.RecordPlan(plan, time.Since(start))
//	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
//
// All Record methods are safe on a nil *Metrics, so callers can pass nil when
// metrics are disabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"media-cleaner/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "media_cleaner"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	ScannedFiles    *prometheus.CounterVec
	ScannedBytes    *prometheus.CounterVec
	TaggedFiles     *prometheus.CounterVec
	TaggedBytes     *prometheus.CounterVec
	RemovedFiles    prometheus.Counter
	RemovedBytes    prometheus.Counter
	FailedRemovals  prometheus.Counter
	ScanDuration    prometheus.Histogram
	References      prometheus.Gauge
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a registry with runtime collectors and the cleaner metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScannedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "scanned_files_total",
			Help: "Classified media files seen by scans",
		}, []string{"area"}),
		ScannedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "scanned_bytes_total",
			Help: "Bytes of classified media files seen by scans",
		}, []string{"area"}),
		TaggedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tagged_files_total",
			Help: "Files tagged for removal",
		}, []string{"area"}),
		TaggedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tagged_bytes_total",
			Help: "Bytes tagged for removal",
		}, []string{"area"}),
		RemovedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "removed_files_total",
			Help: "Files deleted by confirmed runs",
		}),
		RemovedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "removed_bytes_total",
			Help: "Bytes deleted by confirmed runs",
		}),
		FailedRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "failed_removals_total",
			Help: "Deletes that failed",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "scan_duration_seconds",
			Help:    "Duration of complete scans",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		References: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "references",
			Help: "Distinct keys in the last loaded reference set",
		}),
		RequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ScannedFiles, m.ScannedBytes, m.TaggedFiles, m.TaggedBytes,
		m.RemovedFiles, m.RemovedBytes, m.FailedRemovals,
		m.ScanDuration, m.References,
		m.RequestCounter, m.RequestDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPlan adds the statistics of a finished scan.
func (m *Metrics) RecordPlan(plan *reconcile.Plan, elapsed time.Duration) {
	if m == nil || plan == nil {
		return
	}
	for _, a := range plan.Areas {
		m.ScannedFiles.WithLabelValues(a.Area).Add(float64(a.TotalFiles))
		m.ScannedBytes.WithLabelValues(a.Area).Add(float64(a.TotalBytes))
		m.TaggedFiles.WithLabelValues(a.Area).Add(float64(a.RemovedFiles))
		m.TaggedBytes.WithLabelValues(a.Area).Add(float64(a.RemovedBytes))
	}
	m.References.Set(float64(plan.References))
	m.ScanDuration.Observe(elapsed.Seconds())
}

// RecordRemoval adds the outcome of a removal.
func (m *Metrics) RecordRemoval(result *reconcile.RemovalResult) {
	if m == nil || result == nil {
		return
	}
	m.RemovedFiles.Add(float64(result.Removed))
	m.RemovedBytes.Add(float64(result.RemovedBytes))
	m.FailedRemovals.Add(float64(len(result.Failed)))
}

// Middleware counts and times every request by matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.RequestCounter.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
