// Package metrics records statement and HTTP metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder defines the metrics the service emits.
type Recorder interface {
	// RecordStatement records one aggregation run.
	RecordStatement(source string, rows int, duration time.Duration)
	// RecordWarning counts a soft data-quality warning by reason.
	RecordWarning(reason string)
	// RecordCacheLookup counts statement cache hits and misses.
	RecordCacheLookup(hit bool)
	// RecordRequest records a served HTTP request.
	RecordRequest(method, route string, status int, duration time.Duration)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) RecordStatement(string, int, time.Duration) {}
func (NoopRecorder) RecordWarning(string) {}
func (NoopRecorder) RecordCacheLookup(bool) {}
func (NoopRecorder) RecordRequest(string, string, int, time.Duration) {}

// PrometheusRecorder implements Recorder on its own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	statements      *prometheus.CounterVec
	statementRows   *prometheus.HistogramVec
	statementTiming *prometheus.HistogramVec
	warnings        *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestTiming   *prometheus.HistogramVec
}

// NewPrometheusRecorder creates and registers all collectors under namespace.
func NewPrometheusRecorder(namespace string) *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		statements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statements_computed_total",
				Help:      "Total number of ledger aggregations by source",
			},
			[]string{"source"},
		),
		statementRows: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "statement_rows",
				Help:      "Number of rows per aggregation",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
			},
			[]string{"source"},
		),
		statementTiming: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "statement_compute_seconds",
				Help:      "Time spent aggregating a ledger",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_warnings_total",
				Help:      "Soft data-quality warnings raised during aggregation",
			},
			[]string{"reason"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statement_cache_lookups_total",
				Help:      "Statement cache lookups by result",
			},
			[]string{"result"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestTiming: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	r.registry.MustRegister(
		r.statements,
		r.statementRows,
		r.statementTiming,
		r.warnings,
		r.cacheLookups,
		r.requests,
		r.requestTiming,
	)
	return r
}

// RecordStatement implements Recorder.
func (r *PrometheusRecorder) RecordStatement(source string, rows int, duration time.Duration) {
	r.statements.WithLabelValues(source).Inc()
	r.statementRows.WithLabelValues(source).Observe(float64(rows))
	r.statementTiming.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordWarning implements Recorder.
func (r *PrometheusRecorder) RecordWarning(reason string) {
	r.warnings.WithLabelValues(reason).Inc()
}

// RecordCacheLookup implements Recorder.
func (r *PrometheusRecorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordRequest implements Recorder.
func (r *PrometheusRecorder) RecordRequest(method, route string, status int, duration time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestTiming.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
