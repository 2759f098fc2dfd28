// Package metrics exposes the scheduler's Prometheus instrumentation:
// HTTP traffic and solve-outcome counters/histograms on a dedicated
// registry, the same split this codebase's other services use instead of
// the global default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles every collector the scheduler records to.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	SolveOutcomes *prometheus.CounterVec
	SolveDuration *prometheus.HistogramVec
	SolveObjective *prometheus.HistogramVec

	CacheHits *prometheus.CounterVec
}

// New builds and registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "scheduler_http_requests_total", Help: "Total HTTP requests by method, path, and status."},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "scheduler_http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"method", "path", "status"},
		),
		SolveOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "scheduler_solve_outcomes_total", Help: "Solve outcomes by status."},
			[]string{"status"},
		),
		SolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "scheduler_solve_duration_seconds", Help: "Wall-clock time spent inside Solve.", Buckets: prometheus.DefBuckets},
			[]string{"status"},
		),
		SolveObjective: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "scheduler_solve_objective_minutes", Help: "Total tardiness minutes of the returned schedule.", Buckets: []float64{0, 10, 30, 60, 120, 240, 480, 960}},
			[]string{"status"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "scheduler_cache_requests_total", Help: "Response cache lookups by outcome."},
			[]string{"outcome"},
		),
	}

	m.Registry.MustRegister(
		m.HTTPRequests, m.HTTPDuration,
		m.SolveOutcomes, m.SolveDuration, m.SolveObjective,
		m.CacheHits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}
