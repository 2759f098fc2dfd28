// Package httpapi wires the scheduling core, client adapters, audit store,
// response cache, metrics, and logger into an HTTP server: POST /schedule,
// GET /health, and GET /metrics.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/DrPhilDSI/harmony-scheduler/internal/adapter"
	"github.com/DrPhilDSI/harmony-scheduler/internal/cache"
	"github.com/DrPhilDSI/harmony-scheduler/internal/logger"
	"github.com/DrPhilDSI/harmony-scheduler/internal/metrics"
	"github.com/DrPhilDSI/harmony-scheduler/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds every dependency an inbound request needs.
type Server struct {
	Adapters *adapter.Factory
	Store    store.AuditStore
	Cache    cache.ResponseCache
	Metrics  *metrics.Metrics
	Log      logger.Logger

	MaxTimeLimitSeconds int
	limiter             *rate.Limiter
}

// Config bundles the construction-time settings NewServer needs beyond the
// dependencies it's handed directly.
type Config struct {
	RequestsPerSecond   float64
	Burst               int
	MaxTimeLimitSeconds int
}

// NewServer assembles a Server from already-constructed dependencies. The
// caller (cmd/scheduler) decides in-memory vs. Postgres and in-memory vs.
// Redis based on configuration, keeping that branch out of this package.
func NewServer(st store.AuditStore, rc cache.ResponseCache, m *metrics.Metrics, log logger.Logger, cfg Config) *Server {
	return &Server{
		Adapters:            adapter.NewFactory(),
		Store:               st,
		Cache:               rc,
		Metrics:             m,
		Log:                 log,
		MaxTimeLimitSeconds: cfg.MaxTimeLimitSeconds,
		limiter:             rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Handler builds the complete route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/schedule", s.rateLimited(http.HandlerFunc(s.handleSchedule)))
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))
	return s.instrumented(mux)
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, `{"error":"rate_limited","why":["too many requests"]}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrumented(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		status := strconv.Itoa(sw.status)
		s.Metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		s.Metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// headerCache is how handleSchedule tells the caller a response was served
// from cache, via a response header rather than by mutating the response
// body. The cache marker must never leak into the canonical shape.
const headerCache = "X-Cache"
