// Package http exposes a live assertion registry over HTTP for test
// dashboards and scrapers: current per-matcher counts as JSON, a health
// probe, and optionally Prometheus metrics.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	spanassert "github.com/aretw0/spanassert"
)

// Inspector is the read-only view of the registry the server needs.
type Inspector interface {
	Snapshot() []spanassert.EntrySnapshot
	Len() int
}

type server struct {
	inspector Inspector
	gatherer  prometheus.Gatherer
}

// Option configures the handler.
type Option func(*server)

// WithMetrics mounts a Prometheus endpoint at /metrics for the given gatherer.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *server) {
		s.gatherer = gatherer
	}
}

// NewHandler creates the introspection HTTP handler.
func NewHandler(inspector Inspector, opts ...Option) http.Handler {
	s := &server{inspector: inspector}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/assertions", s.assertions)
	r.Get("/healthz", s.healthz)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// assertions handles GET /assertions.
func (s *server) assertions(w http.ResponseWriter, r *http.Request) {
	snaps := s.inspector.Snapshot()
	if snaps == nil {
		snaps = []spanassert.EntrySnapshot{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"assertions": snaps,
	}); err != nil {
		http.Error(w, "encode snapshot", http.StatusInternalServerError)
	}
}

// healthz handles GET /healthz.
func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"matchers": s.inspector.Len(),
	})
}
