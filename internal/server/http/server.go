// Package httpserver provides the HTTP gateway over the provider registry.
//
// Every provider operation is exposed as a GET endpoint under /api/v1.
// Responses carry the provider name, the record or records, and the
// call's wall-clock time in milliseconds.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/observability"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

// Federation is the registry surface the gateway serves.
// *federation.Registry implements it.
type Federation interface {
	Providers() []scholinfra.Provider
	TitleSearcher(name string) (scholinfra.TitleSearcher, error)
	PublicationLookuper(name string) (scholinfra.PublicationLookuper, error)
	FullTextSearcher(name string) (scholinfra.FullTextSearcher, error)
	HandleResolver(name string) (scholinfra.HandleResolver, error)
}

// Server is the HTTP gateway server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	registry   Federation
	logger     zerolog.Logger
	metrics    *observability.Metrics
	cfg        Config
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MetricsPath is where MetricsHandler is mounted.
	MetricsPath string
	// MetricsHandler serves Prometheus metrics. Nil disables the endpoint.
	MetricsHandler http.Handler
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(cfg Config, registry Federation, logger zerolog.Logger, metrics *observability.Metrics) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	s := &Server{
		registry: registry,
		logger:   logger.With().Str("component", "http-server").Logger(),
		metrics:  metrics,
		cfg:      cfg,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(s.metricsMiddleware)

	r.Get("/healthz", s.healthHandler)
	if s.cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, s.cfg.MetricsPath, s.cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		r.Get("/providers", s.listProviders)
		r.Route("/providers/{provider}", func(r chi.Router) {
			r.Get("/title-search", s.titleSearch)
			r.Get("/lookup", s.publicationLookup)
			r.Get("/full-text", s.fullTextSearch)
		})
		r.Route("/repec", func(r chi.Router) {
			r.Get("/handle", s.repecHandle)
			r.Get("/meta", s.repecMeta)
			r.Get("/lookup", s.repecLookup)
		})
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status. Providers are not probed.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": len(s.registry.Providers()),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
