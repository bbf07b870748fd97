// Package server exposes the chart pipeline and live chart instances over
// HTTP.
//
// Stateless rendering:
//
//	POST   /v1/render                 dataset + config → artifact(s)
//
// Live charts, each backed by an [instance.Instance]:
//
//	POST   /v1/charts                 create a chart
//	GET    /v1/charts/{id}            chart summary
//	DELETE /v1/charts/{id}            drop a chart
//	PUT    /v1/charts/{id}/data       deliver rows (guarded refresh)
//	PUT    /v1/charts/{id}/config     replace the configuration
//	PUT    /v1/charts/{id}/size       resize the canvas
//	GET    /v1/charts/{id}/layout     model + layout + selection as JSON
//	GET    /v1/charts/{id}/svg        the current snapshot as SVG
//	POST   /v1/charts/{id}/select     apply a selection intent
//
//	GET    /healthz
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackchart/pkg/buildinfo"
	"github.com/matzehuels/stackchart/pkg/pipeline"
)

const (
	// DefaultMaxCharts bounds the number of live charts.
	DefaultMaxCharts = 1000

	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 10 << 20

	defaultRequestTimeout = 30 * time.Second
)

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger. By default logs are discarded.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxCharts bounds the registry; the least recently used chart is
// dropped when it is full.
func WithMaxCharts(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxCharts = n
		}
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// Server serves the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	charts    *registry
	logger    *log.Logger
	maxBody   int64
	maxCharts int
}

// New creates a server rendering through runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		maxBody:   DefaultMaxBodyBytes,
		maxCharts: DefaultMaxCharts,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.charts = newRegistry(s.maxCharts, func(id string) {
		s.logger.Debug("chart released", "chart", id)
	})
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Route("/charts", func(r chi.Router) {
			r.Post("/", s.handleCreateChart)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetChart)
				r.Delete("/", s.handleDeleteChart)
				r.Put("/data", s.handleSetData)
				r.Put("/config", s.handleConfigure)
				r.Put("/size", s.handleResize)
				r.Get("/layout", s.handleLayout)
				r.Get("/svg", s.handleSVG)
				r.Post("/select", s.handleSelect)
			})
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "version", buildinfo.Version)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
		"charts":  s.charts.len(),
	})
}
