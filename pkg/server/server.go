package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stencil-hq/atrium/pkg/config"
	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/store"
)

// Resolver is the resolution surface the server consumes. Both
// engine.Resolver and the cache wrapper satisfy the Resolve method; the
// cache delegates slot and classification lookups to the engine.
type Resolver interface {
	Resolve(ctx context.Context, rctx *template.RequestContext) template.Decision
	ResolveForLocation(ctx context.Context, rctx *template.RequestContext, location template.Category) template.ID
	Classify(ctx context.Context, id template.ID) (template.Category, error)
}

// Server is the HTTP front for the template system.
type Server struct {
	store    store.Store
	resolver Resolver
	logger   *slog.Logger
	registry *prometheus.Registry
	http     *http.Server
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsRegistry exposes the given registry on /metrics.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// New creates the server over the store and resolver.
func New(cfg *config.ServerConfig, st store.Store, resolver Resolver, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    st,
		resolver: resolver,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Post("/", s.handleCreateTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTemplate)
				r.Put("/", s.handleUpdateTemplate)
				r.Delete("/", s.handleDeleteTemplate)
				r.Post("/duplicate", s.handleDuplicateTemplate)
				r.Get("/classification", s.handleClassify)
			})
		})
		r.Get("/stats", s.handleStats)
		r.Post("/resolve", s.handleResolve)
		r.Post("/resolve/{location}", s.handleResolveLocation)
	})
	return r
}

// Handler returns the router, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
