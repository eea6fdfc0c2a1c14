// Package apiserver provides the admin HTTP server: probes, metrics,
// catalog statistics and the API description
package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/shiliao/dietplan/internal/infrastructure/config"
	"github.com/shiliao/dietplan/internal/infrastructure/http/handlers"
	"github.com/shiliao/dietplan/internal/infrastructure/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// AdminServer serves operational endpoints on a separate port
type AdminServer struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	admin   *handlers.AdminHandlers
	openAPI *OpenAPIHandler
	metrics http.Handler
}

// NewAdminServer creates the admin server. metrics may be nil when metrics
// are disabled.
func NewAdminServer(
	cfg *config.Config,
	log *zap.Logger,
	admin *handlers.AdminHandlers,
	metrics http.Handler,
) (*AdminServer, error) {
	openAPI, err := NewOpenAPIHandler(log)
	if err != nil {
		return nil, err
	}

	s := &AdminServer{
		config:  cfg,
		logger:  log.Named("admin-server"),
		admin:   admin,
		openAPI: openAPI,
		metrics: metrics,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:              cfg.AdminAddr(),
		Handler:           otelhttp.NewHandler(s.router, "admin"),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *AdminServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AdminLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NoCache())

	r.Get("/health", s.admin.Health)
	r.Get("/ready", s.admin.Ready)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/debug", func(r chi.Router) {
		r.Get("/catalog", s.admin.CatalogStats)
	})

	r.Route("/docs", func(r chi.Router) {
		r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)
		r.Get("/openapi.json", s.openAPI.ServeOpenAPIJSON)
	})

	return r
}

// Handler returns the instrumented root handler
func (s *AdminServer) Handler() http.Handler {
	return s.server.Handler
}

// Server returns the underlying HTTP server instance
func (s *AdminServer) Server() *http.Server {
	return s.server
}

// Start starts the admin server and blocks until it stops
func (s *AdminServer) Start() error {
	s.logger.Info("Starting admin server", zap.String("address", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the admin server
func (s *AdminServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down admin server")
	return s.server.Shutdown(ctx)
}
