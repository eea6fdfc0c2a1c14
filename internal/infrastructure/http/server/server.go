// Package server provides the public JSON API server
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shiliao/dietplan/internal/infrastructure/config"
	"github.com/shiliao/dietplan/internal/infrastructure/http/handlers"
	"github.com/shiliao/dietplan/internal/infrastructure/http/middleware"
	"github.com/shiliao/dietplan/internal/infrastructure/monitoring"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	engine *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server instance. metrics may be nil.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	api *handlers.APIHandlers,
	mw *middleware.Middleware,
	metrics *monitoring.MetricsCollector,
) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("server"),
	}

	s.engine = s.setupRouter(api, mw, metrics)

	var handler http.Handler = s.engine
	if cfg.Server.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	s.server = &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

func (s *Server) setupRouter(api *handlers.APIHandlers, mw *middleware.Middleware, metrics *monitoring.MetricsCollector) *gin.Engine {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		s.logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	// Order matters: the error handler must see errors raised by every
	// middleware below it, recovery included.
	r.Use(mw.RequestID())
	r.Use(mw.Logger())
	if metrics != nil {
		r.Use(metrics.HTTPMiddleware())
	}
	r.Use(mw.Compress())
	r.Use(mw.ErrorHandler())
	r.Use(mw.Recovery())
	r.Use(mw.Security())
	r.Use(mw.Tracing())
	r.Use(mw.RateLimit())
	r.Use(mw.BodyLimit())
	r.Use(mw.Timeout(s.config.Server.RequestTimeout))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "NOT_FOUND", "message": "Route not found"}})
	})

	api.RegisterRoutes(r.Group("/api/v1"))

	return r
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
		zap.Bool("h2c", s.config.Server.EnableH2C),
	)

	if !s.config.Server.EnableH2C {
		if err := http2.ConfigureServer(s.server, nil); err != nil {
			s.logger.Error("Failed to configure HTTP/2", zap.Error(err))
		}
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
