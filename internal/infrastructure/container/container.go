// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shiliao/dietplan/internal/application/planner"
	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/infrastructure/catalog"
	"github.com/shiliao/dietplan/internal/infrastructure/config"
	"github.com/shiliao/dietplan/internal/infrastructure/http/apiserver"
	"github.com/shiliao/dietplan/internal/infrastructure/http/handlers"
	"github.com/shiliao/dietplan/internal/infrastructure/http/middleware"
	"github.com/shiliao/dietplan/internal/infrastructure/http/server"
	"github.com/shiliao/dietplan/internal/infrastructure/monitoring"
	gormRepo "github.com/shiliao/dietplan/internal/infrastructure/persistence/gorm"
	"github.com/shiliao/dietplan/internal/infrastructure/persistence/memory"
	"github.com/shiliao/dietplan/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/shiliao/dietplan/internal/infrastructure/persistence/redis"
	"github.com/shiliao/dietplan/internal/infrastructure/persistence/sqlite"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"github.com/shiliao/dietplan/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPath is the optional configuration file handed to config.Load
type ConfigPath string

// Module provides all dependency injection modules. The caller supplies a
// ConfigPath.
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	CacheModule,

	// Catalog and planning
	CatalogModule,
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// CoreModule is Module without the HTTP servers, for the CLI
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	CacheModule,
	CatalogModule,
	ServiceModule,
	fx.Invoke(registerStorageHooks),
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			Endpoint:       cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
	monitoring.NewHealthCheckManager,
	func(cfg *config.Config, metrics *monitoring.MetricsCollector) planner.Recorder {
		if !cfg.Monitoring.EnableMetrics {
			return planner.NopRecorder{}
		}
		return metrics
	},
)

// DatabaseModule provides the catalog database
var DatabaseModule = fx.Provide(
	NewDatabase,
	gormRepo.NewCatalogRepository,
)

// NewDatabase opens the configured database and seeds it with the
// embedded catalog when asked to
func NewDatabase(cfg *config.Config, log *zap.Logger, health *monitoring.HealthCheckManager) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = postgres.Open(cfg, log)
	default:
		db, err = sqlite.SetupDatabase(cfg.Database.Path, gormRepo.NewLogger(log, cfg.Database.LogLevel))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}

	if cfg.Database.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sqlite.SeedDatabase(ctx, db, log); err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	health.RegisterCheck("database", monitoring.NewDatabaseHealthChecker(sqlDB))

	log.Info("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("seeded", cfg.Database.Seed),
	)
	return db, nil
}

// CacheModule provides the catalog snapshot cache
var CacheModule = fx.Provide(
	NewCache,
)

// NewCache returns Redis when enabled, the in-memory cache otherwise
func NewCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, health *monitoring.HealthCheckManager) outbound.CacheRepository {
	if cfg.Redis.Enabled {
		cache := redisRepo.NewCacheRepository(redisRepo.NewClient(cfg.Redis), log)
		health.RegisterCheck("redis", monitoring.NewRedisHealthChecker(cache))
		lc.Append(fx.StopHook(cache.Close))
		log.Info("Using Redis cache", zap.String("addr", cfg.Redis.Addr))
		return cache
	}

	cache := memory.NewCacheRepository()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				cache.Run(ctx, time.Minute)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
	log.Info("Using in-memory cache")
	return cache
}

// CatalogModule provides the food catalog
var CatalogModule = fx.Provide(
	diet.DefaultTables,
	NewCatalogSource,
	func(
		source outbound.CatalogSource,
		cache outbound.CacheRepository,
		tables diet.Tables,
		cfg *config.Config,
		log *zap.Logger,
	) *catalog.Provider {
		return catalog.NewProvider(source, cache, tables, catalog.ProviderConfig{
			CacheKey: cfg.Catalog.CacheKey,
			CacheTTL: cfg.Catalog.CacheTTL,
			AutoTag:  cfg.Catalog.AutoTag,
		}, log)
	},
	func(p *catalog.Provider) outbound.CatalogProvider { return p },
)

// NewCatalogSource picks the file or database source
func NewCatalogSource(cfg *config.Config, repo *gormRepo.CatalogRepository) outbound.CatalogSource {
	if cfg.Catalog.Source == config.CatalogSourceDatabase {
		return repo
	}
	return catalog.NewFileSource(cfg.Catalog.Path)
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		catalogs outbound.CatalogProvider,
		tables diet.Tables,
		recorder planner.Recorder,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.PlanService {
		return planner.NewService(catalogs, tables, recorder, planner.ServiceConfig{
			MaxAttempts: cfg.Generator.MaxAttempts,
			Seed:        cfg.Generator.Seed,
		}, log)
	},
)

// HTTPModule provides HTTP servers and handlers
var HTTPModule = fx.Provide(
	middleware.New,
	handlers.NewAPIHandlers,
	func(p *catalog.Provider, health *monitoring.HealthCheckManager, cfg *config.Config, log *zap.Logger) *handlers.AdminHandlers {
		return handlers.NewAdminHandlers(p, health, cfg.App.Version, log)
	},
	func(
		cfg *config.Config,
		log *zap.Logger,
		api *handlers.APIHandlers,
		mw *middleware.Middleware,
		metrics *monitoring.MetricsCollector,
	) *server.Server {
		if !cfg.Monitoring.EnableMetrics {
			metrics = nil
		}
		return server.NewServer(cfg, log, api, mw, metrics)
	},
	func(
		cfg *config.Config,
		log *zap.Logger,
		admin *handlers.AdminHandlers,
		metrics *monitoring.MetricsCollector,
	) (*apiserver.AdminServer, error) {
		var metricsHandler http.Handler
		if cfg.Monitoring.EnableMetrics {
			metricsHandler = metrics.Handler()
		}
		return apiserver.NewAdminServer(cfg, log, admin, metricsHandler)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// HookParams collects what the lifecycle hooks start and stop
type HookParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	DB         *gorm.DB
	Catalogs   *catalog.Provider
	Metrics    *monitoring.MetricsCollector
	Tracing    *monitoring.TracingProvider
	Server     *server.Server
	Admin      *apiserver.AdminServer
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(p HookParams) {
	log := p.Logger
	serve := func(name string, start func() error) {
		go func() {
			if err := start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				log.Error("Server stopped unexpectedly", zap.String("server", name), zap.Error(err))
				_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			}
		}()
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting dietplan",
				zap.String("version", p.Config.App.Version),
				zap.String("environment", p.Config.App.Environment),
			)

			// A failed warm-up is not fatal: the provider retries on the
			// next request and /ready reports the state meanwhile.
			if c, err := p.Catalogs.Load(ctx); err != nil {
				log.Error("Catalog warm-up failed", zap.Error(err))
			} else {
				p.Metrics.SetCatalogCounts(c.Counts())
			}

			serve("api", p.Server.Start)
			if p.Config.Admin.Enabled {
				serve("admin", p.Admin.Start)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down dietplan")

			if err := p.Server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}
			if p.Config.Admin.Enabled {
				if err := p.Admin.Shutdown(ctx); err != nil {
					log.Error("Failed to shutdown admin server", zap.Error(err))
				}
			}
			if err := p.Tracing.Shutdown(ctx); err != nil {
				log.Error("Failed to flush traces", zap.Error(err))
			}
			closeDatabase(p.DB, log)

			_ = log.Sync()
			return nil
		},
	})
}

// registerStorageHooks closes the database when a CLI app stops
func registerStorageHooks(lc fx.Lifecycle, db *gorm.DB, tracing *monitoring.TracingProvider, log *zap.Logger) {
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		if err := tracing.Shutdown(ctx); err != nil {
			log.Error("Failed to flush traces", zap.Error(err))
		}
		closeDatabase(db, log)
		return nil
	}))
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Failed to close database connection", zap.Error(err))
	}
}
