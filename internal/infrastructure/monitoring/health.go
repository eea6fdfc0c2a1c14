package monitoring

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck represents a health check result
type HealthCheck struct {
	Name      string                 `json:"name"`
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
}

// Healthy reports whether the check passed
func (h HealthCheck) Healthy() bool {
	return h.Status == StatusHealthy
}

// HealthChecker interface for implementing health checks
type HealthChecker interface {
	Check(ctx context.Context) HealthCheck
}

// CheckFunc adapts a function to HealthChecker
type CheckFunc func(ctx context.Context) HealthCheck

// Check implements HealthChecker
func (f CheckFunc) Check(ctx context.Context) HealthCheck {
	return f(ctx)
}

// HealthCheckManager manages application health checks
type HealthCheckManager struct {
	mu      sync.RWMutex
	checks  map[string]HealthChecker
	logger  *zap.Logger
	tracing *TracingProvider
}

// NewHealthCheckManager creates a new health check manager; tracing may be nil
func NewHealthCheckManager(logger *zap.Logger, tracing *TracingProvider) *HealthCheckManager {
	return &HealthCheckManager{
		checks:  make(map[string]HealthChecker),
		logger:  logger.Named("health"),
		tracing: tracing,
	}
}

// RegisterCheck registers a health check
func (h *HealthCheckManager) RegisterCheck(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = checker
	h.logger.Info("Health check registered", zap.String("name", name))
}

// CheckAll runs all registered health checks in name order
func (h *HealthCheckManager) CheckAll(ctx context.Context) []HealthCheck {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make([]HealthCheck, 0, len(names))
	for _, name := range names {
		result, err := h.Check(ctx, name)
		if err != nil {
			continue
		}
		if result.Healthy() {
			h.logger.Debug("Health check passed",
				zap.String("check", name),
				zap.Duration("duration", result.Duration),
			)
		} else {
			h.logger.Warn("Health check failed",
				zap.String("check", name),
				zap.String("message", result.Message),
				zap.Duration("duration", result.Duration),
			)
		}
		results = append(results, result)
	}
	return results
}

// Check runs a specific health check
func (h *HealthCheckManager) Check(ctx context.Context, name string) (HealthCheck, error) {
	h.mu.RLock()
	checker, exists := h.checks[name]
	h.mu.RUnlock()
	if !exists {
		return HealthCheck{}, fmt.Errorf("health check '%s' not found", name)
	}

	if h.tracing != nil {
		var span trace.Span
		ctx, span = h.tracing.StartSpan(ctx, "health.check."+name)
		defer span.End()
	}

	start := time.Now()
	result := checker.Check(ctx)
	result.Name = name
	result.Timestamp = time.Now()
	result.Duration = time.Since(start)
	return result, nil
}

// DatabaseHealthChecker implements health check for database
type DatabaseHealthChecker struct {
	db interface {
		PingContext(ctx context.Context) error
	}
}

// NewDatabaseHealthChecker creates a new database health checker
func NewDatabaseHealthChecker(db interface{ PingContext(ctx context.Context) error }) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

// Check implements HealthChecker interface
func (d *DatabaseHealthChecker) Check(ctx context.Context) HealthCheck {
	if err := d.db.PingContext(ctx); err != nil {
		return HealthCheck{
			Status:  StatusUnhealthy,
			Message: "Database connection failed",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}
	return HealthCheck{Status: StatusHealthy, Message: "Database connection successful"}
}

// RedisHealthChecker implements health check for Redis
type RedisHealthChecker struct {
	redis interface {
		Ping(ctx context.Context) error
	}
}

// NewRedisHealthChecker creates a new Redis health checker
func NewRedisHealthChecker(redis interface{ Ping(ctx context.Context) error }) *RedisHealthChecker {
	return &RedisHealthChecker{redis: redis}
}

// Check implements HealthChecker interface
func (r *RedisHealthChecker) Check(ctx context.Context) HealthCheck {
	if err := r.redis.Ping(ctx); err != nil {
		return HealthCheck{
			Status:  StatusUnhealthy,
			Message: "Redis connection failed",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}
	return HealthCheck{Status: StatusHealthy, Message: "Redis connection successful"}
}
