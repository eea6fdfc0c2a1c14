// Package monitoring provides Prometheus metrics, OpenTelemetry tracing and
// health checks for the planner services
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shiliao/dietplan/internal/application/planner"
	"github.com/shiliao/dietplan/internal/domain/diet"
	"go.uber.org/zap"
)

const namespace = "dietplan"

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Plan metrics
	plansGeneratedTotal *prometheus.CounterVec
	planDuration        prometheus.Histogram
	planFailuresTotal   *prometheus.CounterVec
	fallbacksTotal      *prometheus.CounterVec
	forcedRepeatsTotal  *prometheus.CounterVec

	// Catalog metrics
	catalogItems *prometheus.GaugeVec

	errorRateTotal *prometheus.CounterVec
}

var _ planner.Recorder = (*MetricsCollector)(nil)

// NewMetricsCollector creates a collector on its own registry, including the
// Go runtime and process collectors
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	register := func(c prometheus.Collector) {
		registry.MustRegister(c)
	}

	m := &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		plansGeneratedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_generated_total",
				Help:      "Total number of weekly plans generated, by primary constitution",
			},
			[]string{"constitution"},
		),
		planDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_generation_duration_seconds",
				Help:      "Weekly plan generation time in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
		),
		planFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_failures_total",
				Help:      "Total number of failed plan requests, by reason",
			},
			[]string{"reason"},
		),
		fallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_fallbacks_total",
				Help:      "Candidate searches that widened their pool",
			},
			[]string{"role", "level"},
		),
		forcedRepeatsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forced_repeats_total",
				Help:      "Picks that repeated a used food after the attempt bound",
			},
			[]string{"role"},
		),

		catalogItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_items",
				Help:      "Number of catalog foods per category",
			},
			[]string{"category"},
		),

		errorRateTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by service and type",
			},
			[]string{"service", "error_type"},
		),
	}

	register(m.httpRequestsTotal)
	register(m.httpRequestDuration)
	register(m.httpResponseSize)
	register(m.plansGeneratedTotal)
	register(m.planDuration)
	register(m.planFailuresTotal)
	register(m.fallbacksTotal)
	register(m.forcedRepeatsTotal)
	register(m.catalogItems)
	register(m.errorRateTotal)
	register(collectors.NewGoCollector())
	register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// HTTPMiddleware creates a Gin middleware for HTTP metrics collection
func (m *MetricsCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path, statusCode).Observe(duration)
		m.httpResponseSize.WithLabelValues(c.Request.Method, path).Observe(float64(c.Writer.Size()))

		if c.Writer.Status() >= 400 {
			errorType := "client_error"
			if c.Writer.Status() >= 500 {
				errorType = "server_error"
			}
			m.errorRateTotal.WithLabelValues("http", errorType).Inc()
		}
	}
}

// RecordPlanGenerated implements planner.Recorder
func (m *MetricsCollector) RecordPlanGenerated(primary diet.Constitution, duration time.Duration) {
	m.plansGeneratedTotal.WithLabelValues(string(primary)).Inc()
	m.planDuration.Observe(duration.Seconds())
}

// RecordPlanFailure implements planner.Recorder
func (m *MetricsCollector) RecordPlanFailure(reason string) {
	m.planFailuresTotal.WithLabelValues(reason).Inc()
	m.errorRateTotal.WithLabelValues("planner", reason).Inc()
}

// roleLabels keeps the role label ASCII so dashboards can query it
var roleLabels = map[diet.Role]string{
	diet.RoleStaple:    "staple",
	diet.RoleProtein:   "protein",
	diet.RoleVegetable: "vegetable",
	diet.RoleFruit:     "fruit",
	diet.RoleNut:       "nut",
	diet.RoleSeasoning: "seasoning",
	diet.RoleBeverage:  "beverage",
}

func roleLabel(role diet.Role) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	return "other"
}

// RecordFallback implements planner.Recorder
func (m *MetricsCollector) RecordFallback(role diet.Role, level diet.FallbackLevel) {
	m.fallbacksTotal.WithLabelValues(roleLabel(role), string(level)).Inc()
}

// RecordForcedRepeat implements planner.Recorder
func (m *MetricsCollector) RecordForcedRepeat(role diet.Role) {
	m.forcedRepeatsTotal.WithLabelValues(roleLabel(role)).Inc()
}

// SetCatalogCounts publishes the per-category size of the loaded catalog
func (m *MetricsCollector) SetCatalogCounts(counts map[diet.Category]int) {
	m.catalogItems.Reset()
	for category, n := range counts {
		m.catalogItems.WithLabelValues(string(category)).Set(float64(n))
	}
}

// Registry exposes the collector's registry, mainly for tests
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
