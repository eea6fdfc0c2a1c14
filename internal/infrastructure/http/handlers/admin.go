package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/infrastructure/catalog"
	"github.com/shiliao/dietplan/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// CatalogStatus exposes the process catalog to the admin endpoints
type CatalogStatus interface {
	Loaded() bool
	Current() *catalog.Catalog
}

// AdminHandlers serves health, readiness and catalog debug endpoints
type AdminHandlers struct {
	catalogs CatalogStatus
	health   *monitoring.HealthCheckManager
	version  string
	started  time.Time
	logger   *zap.Logger
}

// NewAdminHandlers creates the admin handlers. health may be nil.
func NewAdminHandlers(catalogs CatalogStatus, health *monitoring.HealthCheckManager, version string, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{
		catalogs: catalogs,
		health:   health,
		version:  version,
		started:  time.Now(),
		logger:   logger.Named("admin"),
	}
}

// ReadinessResponse is the body of GET /ready
type ReadinessResponse struct {
	Status        string                   `json:"status"`
	CatalogLoaded bool                     `json:"catalog_loaded"`
	Checks        []monitoring.HealthCheck `json:"checks,omitempty"`
}

// CatalogStatsResponse is the body of GET /debug/catalog
type CatalogStatsResponse struct {
	Loaded     bool                  `json:"loaded"`
	Total      int                   `json:"total"`
	Categories map[diet.Category]int `json:"categories,omitempty"`
}

// Health handles GET /health. It only reports that the process is alive.
func (h *AdminHandlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  monitoring.StatusHealthy,
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready handles GET /ready: the catalog must be loaded and every
// registered dependency check must pass
func (h *AdminHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{
		Status:        monitoring.StatusHealthy,
		CatalogLoaded: h.catalogs.Loaded(),
	}
	if h.health != nil {
		resp.Checks = h.health.CheckAll(r.Context())
	}

	ready := resp.CatalogLoaded
	for _, check := range resp.Checks {
		if !check.Healthy() {
			ready = false
		}
	}

	status := http.StatusOK
	if !ready {
		resp.Status = monitoring.StatusUnhealthy
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// CatalogStats handles GET /debug/catalog
func (h *AdminHandlers) CatalogStats(w http.ResponseWriter, r *http.Request) {
	c := h.catalogs.Current()
	if c == nil {
		h.writeJSON(w, http.StatusOK, CatalogStatsResponse{})
		return
	}
	h.writeJSON(w, http.StatusOK, CatalogStatsResponse{
		Loaded:     true,
		Total:      c.Len(),
		Categories: c.Counts(),
	})
}

// writeJSON writes a JSON response
func (h *AdminHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}
