// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/pkg/errors"
	"go.uber.org/zap"
)

// APIHandlers handles the public plan API
type APIHandlers struct {
	planService inbound.PlanService
	logger      *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(planService inbound.PlanService, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		planService: planService,
		logger:      logger.Named("api"),
	}
}

// APIResponse represents a standard API response. Errors are rendered by
// the error middleware in the same envelope.
type APIResponse struct {
	Success bool                 `json:"success"`
	Data    interface{}          `json:"data,omitempty"`
	Error   *errors.ErrorDetails `json:"error,omitempty"`
}

// RegisterRoutes mounts the plan API on rg
func (h *APIHandlers) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/plans", h.GeneratePlan)
	rg.POST("/profile/assessment", h.AssessProfile)
	rg.GET("/constitutions", h.ListConstitutions)
}

// GeneratePlan handles POST /api/v1/plans
func (h *APIHandlers) GeneratePlan(c *gin.Context) {
	var cmd inbound.GeneratePlanCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.badRequest(c, err)
		return
	}

	plan, err := h.planService.GeneratePlan(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: plan})
}

// AssessProfile handles POST /api/v1/profile/assessment
func (h *APIHandlers) AssessProfile(c *gin.Context) {
	var cmd inbound.ProfileCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.badRequest(c, err)
		return
	}

	assessment, err := h.planService.AssessProfile(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: assessment})
}

// ListConstitutions handles GET /api/v1/constitutions
func (h *APIHandlers) ListConstitutions(c *gin.Context) {
	profiles, err := h.planService.ListConstitutions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: profiles})
}

func (h *APIHandlers) badRequest(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		_ = c.Error(errors.NewAppError(errors.CodePayloadTooLarge, "Request body too large",
			fmt.Sprintf("limit is %d bytes", tooLarge.Limit)))
		return
	}
	h.logger.Debug("Malformed request body", zap.Error(err))
	_ = c.Error(errors.NewBadRequestError("Malformed JSON body").WithCause(err))
}
