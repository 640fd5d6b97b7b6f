package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seatplan-api/internal/allocation"
	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/middleware"
	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/validation"
	"github.com/noah-isme/seatplan-api/pkg/response"
)

type planningService interface {
	CurrentWeek() string
	AutoAssign(ctx context.Context, actor, week string) (*dto.WeekPlan, error)
	GetWeek(ctx context.Context, week string) (*dto.WeekPlan, error)
	ClearWeek(ctx context.Context, actor, week string) (*dto.ClearWeekResult, error)
	Statistics(ctx context.Context, week string) (*allocation.Statistics, bool, error)
	Validate(ctx context.Context, week string) (*validation.Report, bool, error)
	Runs(ctx context.Context, week string, limit int) ([]models.AssignmentRun, error)
}

// PlanningHandler exposes weekly seat planning endpoints.
type PlanningHandler struct {
	service planningService
}

// NewPlanningHandler constructs a planning handler.
func NewPlanningHandler(service planningService) *PlanningHandler {
	return &PlanningHandler{service: service}
}

// CurrentWeek godoc
// @Summary Current ISO week
// @Tags Planning
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /weeks/current [get]
func (h *PlanningHandler) CurrentWeek(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"week": h.service.CurrentWeek()}, nil)
}

// Assign godoc
// @Summary Auto-assign seats for a week
// @Description Replaces the stored plan of the week with a fresh assignment that keeps last week's seats where possible
// @Tags Planning
// @Produce json
// @Param week path string true "ISO week, e.g. 2025-W43"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /weeks/{week}/assign [post]
func (h *PlanningHandler) Assign(c *gin.Context) {
	plan, err := h.service.AutoAssign(c.Request.Context(), actorFromContext(c), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "assignments", len(plan.Assignments))
	middleware.SetMeta(c, "conflicts", len(plan.Conflicts))
	response.JSON(c, http.StatusOK, plan, middleware.ExtractMeta(c))
}

// GetWeek godoc
// @Summary Get stored week plan
// @Tags Planning
// @Produce json
// @Param week path string true "ISO week"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /weeks/{week} [get]
func (h *PlanningHandler) GetWeek(c *gin.Context) {
	plan, err := h.service.GetWeek(c.Request.Context(), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// ClearWeek godoc
// @Summary Clear week plan
// @Tags Planning
// @Produce json
// @Param week path string true "ISO week"
// @Success 200 {object} response.Envelope
// @Router /weeks/{week} [delete]
func (h *PlanningHandler) ClearWeek(c *gin.Context) {
	res, err := h.service.ClearWeek(c.Request.Context(), actorFromContext(c), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Statistics godoc
// @Summary Week statistics
// @Tags Planning
// @Produce json
// @Param week path string true "ISO week"
// @Success 200 {object} response.Envelope
// @Router /weeks/{week}/statistics [get]
func (h *PlanningHandler) Statistics(c *gin.Context) {
	stats, cacheHit, err := h.service.Statistics(c.Request.Context(), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, middleware.ExtractMeta(c))
}

// ValidateWeek godoc
// @Summary Validate document and week assignments
// @Tags Planning
// @Produce json
// @Param week path string true "ISO week"
// @Success 200 {object} response.Envelope
// @Router /weeks/{week}/validation [get]
func (h *PlanningHandler) ValidateWeek(c *gin.Context) {
	h.validate(c, c.Param("week"))
}

// ValidateAll godoc
// @Summary Validate document and every stored week
// @Tags Planning
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /validation [get]
func (h *PlanningHandler) ValidateAll(c *gin.Context) {
	h.validate(c, "")
}

func (h *PlanningHandler) validate(c *gin.Context, week string) {
	report, cacheHit, err := h.service.Validate(c.Request.Context(), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c))
}

// Runs godoc
// @Summary Assignment run history
// @Tags Planning
// @Produce json
// @Param week path string true "ISO week"
// @Param limit query int false "Maximum runs" default(20)
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /weeks/{week}/runs [get]
func (h *PlanningHandler) Runs(c *gin.Context) {
	runs, err := h.service.Runs(c.Request.Context(), c.Param("week"), parseQueryInt(c, "limit", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(runs))
	response.JSON(c, http.StatusOK, runs, middleware.ExtractMeta(c))
}

func parseQueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
