package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/allocation"
	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/middleware"
	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/validation"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

type planningServiceMock struct {
	plan         *dto.WeekPlan
	err          error
	cacheHit     bool
	lastActor    string
	lastWeek     string
	lastLimit    int
	validateWeek *string
}

func (m *planningServiceMock) CurrentWeek() string { return "2025-W43" }

func (m *planningServiceMock) AutoAssign(ctx context.Context, actor, week string) (*dto.WeekPlan, error) {
	m.lastActor, m.lastWeek = actor, week
	return m.plan, m.err
}

func (m *planningServiceMock) GetWeek(ctx context.Context, week string) (*dto.WeekPlan, error) {
	m.lastWeek = week
	return m.plan, m.err
}

func (m *planningServiceMock) ClearWeek(ctx context.Context, actor, week string) (*dto.ClearWeekResult, error) {
	m.lastActor, m.lastWeek = actor, week
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ClearWeekResult{Week: week, Cleared: true}, nil
}

func (m *planningServiceMock) Statistics(ctx context.Context, week string) (*allocation.Statistics, bool, error) {
	m.lastWeek = week
	if m.err != nil {
		return nil, false, m.err
	}
	return &allocation.Statistics{TotalAssignments: 3, OccupancyRate: 21.43}, m.cacheHit, nil
}

func (m *planningServiceMock) Validate(ctx context.Context, week string) (*validation.Report, bool, error) {
	m.validateWeek = &week
	return &validation.Report{Valid: true}, m.cacheHit, m.err
}

func (m *planningServiceMock) Runs(ctx context.Context, week string, limit int) ([]models.AssignmentRun, error) {
	m.lastWeek, m.lastLimit = week, limit
	return []models.AssignmentRun{{ID: "run-1", Week: week}}, m.err
}

func samplePlan() *dto.WeekPlan {
	return &dto.WeekPlan{
		Week: "2025-W43",
		Assignments: map[string][]models.Assignment{
			"monday": {{StudentID: "st1", SeatID: "s1", Day: "monday", Week: "2025-W43"}},
		},
		Conflicts: map[string][]string{"monday": {"st3"}},
	}
}

func TestPlanningHandlerAssign(t *testing.T) {
	mockSvc := &planningServiceMock{plan: samplePlan()}
	handler := NewPlanningHandler(mockSvc)

	c, w := newContext(http.MethodPost, "/weeks/2025-W43/assign", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.Assign(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", mockSvc.lastActor)
	assert.Equal(t, "2025-W43", mockSvc.lastWeek)
	env := decodeEnvelope(t, w)
	assert.EqualValues(t, 1, env.Meta["assignments"])
	assert.EqualValues(t, 1, env.Meta["conflicts"])
}

func TestPlanningHandlerAssignInvalidWeek(t *testing.T) {
	handler := NewPlanningHandler(&planningServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "week must look like 2025-W43")})

	c, w := newContext(http.MethodPost, "/weeks/2025-43/assign", "", gin.Param{Key: "week", Value: "2025-43"})
	handler.Assign(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanningHandlerGetWeekNotPlanned(t *testing.T) {
	handler := NewPlanningHandler(&planningServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "week 2025-W44 has not been planned")})

	c, w := newContext(http.MethodGet, "/weeks/2025-W44", "", gin.Param{Key: "week", Value: "2025-W44"})
	handler.GetWeek(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanningHandlerStatisticsReportsCacheHit(t *testing.T) {
	handler := NewPlanningHandler(&planningServiceMock{cacheHit: true})

	c, w := newContext(http.MethodGet, "/weeks/2025-W43/statistics", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.Statistics(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, string(env.Data), `"occupancy_rate":21.43`)
}

func TestPlanningHandlerValidateScopes(t *testing.T) {
	mockSvc := &planningServiceMock{}
	handler := NewPlanningHandler(mockSvc)

	c, w := newContext(http.MethodGet, "/validation", "")
	handler.ValidateAll(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.validateWeek)
	assert.Equal(t, "", *mockSvc.validateWeek)
	assert.Equal(t, false, middleware.ExtractMeta(c)["cache_hit"])

	c, w = newContext(http.MethodGet, "/weeks/2025-W43/validation", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.ValidateWeek(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-W43", *mockSvc.validateWeek)
}

func TestPlanningHandlerRunsLimit(t *testing.T) {
	mockSvc := &planningServiceMock{}
	handler := NewPlanningHandler(mockSvc)

	c, w := newContext(http.MethodGet, "/weeks/2025-W43/runs?limit=5", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.Runs(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, mockSvc.lastLimit)

	c, _ = newContext(http.MethodGet, "/weeks/2025-W43/runs?limit=abc", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.Runs(c)
	assert.Equal(t, 20, mockSvc.lastLimit)
}

func TestPlanningHandlerClearAndCurrent(t *testing.T) {
	mockSvc := &planningServiceMock{}
	handler := NewPlanningHandler(mockSvc)

	c, w := newContext(http.MethodDelete, "/weeks/2025-W43", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.ClearWeek(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cleared":true`)

	c, w = newContext(http.MethodGet, "/weeks/current", "")
	handler.CurrentWeek(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"week":"2025-W43"`)
}
