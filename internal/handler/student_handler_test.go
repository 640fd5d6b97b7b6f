package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/models"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

type studentServiceMock struct {
	students   []models.Student
	err        error
	lastFilter dto.StudentFilter
	lastReq    dto.StudentRequest
	lastID     string
	deleted    bool
}

func (m *studentServiceMock) List(ctx context.Context, filter dto.StudentFilter) ([]models.Student, error) {
	m.lastFilter = filter
	return m.students, m.err
}

func (m *studentServiceMock) Get(ctx context.Context, id string) (*models.Student, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.Student{ID: id, Name: "Alice"}, nil
}

func (m *studentServiceMock) Upsert(ctx context.Context, actor, id string, req dto.StudentRequest) (*models.Student, error) {
	m.lastID, m.lastReq = id, req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Student{ID: id, Name: req.Name, WeeklyPattern: req.WeeklyPattern}, nil
}

func (m *studentServiceMock) Delete(ctx context.Context, actor, id string) error {
	m.lastID = id
	m.deleted = true
	return m.err
}

func TestStudentHandlerListFilters(t *testing.T) {
	mockSvc := &studentServiceMock{students: []models.Student{{ID: "st1", Name: "Alice"}}}
	handler := NewStudentHandler(mockSvc)

	c, w := newContext(http.MethodGet, "/students?search=ali&day=monday", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ali", mockSvc.lastFilter.Search)
	assert.Equal(t, "monday", mockSvc.lastFilter.Day)
	assert.EqualValues(t, 1, decodeEnvelope(t, w).Meta["total"])
}

func TestStudentHandlerListInvalidDay(t *testing.T) {
	handler := NewStudentHandler(&studentServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "unknown day")})

	c, w := newContext(http.MethodGet, "/students?day=someday", "")
	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerPut(t *testing.T) {
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newContext(http.MethodPut, "/students/st1",
		`{"name":"Alice","weekly_pattern":{"monday":true},"requirements":["near_window"]}`,
		gin.Param{Key: "id", Value: "st1"})
	handler.Put(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "st1", mockSvc.lastID)
	assert.Equal(t, []string{"near_window"}, mockSvc.lastReq.Requirements)
	assert.True(t, mockSvc.lastReq.WeeklyPattern["monday"])
}

func TestStudentHandlerGetAndDelete(t *testing.T) {
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newContext(http.MethodGet, "/students/st1", "", gin.Param{Key: "id", Value: "st1"})
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Alice"`)

	c, w = newContext(http.MethodDelete, "/students/st1", "", gin.Param{Key: "id", Value: "st1"})
	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.deleted)
}
