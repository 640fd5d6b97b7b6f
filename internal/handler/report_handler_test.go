package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/service"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

type reportServiceMock struct {
	file      string
	err       error
	lastToken string
}

func (m *reportServiceMock) WeekPDF(ctx context.Context, week string) (*service.RenderedReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &service.RenderedReport{Filename: "seatplan_" + week + ".pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
}

func (m *reportServiceMock) WeekCSV(ctx context.Context, week string) (*service.RenderedReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &service.RenderedReport{Filename: "seatplan_" + week + ".csv", ContentType: "text/csv", Body: []byte("Week,Day\n")}, nil
}

func (m *reportServiceMock) Publish(ctx context.Context, actor, week string) (*dto.PublishedReport, error) {
	return &dto.PublishedReport{Week: week, URL: "/api/v1/downloads/abc"}, m.err
}

func (m *reportServiceMock) OpenDownload(token string) (*os.File, string, error) {
	m.lastToken = token
	if m.err != nil {
		return nil, "", m.err
	}
	f, err := os.Open(m.file)
	return f, filepath.Base(m.file), err
}

func TestReportHandlerWeekPDF(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{})

	c, w := newContext(http.MethodGet, "/weeks/2025-W43/report.pdf", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.WeekPDF(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seatplan_2025-W43.pdf")
}

func TestReportHandlerWeekCSVNotPlanned(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "week 2025-W43 has not been planned")})

	c, w := newContext(http.MethodGet, "/weeks/2025-W43/export.csv", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.WeekCSV(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandlerPublish(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{})

	c, w := newContext(http.MethodPost, "/weeks/2025-W43/publish", "", gin.Param{Key: "week", Value: "2025-W43"})
	handler.Publish(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"/api/v1/downloads/abc"`)
}

func TestReportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seatplan_2025-W43.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3 body"), 0o600))
	mockSvc := &reportServiceMock{file: path}
	handler := NewReportHandler(mockSvc)

	c, w := newContext(http.MethodGet, "/downloads/tok", "", gin.Param{Key: "token", Value: "tok"})
	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", mockSvc.lastToken)
	assert.Equal(t, "%PDF-1.3 body", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seatplan_2025-W43.pdf")
}

func TestReportHandlerDownloadExpired(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "download link expired")})

	c, w := newContext(http.MethodGet, "/downloads/tok", "", gin.Param{Key: "token", Value: "tok"})
	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
