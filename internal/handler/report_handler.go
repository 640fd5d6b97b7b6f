package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/service"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
	"github.com/noah-isme/seatplan-api/pkg/response"
)

type reportService interface {
	WeekPDF(ctx context.Context, week string) (*service.RenderedReport, error)
	WeekCSV(ctx context.Context, week string) (*service.RenderedReport, error)
	Publish(ctx context.Context, actor, week string) (*dto.PublishedReport, error)
	OpenDownload(token string) (*os.File, string, error)
}

// ReportHandler serves week plan documents.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// WeekPDF godoc
// @Summary Download week plan as PDF
// @Tags Reports
// @Produce application/pdf
// @Param week path string true "ISO week"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /weeks/{week}/report.pdf [get]
func (h *ReportHandler) WeekPDF(c *gin.Context) {
	report, err := h.service.WeekPDF(c.Request.Context(), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Body)
}

// WeekCSV godoc
// @Summary Download week plan as CSV
// @Tags Reports
// @Produce text/csv
// @Param week path string true "ISO week"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /weeks/{week}/export.csv [get]
func (h *ReportHandler) WeekCSV(c *gin.Context) {
	report, err := h.service.WeekCSV(c.Request.Context(), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Body)
}

// Publish godoc
// @Summary Publish week plan PDF behind a signed link
// @Tags Reports
// @Produce json
// @Param week path string true "ISO week"
// @Success 201 {object} response.Envelope
// @Router /weeks/{week}/publish [post]
func (h *ReportHandler) Publish(c *gin.Context) {
	published, err := h.service.Publish(c.Request.Context(), actorFromContext(c), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, published)
}

// Download godoc
// @Summary Download a published report via signed token
// @Tags Reports
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /downloads/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Param("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.service.OpenDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read report"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}
