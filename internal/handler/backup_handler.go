package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seatplan-api/internal/middleware"
	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/pkg/response"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

type backupService interface {
	Create(ctx context.Context, actor string) (string, error)
	List(ctx context.Context) ([]storage.FileInfo, error)
	Restore(ctx context.Context, actor, name string) (*models.DataFile, error)
}

// BackupHandler exposes data file backups.
type BackupHandler struct {
	service backupService
}

// NewBackupHandler constructs a backup handler.
func NewBackupHandler(service backupService) *BackupHandler {
	return &BackupHandler{service: service}
}

// List godoc
// @Summary List backups, newest first
// @Tags Backups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	backups, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(backups))
	response.JSON(c, http.StatusOK, backups, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Back up the current document
// @Tags Backups
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /backups [post]
func (h *BackupHandler) Create(c *gin.Context) {
	name, err := h.service.Create(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"name": name})
}

// Restore godoc
// @Summary Restore a backup
// @Tags Backups
// @Produce json
// @Param name path string true "Backup file name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /backups/{name}/restore [post]
func (h *BackupHandler) Restore(c *gin.Context) {
	df, err := h.service.Restore(c.Request.Context(), actorFromContext(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"restored": c.Param("name"), "metadata": df.Metadata}, nil)
}
