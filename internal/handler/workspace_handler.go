package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/service"
	"github.com/noah-isme/seatplan-api/pkg/response"
)

type workspaceService interface {
	Snapshot(ctx context.Context) (*models.DataFile, error)
	Undo(ctx context.Context, actor string) (*models.DataFile, error)
	Redo(ctx context.Context, actor string) (*models.DataFile, error)
	History() service.HistoryInfo
}

// WorkspaceHandler exposes the raw document and its undo history.
type WorkspaceHandler struct {
	workspace workspaceService
}

// NewWorkspaceHandler constructs a workspace handler.
func NewWorkspaceHandler(workspace workspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspace: workspace}
}

// Document godoc
// @Summary Get the planning document
// @Tags Workspace
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /document [get]
func (h *WorkspaceHandler) Document(c *gin.Context) {
	df, err := h.workspace.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, df, nil)
}

// History godoc
// @Summary Undo/redo availability
// @Tags Workspace
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *WorkspaceHandler) History(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.workspace.History(), nil)
}

// Undo godoc
// @Summary Undo the last change
// @Tags Workspace
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /history/undo [post]
func (h *WorkspaceHandler) Undo(c *gin.Context) {
	df, err := h.workspace.Undo(c.Request.Context(), actorFromContext(c))
	h.respondStep(c, df, err)
}

// Redo godoc
// @Summary Redo the last undone change
// @Tags Workspace
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /history/redo [post]
func (h *WorkspaceHandler) Redo(c *gin.Context) {
	df, err := h.workspace.Redo(c.Request.Context(), actorFromContext(c))
	h.respondStep(c, df, err)
}

func (h *WorkspaceHandler) respondStep(c *gin.Context, df *models.DataFile, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"metadata": df.Metadata,
		"history":  h.workspace.History(),
	}, nil)
}
