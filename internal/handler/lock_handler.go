package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seatplan-api/internal/models"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
	"github.com/noah-isme/seatplan-api/pkg/response"
)

type lockService interface {
	Acquire(ctx context.Context, user string) (*models.LockStatus, error)
	Release(ctx context.Context, user string) error
	Status(ctx context.Context) (*models.LockStatus, error)
}

// LockHandler manages the edit lock on the data document.
type LockHandler struct {
	service lockService
}

// NewLockHandler constructs a lock handler.
func NewLockHandler(service lockService) *LockHandler {
	return &LockHandler{service: service}
}

// Status godoc
// @Summary Lock status
// @Tags Lock
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lock [get]
func (h *LockHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Acquire godoc
// @Summary Acquire the edit lock
// @Tags Lock
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /lock [post]
func (h *LockHandler) Acquire(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.service.Acquire(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Release godoc
// @Summary Release the edit lock
// @Tags Lock
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /lock [delete]
func (h *LockHandler) Release(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Release(c.Request.Context(), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
