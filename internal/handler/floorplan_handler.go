package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/middleware"
	"github.com/noah-isme/seatplan-api/internal/models"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
	"github.com/noah-isme/seatplan-api/pkg/response"
)

type floorplanService interface {
	Get(ctx context.Context) (*models.Floorplan, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	UpsertRoom(ctx context.Context, actor, id string, req dto.RoomRequest) (*models.Room, error)
	DeleteRoom(ctx context.Context, actor, id string) (*dto.DeleteRoomResult, error)
	UpsertSeat(ctx context.Context, actor, id string, req dto.SeatRequest) (*models.Seat, error)
	DeleteSeat(ctx context.Context, actor, id string) error
}

// FloorplanHandler exposes room and seat endpoints.
type FloorplanHandler struct {
	service floorplanService
}

// NewFloorplanHandler builds a new handler.
func NewFloorplanHandler(service floorplanService) *FloorplanHandler {
	return &FloorplanHandler{service: service}
}

// Get godoc
// @Summary Get floorplan
// @Tags Floorplan
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /floorplan [get]
func (h *FloorplanHandler) Get(c *gin.Context) {
	plan, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "rooms", len(plan.Rooms))
	middleware.SetMeta(c, "seats", len(plan.Seats))
	response.JSON(c, http.StatusOK, plan, middleware.ExtractMeta(c))
}

// ListRooms godoc
// @Summary List rooms
// @Tags Floorplan
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /floorplan/rooms [get]
func (h *FloorplanHandler) ListRooms(c *gin.Context) {
	plan, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan.Rooms, nil)
}

// GetRoom godoc
// @Summary Get room
// @Tags Floorplan
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /floorplan/rooms/{id} [get]
func (h *FloorplanHandler) GetRoom(c *gin.Context) {
	room, err := h.service.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// PutRoom godoc
// @Summary Create or replace room
// @Tags Floorplan
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body dto.RoomRequest true "Room payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /floorplan/rooms/{id} [put]
func (h *FloorplanHandler) PutRoom(c *gin.Context) {
	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload"))
		return
	}
	room, err := h.service.UpsertRoom(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// DeleteRoom godoc
// @Summary Delete room and its seats
// @Tags Floorplan
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /floorplan/rooms/{id} [delete]
func (h *FloorplanHandler) DeleteRoom(c *gin.Context) {
	res, err := h.service.DeleteRoom(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// PutSeat godoc
// @Summary Create or replace seat
// @Tags Floorplan
// @Accept json
// @Produce json
// @Param id path string true "Seat ID"
// @Param payload body dto.SeatRequest true "Seat payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /floorplan/seats/{id} [put]
func (h *FloorplanHandler) PutSeat(c *gin.Context) {
	var req dto.SeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid seat payload"))
		return
	}
	seat, err := h.service.UpsertSeat(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seat, nil)
}

// DeleteSeat godoc
// @Summary Delete seat
// @Tags Floorplan
// @Param id path string true "Seat ID"
// @Success 204
// @Router /floorplan/seats/{id} [delete]
func (h *FloorplanHandler) DeleteSeat(c *gin.Context) {
	if err := h.service.DeleteSeat(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
