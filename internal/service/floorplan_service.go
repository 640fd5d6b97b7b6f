package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/dto"
	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/validation"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

// FloorplanService manages rooms and seats.
type FloorplanService struct {
	workspace *Workspace
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFloorplanService constructs a FloorplanService.
func NewFloorplanService(workspace *Workspace, validate *validator.Validate, logger *zap.Logger) *FloorplanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FloorplanService{workspace: workspace, validator: validate, logger: logger}
}

// Get returns the rooms and seats.
func (s *FloorplanService) Get(ctx context.Context) (*models.Floorplan, error) {
	df, err := s.workspace.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &df.Floorplan, nil
}

// GetRoom returns one room.
func (s *FloorplanService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	df, err := s.workspace.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	idx := df.FindRoom(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
	}
	room := df.Floorplan.Rooms[idx]
	return &room, nil
}

// UpsertRoom creates or replaces a room. A room may not overlap any other room.
func (s *FloorplanService) UpsertRoom(ctx context.Context, actor, id string, req dto.RoomRequest) (*models.Room, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	room := models.Room{ID: id, Name: req.Name, X: req.X, Y: req.Y, Width: req.Width, Height: req.Height, Color: req.Color}
	if room.Color == "" {
		room.Color = models.DefaultRoomColor
	}

	_, err := s.workspace.Mutate(ctx, actor, func(df *models.DataFile) error {
		others := make([]models.Room, 0, len(df.Floorplan.Rooms))
		for _, existing := range df.Floorplan.Rooms {
			if existing.ID != id {
				others = append(others, existing)
			}
		}
		for _, other := range others {
			if overlap, _ := validation.RoomOverlap([]models.Room{other, room}); overlap {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room overlaps %s", other.ID))
			}
		}
		if idx := df.FindRoom(id); idx >= 0 {
			df.Floorplan.Rooms[idx] = room
		} else {
			df.Floorplan.Rooms = append(df.Floorplan.Rooms, room)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("room saved", zap.String("room_id", id), zap.String("actor", actor))
	return &room, nil
}

// DeleteRoom removes a room together with its seats.
func (s *FloorplanService) DeleteRoom(ctx context.Context, actor, id string) (*dto.DeleteRoomResult, error) {
	result := &dto.DeleteRoomResult{RoomID: id, RemovedSeats: []string{}}
	_, err := s.workspace.Mutate(ctx, actor, func(df *models.DataFile) error {
		idx := df.FindRoom(id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		df.Floorplan.Rooms = append(df.Floorplan.Rooms[:idx], df.Floorplan.Rooms[idx+1:]...)
		kept := df.Floorplan.Seats[:0]
		for _, seat := range df.Floorplan.Seats {
			if seat.RoomID == id {
				result.RemovedSeats = append(result.RemovedSeats, seat.ID)
				continue
			}
			kept = append(kept, seat)
		}
		df.Floorplan.Seats = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("room deleted", zap.String("room_id", id), zap.Int("seats", len(result.RemovedSeats)), zap.String("actor", actor))
	return result, nil
}

// UpsertSeat creates or replaces a seat. The room must exist and the seat must lie inside it.
func (s *FloorplanService) UpsertSeat(ctx context.Context, actor, id string, req dto.SeatRequest) (*models.Seat, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "seat id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seat payload")
	}
	seat := models.Seat{ID: id, RoomID: req.RoomID, Number: req.Number, X: req.X, Y: req.Y, Properties: req.Properties}
	if seat.Properties == nil {
		seat.Properties = map[string]bool{}
	}

	_, err := s.workspace.Mutate(ctx, actor, func(df *models.DataFile) error {
		roomIdx := df.FindRoom(seat.RoomID)
		if roomIdx < 0 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %s does not exist", seat.RoomID))
		}
		if !validation.SeatInRoom(seat, df.Floorplan.Rooms[roomIdx]) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("seat position is outside room %s", seat.RoomID))
		}
		if idx := df.FindSeat(id); idx >= 0 {
			df.Floorplan.Seats[idx] = seat
		} else {
			df.Floorplan.Seats = append(df.Floorplan.Seats, seat)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("seat saved", zap.String("seat_id", id), zap.String("room_id", seat.RoomID), zap.String("actor", actor))
	return &seat, nil
}

// DeleteSeat removes a seat. Stored assignments keep referring to it.
func (s *FloorplanService) DeleteSeat(ctx context.Context, actor, id string) error {
	_, err := s.workspace.Mutate(ctx, actor, func(df *models.DataFile) error {
		idx := df.FindSeat(id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "seat not found")
		}
		df.Floorplan.Seats = append(df.Floorplan.Seats[:idx], df.Floorplan.Seats[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("seat deleted", zap.String("seat_id", id), zap.String("actor", actor))
	return nil
}
