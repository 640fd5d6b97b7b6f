package dto

// RoomRequest defines payload for creating/updating a room. The id comes from the path.
type RoomRequest struct {
	Name   string  `json:"name" validate:"required,max=100"`
	X      float64 `json:"x" validate:"gte=0"`
	Y      float64 `json:"y" validate:"gte=0"`
	Width  float64 `json:"width" validate:"min=50,max=2000"`
	Height float64 `json:"height" validate:"min=50,max=2000"`
	Color  string  `json:"color" validate:"omitempty,hexcolor"`
}

// SeatRequest defines payload for creating/updating a seat.
type SeatRequest struct {
	RoomID     string          `json:"room_id" validate:"required"`
	Number     int             `json:"number" validate:"min=1,max=999"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Properties map[string]bool `json:"properties"`
}

// DeleteRoomResult reports what a room deletion removed.
type DeleteRoomResult struct {
	RoomID       string   `json:"room_id"`
	RemovedSeats []string `json:"removed_seats"`
}
