package models

import "encoding/json"

// DefaultRoomColor is the fill color used when a room has none.
const DefaultRoomColor = "#1e3a5f"

// Room dimension bounds, in canvas units.
const (
	MinRoomSize = 50
	MaxRoomSize = 2000
)

// Room is an axis-aligned rectangle on the floorplan canvas.
type Room struct {
	ID     string  `json:"id" validate:"required"`
	Name   string  `json:"name" validate:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"min=50,max=2000"`
	Height float64 `json:"height" validate:"min=50,max=2000"`
	Color  string  `json:"color"`
}

// ContainsPoint reports whether (px, py) lies inside the room, edges included.
func (r Room) ContainsPoint(px, py float64) bool {
	return r.X <= px && px <= r.X+r.Width &&
		r.Y <= py && py <= r.Y+r.Height
}

// UnmarshalJSON defaults the color.
func (r *Room) UnmarshalJSON(data []byte) error {
	type alias Room
	raw := alias{Color: DefaultRoomColor}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Color == "" {
		raw.Color = DefaultRoomColor
	}
	*r = Room(raw)
	return nil
}
