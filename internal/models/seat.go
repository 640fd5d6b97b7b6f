package models

import (
	"encoding/json"
	"fmt"
)

// Seat is a numbered place inside a room. Properties are tags such as near_window.
type Seat struct {
	ID         string          `json:"id" validate:"required"`
	RoomID     string          `json:"room_id" validate:"required"`
	Number     int             `json:"number" validate:"min=1,max=999"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Properties map[string]bool `json:"properties"`
}

// HasProperty reports whether the tag is set. Missing tags are false.
func (s Seat) HasProperty(tag string) bool {
	return s.Properties[tag]
}

// SatisfiedCount returns how many of the requirements this seat fulfils.
func (s Seat) SatisfiedCount(requirements []string) int {
	count := 0
	for _, req := range requirements {
		if s.HasProperty(req) {
			count++
		}
	}
	return count
}

// DisplayName renders the seat label used in reports.
func (s Seat) DisplayName() string {
	return fmt.Sprintf("Seat %d", s.Number)
}

// UnmarshalJSON defaults a missing properties object to an empty map.
func (s *Seat) UnmarshalJSON(data []byte) error {
	type alias Seat
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Properties == nil {
		raw.Properties = map[string]bool{}
	}
	*s = Seat(raw)
	return nil
}
