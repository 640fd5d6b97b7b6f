// Package validation checks floorplans, students and assignments against the planning rules.
// Checks never fail hard: each returns a verdict plus the offending ids.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/seatplan-api/internal/models"
)

const dateLayout = "2006-01-02"

// RoomPair names two rooms whose rectangles overlap.
type RoomPair struct {
	First  string `json:"first" yaml:"first"`
	Second string `json:"second" yaml:"second"`
}

// CapacityDetails compares demand and supply for a day.
type CapacityDetails struct {
	StudentsCount int `json:"students_count" yaml:"students_count"`
	SeatsCount    int `json:"seats_count" yaml:"seats_count"`
	Excess        int `json:"excess" yaml:"excess"`
}

// DateRangeIssueKind distinguishes malformed dates from inverted ranges.
type DateRangeIssueKind string

const (
	IssueInvalidFormat DateRangeIssueKind = "invalid_format"
	IssueInvertedRange DateRangeIssueKind = "inverted_range"
)

// DateRangeIssue explains why a student's validity range was rejected.
type DateRangeIssue struct {
	Kind    DateRangeIssueKind `json:"kind" yaml:"kind"`
	Message string             `json:"message" yaml:"message"`
}

// ConflictType classifies duplicate usage inside one (week, day).
type ConflictType string

const (
	ConflictDuplicateSeat    ConflictType = "duplicate_seat"
	ConflictDuplicateStudent ConflictType = "duplicate_student"
)

// AssignmentConflict reports a seat or student used twice on the same day.
type AssignmentConflict struct {
	Type       ConflictType `json:"type" yaml:"type"`
	Week       string       `json:"week" yaml:"week"`
	Day        string       `json:"day" yaml:"day"`
	SeatID     string       `json:"seat_id,omitempty" yaml:"seat_id,omitempty"`
	StudentID  string       `json:"student_id,omitempty" yaml:"student_id,omitempty"`
	StudentIDs []string     `json:"student_ids,omitempty" yaml:"student_ids,omitempty"`
	SeatIDs    []string     `json:"seat_ids,omitempty" yaml:"seat_ids,omitempty"`
}

// RoomOverlap scans every unordered pair of rooms. Rooms sharing only an edge do not overlap.
func RoomOverlap(rooms []models.Room) (bool, []RoomPair) {
	conflicts := make([]RoomPair, 0)
	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			a, b := rooms[i], rooms[j]
			separate := a.X+a.Width <= b.X ||
				b.X+b.Width <= a.X ||
				a.Y+a.Height <= b.Y ||
				b.Y+b.Height <= a.Y
			if !separate {
				conflicts = append(conflicts, RoomPair{First: a.ID, Second: b.ID})
			}
		}
	}
	return len(conflicts) == 0, conflicts
}

// SeatInRoom reports whether the seat belongs to room and sits within its bounds.
func SeatInRoom(seat models.Seat, room models.Room) bool {
	if seat.RoomID != room.ID {
		return false
	}
	return room.ContainsPoint(seat.X, seat.Y)
}

// Capacity checks whether every student attending on day can get a seat.
func Capacity(students []models.Student, seats []models.Seat, day string) (bool, CapacityDetails) {
	demand := 0
	for _, s := range students {
		if s.IsAvailableOn(day) {
			demand++
		}
	}
	details := CapacityDetails{StudentsCount: demand, SeatsCount: len(seats)}
	if demand > len(seats) {
		details.Excess = demand - len(seats)
	}
	return details.Excess == 0, details
}

// StudentDateRange validates valid_from/valid_until. An "ongoing" end date is always valid.
func StudentDateRange(student models.Student) (bool, *DateRangeIssue) {
	if strings.EqualFold(student.ValidUntil, models.ValidUntilOngoing) {
		return true, nil
	}
	from, err := time.Parse(dateLayout, student.ValidFrom)
	if err != nil {
		return false, &DateRangeIssue{Kind: IssueInvalidFormat, Message: fmt.Sprintf("Invalid date format: valid_from %q is not YYYY-MM-DD", student.ValidFrom)}
	}
	until, err := time.Parse(dateLayout, student.ValidUntil)
	if err != nil {
		return false, &DateRangeIssue{Kind: IssueInvalidFormat, Message: fmt.Sprintf("Invalid date format: valid_until %q is not YYYY-MM-DD", student.ValidUntil)}
	}
	if from.After(until) {
		return false, &DateRangeIssue{Kind: IssueInvertedRange, Message: fmt.Sprintf("valid_from (%s) is after valid_until (%s)", student.ValidFrom, student.ValidUntil)}
	}
	return true, nil
}

type dayKey struct {
	week string
	day  string
}

// AssignmentConflicts finds seats and students used more than once within the same (week, day).
// Groups are reported in first-seen order; within a group seat duplicates come first.
func AssignmentConflicts(assignments []models.Assignment) []AssignmentConflict {
	var order []dayKey
	groups := make(map[dayKey][]models.Assignment)
	for _, a := range assignments {
		key := dayKey{week: a.Week, day: a.Day}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], a)
	}

	conflicts := make([]AssignmentConflict, 0)
	for _, key := range order {
		items := groups[key]

		seatUsage := make(map[string]string, len(items))
		for _, a := range items {
			if first, ok := seatUsage[a.SeatID]; ok {
				conflicts = append(conflicts, AssignmentConflict{
					Type:       ConflictDuplicateSeat,
					Week:       key.week,
					Day:        key.day,
					SeatID:     a.SeatID,
					StudentIDs: []string{first, a.StudentID},
				})
				continue
			}
			seatUsage[a.SeatID] = a.StudentID
		}

		studentUsage := make(map[string]string, len(items))
		for _, a := range items {
			if first, ok := studentUsage[a.StudentID]; ok {
				conflicts = append(conflicts, AssignmentConflict{
					Type:      ConflictDuplicateStudent,
					Week:      key.week,
					Day:       key.day,
					StudentID: a.StudentID,
					SeatIDs:   []string{first, a.SeatID},
				})
				continue
			}
			studentUsage[a.StudentID] = a.SeatID
		}
	}
	return conflicts
}

// SeatsInRooms returns the ids of seats whose room is missing or that lie outside their room.
func SeatsInRooms(seats []models.Seat, rooms []models.Room) (bool, []string) {
	byID := make(map[string]models.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	invalid := make([]string, 0)
	for _, seat := range seats {
		room, ok := byID[seat.RoomID]
		if !ok || !SeatInRoom(seat, room) {
			invalid = append(invalid, seat.ID)
		}
	}
	return len(invalid) == 0, invalid
}
