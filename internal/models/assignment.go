package models

import "fmt"

// Assignment places a student on a seat for one weekday of one ISO week.
type Assignment struct {
	StudentID string `json:"student_id" yaml:"student_id"`
	SeatID    string `json:"seat_id" yaml:"seat_id"`
	Day       string `json:"day" yaml:"day"`
	Week      string `json:"week" yaml:"week"`
}

// Key is unique per (week, day, student).
func (a Assignment) Key() string {
	return fmt.Sprintf("%s_%s_%s", a.Week, a.Day, a.StudentID)
}

// StoredAssignment is the persisted form; week and day are implied by the enclosing keys.
type StoredAssignment struct {
	StudentID string `json:"student_id" yaml:"student_id"`
	SeatID    string `json:"seat_id" yaml:"seat_id"`
}
