package models

import (
	"encoding/json"
	"strings"
)

const (
	// DefaultValidFrom is applied when a stored student omits valid_from.
	DefaultValidFrom = "2025-01-01"
	// ValidUntilOngoing marks an open-ended attendance range.
	ValidUntilOngoing = "ongoing"
)

// Student is a person who needs a seat on the days of their weekly pattern.
type Student struct {
	ID            string          `json:"id" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	WeeklyPattern map[string]bool `json:"weekly_pattern"`
	ValidFrom     string          `json:"valid_from"`
	ValidUntil    string          `json:"valid_until"`
	Requirements  []string        `json:"requirements"`
}

// IsAvailableOn reports whether the student attends on the given weekday.
// Unknown or missing days are treated as unavailable.
func (s Student) IsAvailableOn(day string) bool {
	return s.WeeklyPattern[strings.ToLower(day)]
}

// HasRequirement reports whether the student lists the requirement tag.
func (s Student) HasRequirement(tag string) bool {
	for _, req := range s.Requirements {
		if req == tag {
			return true
		}
	}
	return false
}

// AvailableDays counts the canonical weekdays the student attends.
func (s Student) AvailableDays() int {
	count := 0
	for _, day := range Weekdays {
		if s.IsAvailableOn(day) {
			count++
		}
	}
	return count
}

// DefaultWeeklyPattern is the Monday to Friday pattern used for new students.
func DefaultWeeklyPattern() map[string]bool {
	return map[string]bool{
		Monday:    true,
		Tuesday:   true,
		Wednesday: true,
		Thursday:  true,
		Friday:    true,
		Saturday:  false,
		Sunday:    false,
	}
}

// UnmarshalJSON applies the stored-document defaults for optional fields.
func (s *Student) UnmarshalJSON(data []byte) error {
	type alias Student
	raw := alias{
		ValidFrom:  DefaultValidFrom,
		ValidUntil: ValidUntilOngoing,
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.WeeklyPattern == nil {
		raw.WeeklyPattern = map[string]bool{}
	}
	if raw.Requirements == nil {
		raw.Requirements = []string{}
	}
	*s = Student(raw)
	return nil
}
