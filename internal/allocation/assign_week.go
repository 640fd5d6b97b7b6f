package allocation

import "github.com/noah-isme/seatplan-api/internal/models"

// WeekResult holds per-day assignments and unassigned student ids for one week.
// Both maps always carry all seven weekday keys.
type WeekResult struct {
	Week        string                         `json:"week"`
	Assignments map[string][]models.Assignment `json:"assignments"`
	Conflicts   map[string][]string            `json:"conflicts"`
}

// AssignWeek runs AssignDay for every weekday in canonical order. Continuity is week over week:
// each day is compared with the same weekday in previousWeek, never with the day before.
func AssignWeek(students []models.Student, seats []models.Seat, week string, previousWeek map[string][]models.Assignment) WeekResult {
	result := WeekResult{
		Week:        week,
		Assignments: make(map[string][]models.Assignment, len(models.Weekdays)),
		Conflicts:   make(map[string][]string, len(models.Weekdays)),
	}
	for _, day := range models.Weekdays {
		assignments, conflicts := AssignDay(students, seats, day, week, previousWeek[day])
		result.Assignments[day] = assignments
		result.Conflicts[day] = conflicts
	}
	return result
}

// Flatten returns all assignments in canonical day order.
func (r WeekResult) Flatten() []models.Assignment {
	var out []models.Assignment
	for _, day := range models.Weekdays {
		out = append(out, r.Assignments[day]...)
	}
	return out
}

// FromStored wraps assignments loaded from the document as a result without conflicts.
func FromStored(week string, byDay map[string][]models.Assignment) WeekResult {
	result := WeekResult{
		Week:        week,
		Assignments: make(map[string][]models.Assignment, len(models.Weekdays)),
		Conflicts:   make(map[string][]string, len(models.Weekdays)),
	}
	for _, day := range models.Weekdays {
		items := byDay[day]
		if items == nil {
			items = []models.Assignment{}
		}
		result.Assignments[day] = items
		result.Conflicts[day] = []string{}
	}
	return result
}

// Reconcile rebuilds a WeekResult from stored assignments, listing as conflicts the students who
// attend a day but hold no seat on it, in roster order.
func Reconcile(week string, byDay map[string][]models.Assignment, students []models.Student) WeekResult {
	result := FromStored(week, byDay)
	for _, day := range models.Weekdays {
		seated := make(map[string]bool, len(result.Assignments[day]))
		for _, a := range result.Assignments[day] {
			seated[a.StudentID] = true
		}
		for _, s := range students {
			if s.IsAvailableOn(day) && !seated[s.ID] {
				result.Conflicts[day] = append(result.Conflicts[day], s.ID)
			}
		}
	}
	return result
}
