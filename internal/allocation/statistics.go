package allocation

import (
	"math"

	"github.com/noah-isme/seatplan-api/internal/models"
)

const daysPerWeek = 7

// Statistics summarises a week of assignments.
type Statistics struct {
	TotalAssignments  int     `json:"total_assignments" yaml:"total_assignments"`
	TotalConflicts    int     `json:"total_conflicts" yaml:"total_conflicts"`
	OccupancyRate     float64 `json:"occupancy_rate" yaml:"occupancy_rate"`
	DaysWithConflicts int     `json:"days_with_conflicts" yaml:"days_with_conflicts"`
	ConflictRate      float64 `json:"conflict_rate" yaml:"conflict_rate"`
	TotalStudents     int     `json:"total_students" yaml:"total_students"`
	TotalSeats        int     `json:"total_seats" yaml:"total_seats"`
}

// CalculateStatistics derives occupancy and conflict rates. Occupancy is measured against the
// full seven-day capacity; the conflict rate against the student-days actually requested.
// Rates are percentages rounded to two decimals and are 0 when their denominator is 0.
func CalculateStatistics(assignments map[string][]models.Assignment, conflicts map[string][]string, students []models.Student, seats []models.Seat) Statistics {
	stats := Statistics{
		TotalStudents: len(students),
		TotalSeats:    len(seats),
	}
	for _, items := range assignments {
		stats.TotalAssignments += len(items)
	}
	for _, items := range conflicts {
		stats.TotalConflicts += len(items)
		if len(items) > 0 {
			stats.DaysWithConflicts++
		}
	}

	if capacity := len(seats) * daysPerWeek; capacity > 0 {
		stats.OccupancyRate = round2(float64(stats.TotalAssignments) / float64(capacity) * 100)
	}

	studentDays := 0
	for _, s := range students {
		studentDays += s.AvailableDays()
	}
	if studentDays > 0 {
		stats.ConflictRate = round2(float64(stats.TotalConflicts) / float64(studentDays) * 100)
	}
	return stats
}

// Statistics is a shorthand over a WeekResult.
func (r WeekResult) Statistics(students []models.Student, seats []models.Seat) Statistics {
	return CalculateStatistics(r.Assignments, r.Conflicts, students, seats)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
