package models

import "time"

// AssignmentRun records one automatic planning pass for auditing.
type AssignmentRun struct {
	ID                string    `db:"id" json:"id"`
	Week              string    `db:"week" json:"week"`
	PreviousWeek      string    `db:"previous_week" json:"previous_week"`
	TotalAssignments  int       `db:"total_assignments" json:"total_assignments"`
	TotalConflicts    int       `db:"total_conflicts" json:"total_conflicts"`
	OccupancyRate     float64   `db:"occupancy_rate" json:"occupancy_rate"`
	ConflictRate      float64   `db:"conflict_rate" json:"conflict_rate"`
	DaysWithConflicts int       `db:"days_with_conflicts" json:"days_with_conflicts"`
	CreatedBy         string    `db:"created_by" json:"created_by"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
