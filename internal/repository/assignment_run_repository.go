package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/seatplan-api/internal/models"
)

const defaultRunLimit = 20

// AssignmentRunRepository persists the history of automatic planning runs.
type AssignmentRunRepository struct {
	db *sqlx.DB
}

// NewAssignmentRunRepository constructs the repository.
func NewAssignmentRunRepository(db *sqlx.DB) *AssignmentRunRepository {
	return &AssignmentRunRepository{db: db}
}

// Create inserts a run record.
func (r *AssignmentRunRepository) Create(ctx context.Context, run *models.AssignmentRun) error {
	const query = `INSERT INTO assignment_runs (id, week, previous_week, total_assignments, total_conflicts,
occupancy_rate, conflict_rate, days_with_conflicts, created_by, created_at)
VALUES (:id, :week, :previous_week, :total_assignments, :total_conflicts,
:occupancy_rate, :conflict_rate, :days_with_conflicts, :created_by, :created_at)`
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create assignment run: %w", err)
	}
	return nil
}

// ListByWeek returns the newest runs for a week.
func (r *AssignmentRunRepository) ListByWeek(ctx context.Context, week string, limit int) ([]models.AssignmentRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	const query = `SELECT id, week, previous_week, total_assignments, total_conflicts, occupancy_rate,
conflict_rate, days_with_conflicts, created_by, created_at
FROM assignment_runs WHERE week = $1 ORDER BY created_at DESC LIMIT $2`
	runs := make([]models.AssignmentRun, 0)
	if err := r.db.SelectContext(ctx, &runs, query, week, limit); err != nil {
		return nil, fmt.Errorf("list assignment runs: %w", err)
	}
	return runs, nil
}
