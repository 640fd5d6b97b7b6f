package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
)

func newRunRepoMock(t *testing.T) (*AssignmentRunRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewAssignmentRunRepository(sqlxDB), mock, func() {
		sqlxDB.Close()
	}
}

func TestAssignmentRunRepositoryCreate(t *testing.T) {
	repo, mock, cleanup := newRunRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO assignment_runs").
		WithArgs("run-1", "2025-W43", "2025-W42", 10, 2, 71.43, 16.67, 1, "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.AssignmentRun{
		ID:                "run-1",
		Week:              "2025-W43",
		PreviousWeek:      "2025-W42",
		TotalAssignments:  10,
		TotalConflicts:    2,
		OccupancyRate:     71.43,
		ConflictRate:      16.67,
		DaysWithConflicts: 1,
		CreatedBy:         "admin",
	}
	require.NoError(t, repo.Create(context.Background(), run))
	assert.False(t, run.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRunRepositoryCreateError(t *testing.T) {
	repo, mock, cleanup := newRunRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO assignment_runs").WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.AssignmentRun{ID: "run-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create assignment run")
}

func TestAssignmentRunRepositoryListByWeek(t *testing.T) {
	repo, mock, cleanup := newRunRepoMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "week", "previous_week", "total_assignments", "total_conflicts",
		"occupancy_rate", "conflict_rate", "days_with_conflicts", "created_by", "created_at"}).
		AddRow("run-2", "2025-W43", "2025-W42", 12, 0, 85.71, 0.0, 0, "admin", now).
		AddRow("run-1", "2025-W43", "2025-W42", 10, 2, 71.43, 16.67, 1, "admin", now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, week, previous_week").
		WithArgs("2025-W43", defaultRunLimit).
		WillReturnRows(rows)

	runs, err := repo.ListByWeek(context.Background(), "2025-W43", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 2, runs[1].TotalConflicts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
