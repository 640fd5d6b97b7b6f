package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/internal/repository"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

const testActor = "admin"

type testEnv struct {
	store     *storage.LocalStorage
	docs      *repository.DataFileRepository
	locks     *LockService
	history   *HistoryService
	workspace *Workspace
}

// newTestEnv builds a file-backed workspace with the lock held by testActor.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	docs := repository.NewDataFileRepository(store, nil)
	locks := NewLockService(repository.NewLockRepository(store, time.Hour, nil), nil)
	history := NewHistoryService(10, nil)
	_, err = locks.Acquire(context.Background(), testActor)
	require.NoError(t, err)
	return &testEnv{
		store:     store,
		docs:      docs,
		locks:     locks,
		history:   history,
		workspace: NewWorkspace(docs, locks, history, nil, nil),
	}
}

// seed writes df as the stored document without going through the workspace.
func (e *testEnv) seed(t *testing.T, df *models.DataFile) {
	t.Helper()
	require.NoError(t, e.docs.Save(context.Background(), df, false))
}

func seededDocument() *models.DataFile {
	df := models.NewDataFile()
	df.Floorplan.Rooms = []models.Room{
		{ID: "r1", Name: "Lab", X: 0, Y: 0, Width: 300, Height: 200, Color: models.DefaultRoomColor},
	}
	df.Floorplan.Seats = []models.Seat{
		{ID: "s1", RoomID: "r1", Number: 1, X: 10, Y: 10, Properties: map[string]bool{"near_window": true}},
		{ID: "s2", RoomID: "r1", Number: 2, X: 50, Y: 10, Properties: map[string]bool{}},
	}
	df.Students = []models.Student{
		{ID: "st1", Name: "Alice", WeeklyPattern: map[string]bool{models.Monday: true, models.Tuesday: true}, ValidFrom: "2025-01-01", ValidUntil: "ongoing", Requirements: []string{"near_window"}},
		{ID: "st2", Name: "Bob", WeeklyPattern: map[string]bool{models.Monday: true}, ValidFrom: "2025-01-01", ValidUntil: "ongoing", Requirements: []string{}},
		{ID: "st3", Name: "Carol", WeeklyPattern: map[string]bool{models.Monday: true}, ValidFrom: "2025-01-01", ValidUntil: "ongoing", Requirements: []string{}},
	}
	return df
}
