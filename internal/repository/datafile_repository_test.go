package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

func newDataFileRepo(t *testing.T) (*DataFileRepository, string) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewDataFileRepository(store, nil), dir
}

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Second)
		return t
	}
}

func TestDataFileRepositoryLoadMissingReturnsEmptyDocument(t *testing.T) {
	repo, _ := newDataFileRepo(t)

	df, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DataFileVersion, df.Metadata.Version)
	assert.Empty(t, df.Students)
	assert.NotNil(t, df.Assignments)
}

func TestDataFileRepositorySaveAndLoad(t *testing.T) {
	repo, dir := newDataFileRepo(t)
	ctx := context.Background()

	df := models.NewDataFile()
	df.Students = append(df.Students, models.Student{ID: "st1", Name: "Alice", WeeklyPattern: models.DefaultWeeklyPattern()})
	df.SetWeek("2025-W43", map[string][]models.Assignment{models.Monday: {{StudentID: "st1", SeatID: "s1"}}})
	require.NoError(t, repo.Save(ctx, df, true))

	_, err := os.Stat(filepath.Join(dir, "data.json.tmp"))
	assert.True(t, os.IsNotExist(err))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Students, 1)
	assert.Equal(t, "Alice", loaded.Students[0].Name)
	assert.Equal(t, []models.StoredAssignment{{StudentID: "st1", SeatID: "s1"}}, loaded.Assignments["2025-W43"][models.Monday])

	backups, err := repo.ListBackups(ctx)
	require.NoError(t, err)
	assert.Empty(t, backups, "first save has nothing to back up")
}

func TestDataFileRepositoryBackupsAndPrune(t *testing.T) {
	repo, _ := newDataFileRepo(t)
	repo.now = fixedClock(time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	df := models.NewDataFile()
	require.NoError(t, repo.Save(ctx, df, true))
	for i := 0; i < 3; i++ {
		df.Students = append(df.Students, models.Student{ID: string(rune('a' + i)), Name: "x"})
		require.NoError(t, repo.Save(ctx, df, true))
	}

	backups, err := repo.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, "data_20251020_090002.json", backups[0].Name)

	restored, err := repo.ReadBackup(ctx, backups[0].Name)
	require.NoError(t, err)
	assert.Len(t, restored.Students, 2)

	deleted, err := repo.PruneBackups(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, deleted, 2)

	backups, err = repo.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestDataFileRepositoryBackupNameCollision(t *testing.T) {
	repo, _ := newDataFileRepo(t)
	repo.now = func() time.Time { return time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, models.NewDataFile(), false))
	first, err := repo.Backup(ctx)
	require.NoError(t, err)
	second, err := repo.Backup(ctx)
	require.NoError(t, err)

	assert.Equal(t, "data_20251020_090000.json", first)
	assert.Equal(t, "data_20251020_090000_1.json", second)
}

func TestDataFileRepositoryCorruptFileIsPreserved(t *testing.T) {
	repo, dir := newDataFileRepo(t)
	repo.now = func() time.Time { return time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{not json"), 0o644))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrCorruptDataFile)

	_, err = os.Stat(filepath.Join(dir, "backups", "data_CORRUPT_20251020_090000.json"))
	assert.NoError(t, err)

	backups, err := repo.ListBackups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, backups, "corrupt copies are not restorable backups")
}

func TestDataFileRepositoryReadBackupRejectsUnknownNames(t *testing.T) {
	repo, _ := newDataFileRepo(t)

	_, err := repo.ReadBackup(context.Background(), "../data.json")
	assert.ErrorIs(t, err, ErrBackupNotFound)
	_, err = repo.ReadBackup(context.Background(), "data_20250101_000000.json")
	assert.ErrorIs(t, err, ErrBackupNotFound)
}
