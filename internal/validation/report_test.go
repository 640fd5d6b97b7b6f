package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
)

func sampleDataFile() *models.DataFile {
	df := models.NewDataFile()
	df.Floorplan.Rooms = []models.Room{room("r1", 0, 0, 200, 200)}
	df.Floorplan.Seats = []models.Seat{
		{ID: "s1", RoomID: "r1", Number: 1, X: 10, Y: 10},
		{ID: "s2", RoomID: "r1", Number: 2, X: 20, Y: 10},
	}
	df.Students = []models.Student{
		{ID: "st1", Name: "Alice", WeeklyPattern: map[string]bool{models.Monday: true}, ValidFrom: "2025-01-01", ValidUntil: "ongoing"},
		{ID: "st2", Name: "Bob", WeeklyPattern: map[string]bool{models.Monday: true}, ValidFrom: "2025-01-01", ValidUntil: "ongoing"},
	}
	return df
}

func TestBuildReportValidSnapshot(t *testing.T) {
	df := sampleDataFile()
	df.SetWeek("2025-W43", map[string][]models.Assignment{
		models.Monday: {{StudentID: "st1", SeatID: "s1"}, {StudentID: "st2", SeatID: "s2"}},
	})

	report := BuildReport(SnapshotFromDataFile(df, "2025-W43"))

	assert.True(t, report.Valid)
	assert.Empty(t, report.AssignmentConflicts)
	assert.Empty(t, report.OverCapacityDays)
	require.Contains(t, report.Capacity, models.Monday)
	assert.Equal(t, 2, report.Capacity[models.Monday].StudentsCount)
}

func TestBuildReportCollectsProblems(t *testing.T) {
	df := sampleDataFile()
	df.Floorplan.Rooms = append(df.Floorplan.Rooms, room("r2", 100, 100, 200, 200))
	df.Floorplan.Seats = append(df.Floorplan.Seats, models.Seat{ID: "s3", RoomID: "gone"})
	df.Floorplan.Seats = df.Floorplan.Seats[1:]
	df.Students = append(df.Students,
		models.Student{ID: "st3", Name: "Cid", WeeklyPattern: map[string]bool{models.Monday: true}, ValidFrom: "2025-05-01", ValidUntil: "2025-01-01"},
		models.Student{ID: "st4", Name: "Dee", WeeklyPattern: map[string]bool{models.Monday: true}, ValidFrom: "2025-01-01", ValidUntil: "ongoing"},
	)
	df.SetWeek("2025-W43", map[string][]models.Assignment{
		models.Monday: {{StudentID: "st1", SeatID: "s2"}, {StudentID: "st2", SeatID: "s2"}},
	})

	report := BuildReport(SnapshotFromDataFile(df, "2025-W43"))

	assert.False(t, report.Valid)
	assert.Equal(t, []RoomPair{{First: "r1", Second: "r2"}}, report.RoomOverlaps)
	assert.Equal(t, []string{"s3"}, report.InvalidSeats)
	assert.Equal(t, []string{models.Monday}, report.OverCapacityDays)
	assert.Equal(t, 2, report.Capacity[models.Monday].Excess)
	require.Len(t, report.InvalidDateRanges, 1)
	assert.Equal(t, "st3", report.InvalidDateRanges[0].StudentID)
	require.Len(t, report.AssignmentConflicts, 1)
	assert.Equal(t, ConflictDuplicateSeat, report.AssignmentConflicts[0].Type)
}

func TestSnapshotWithoutWeekCoversEveryWeek(t *testing.T) {
	df := sampleDataFile()
	df.SetWeek("2025-W44", map[string][]models.Assignment{
		models.Tuesday: {{StudentID: "st1", SeatID: "s2"}, {StudentID: "st2", SeatID: "s2"}},
	})
	df.SetWeek("2025-W43", map[string][]models.Assignment{
		models.Wednesday: {{StudentID: "st2", SeatID: "s1"}},
		models.Monday:    {{StudentID: "st1", SeatID: "s1"}, {StudentID: "st2", SeatID: "s1"}},
	})

	snap := SnapshotFromDataFile(df, "")
	require.Len(t, snap.Assignments, 5)
	assert.Equal(t, models.Assignment{StudentID: "st1", SeatID: "s1", Day: models.Monday, Week: "2025-W43"}, snap.Assignments[0])
	assert.Equal(t, models.Wednesday, snap.Assignments[2].Day)
	assert.Equal(t, "2025-W44", snap.Assignments[3].Week)

	report := BuildReport(snap)
	assert.False(t, report.Valid)
	require.Len(t, report.AssignmentConflicts, 2)
	assert.Equal(t, "2025-W43", report.AssignmentConflicts[0].Week)
	assert.Equal(t, "s1", report.AssignmentConflicts[0].SeatID)
	assert.Equal(t, "2025-W44", report.AssignmentConflicts[1].Week)
	assert.Equal(t, "s2", report.AssignmentConflicts[1].SeatID)
}

func TestDataFileShape(t *testing.T) {
	assert.Empty(t, DataFile(sampleDataFile()))
	assert.Equal(t, []string{"document is empty"}, DataFile(nil))

	df := sampleDataFile()
	df.Metadata.Version = ""
	df.Floorplan.Seats = append(df.Floorplan.Seats, models.Seat{ID: "s1", RoomID: "nowhere"})
	df.Assignments["2025-W43"] = map[string][]models.StoredAssignment{"funday": {}}

	problems := DataFile(df)
	assert.Contains(t, problems, "metadata.version is missing")
	assert.Contains(t, problems, "duplicate seat id s1")
	assert.Contains(t, problems, "seat s1 references unknown room nowhere")
	assert.Contains(t, problems, "week 2025-W43 has unknown day funday")
}
