package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
)

func TestAssignWeekCoversEveryWeekday(t *testing.T) {
	result := AssignWeek(
		[]models.Student{student("st1", "Alice", models.Monday, models.Thursday)},
		[]models.Seat{seat("s1")},
		testWeek, nil,
	)

	assert.Equal(t, testWeek, result.Week)
	require.Len(t, result.Assignments, 7)
	require.Len(t, result.Conflicts, 7)
	for _, day := range models.Weekdays {
		assert.NotNil(t, result.Assignments[day], day)
		assert.NotNil(t, result.Conflicts[day], day)
	}
	assert.Len(t, result.Assignments[models.Monday], 1)
	assert.Len(t, result.Assignments[models.Thursday], 1)
	assert.Empty(t, result.Assignments[models.Tuesday])
}

func TestAssignWeekUsesSameWeekdayOfPreviousWeek(t *testing.T) {
	students := []models.Student{
		student("st-a", "Alice", models.Monday, models.Tuesday),
		student("st-b", "Bob", models.Monday, models.Tuesday),
	}
	seats := []models.Seat{seat("s1"), seat("s2")}
	previous := map[string][]models.Assignment{
		models.Monday: {
			{StudentID: "st-a", SeatID: "s2", Day: models.Monday, Week: "2025-W42"},
			{StudentID: "st-b", SeatID: "s1", Day: models.Monday, Week: "2025-W42"},
		},
	}

	result := AssignWeek(students, seats, testWeek, previous)

	assert.Equal(t, map[string]string{"st-a": "s2", "st-b": "s1"}, seatIDs(result.Assignments[models.Monday]))
	// Tuesday has no history, so Monday's swap must not leak into it.
	assert.Equal(t, map[string]string{"st-a": "s1", "st-b": "s2"}, seatIDs(result.Assignments[models.Tuesday]))
}

func TestWeekResultFlattenKeepsCanonicalDayOrder(t *testing.T) {
	result := AssignWeek(
		[]models.Student{student("st1", "Alice", models.Sunday, models.Monday)},
		[]models.Seat{seat("s1")},
		testWeek, nil,
	)

	flat := result.Flatten()
	require.Len(t, flat, 2)
	assert.Equal(t, models.Monday, flat[0].Day)
	assert.Equal(t, models.Sunday, flat[1].Day)
}

func TestFromStoredFillsMissingDays(t *testing.T) {
	result := FromStored(testWeek, map[string][]models.Assignment{
		models.Friday: {{StudentID: "st1", SeatID: "s1", Day: models.Friday, Week: testWeek}},
	})

	require.Len(t, result.Assignments, 7)
	assert.Len(t, result.Assignments[models.Friday], 1)
	assert.Empty(t, result.Assignments[models.Monday])
	assert.Empty(t, result.Conflicts[models.Friday])
}

func TestReconcileListsUnseatedStudentsInRosterOrder(t *testing.T) {
	students := []models.Student{
		student("st-b", "Bob", models.Monday),
		student("st-a", "Alice", models.Monday, models.Friday),
	}
	stored := map[string][]models.Assignment{
		models.Monday: {{StudentID: "st-a", SeatID: "s1", Day: models.Monday, Week: testWeek}},
	}

	result := Reconcile(testWeek, stored, students)

	assert.Equal(t, []string{"st-b"}, result.Conflicts[models.Monday])
	assert.Equal(t, []string{"st-a"}, result.Conflicts[models.Friday])
	assert.Empty(t, result.Conflicts[models.Tuesday])
	assert.Len(t, result.Assignments[models.Monday], 1)
}
