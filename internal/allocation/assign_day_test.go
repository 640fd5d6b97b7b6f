package allocation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
)

const testWeek = "2025-W43"

func student(id, name string, days ...string) models.Student {
	pattern := map[string]bool{}
	for _, d := range days {
		pattern[d] = true
	}
	return models.Student{ID: id, Name: name, WeeklyPattern: pattern, ValidFrom: models.DefaultValidFrom, ValidUntil: models.ValidUntilOngoing}
}

func seat(id string, props ...string) models.Seat {
	properties := map[string]bool{}
	for _, p := range props {
		properties[p] = true
	}
	return models.Seat{ID: id, RoomID: "room-1", Number: 1, Properties: properties}
}

func seatIDs(assignments []models.Assignment) map[string]string {
	out := make(map[string]string, len(assignments))
	for _, a := range assignments {
		out[a.StudentID] = a.SeatID
	}
	return out
}

func TestAssignDaySingleStudent(t *testing.T) {
	assignments, conflicts := AssignDay(
		[]models.Student{student("st1", "Alice", models.Monday)},
		[]models.Seat{seat("s1")},
		models.Monday, testWeek, nil,
	)

	require.Len(t, assignments, 1)
	assert.Equal(t, models.Assignment{StudentID: "st1", SeatID: "s1", Day: models.Monday, Week: testWeek}, assignments[0])
	assert.Empty(t, conflicts)
}

func TestAssignDayScarcitySendsLastAlphabeticalToConflicts(t *testing.T) {
	students := []models.Student{
		student("st-c", "Charlie", models.Monday),
		student("st-a", "Alice", models.Monday),
		student("st-b", "Bob", models.Monday),
	}
	assignments, conflicts := AssignDay(students, []models.Seat{seat("s1"), seat("s2")}, models.Monday, testWeek, nil)

	require.Len(t, assignments, 2)
	assert.Equal(t, "st-a", assignments[0].StudentID)
	assert.Equal(t, "s1", assignments[0].SeatID)
	assert.Equal(t, "st-b", assignments[1].StudentID)
	assert.Equal(t, "s2", assignments[1].SeatID)
	assert.Equal(t, []string{"st-c"}, conflicts)
}

func TestAssignDayHundredStudentsTenSeats(t *testing.T) {
	var students []models.Student
	for i := 0; i < 100; i++ {
		students = append(students, student(fmt.Sprintf("st-%03d", i), fmt.Sprintf("Student %03d", i), models.Weekdays...))
	}
	var seats []models.Seat
	for i := 0; i < 10; i++ {
		seats = append(seats, seat(fmt.Sprintf("s-%02d", i)))
	}

	assignments, conflicts := AssignDay(students, seats, models.Wednesday, testWeek, nil)

	assert.Len(t, assignments, 10)
	assert.Len(t, conflicts, 90)
}

func TestAssignDayPerfectMatchIgnoresListOrder(t *testing.T) {
	st := student("st1", "Alice", models.Monday)
	st.Requirements = []string{"near_window"}

	for _, seats := range [][]models.Seat{
		{seat("seat1"), seat("seat2", "near_window")},
		{seat("seat2", "near_window"), seat("seat1")},
	} {
		assignments, conflicts := AssignDay([]models.Student{st}, seats, models.Monday, testWeek, nil)
		require.Len(t, assignments, 1)
		assert.Equal(t, "seat2", assignments[0].SeatID)
		assert.Empty(t, conflicts)
	}
}

func TestAssignDayPartialMatchPicksHighestCountFirstInPool(t *testing.T) {
	st := student("st1", "Alice", models.Monday)
	st.Requirements = []string{"near_window", "standing_desk", "quiet"}

	seats := []models.Seat{
		seat("plain"),
		seat("one", "quiet"),
		seat("two-a", "quiet", "near_window"),
		seat("two-b", "near_window", "standing_desk"),
	}
	assignments, _ := AssignDay([]models.Student{st}, seats, models.Monday, testWeek, nil)

	require.Len(t, assignments, 1)
	assert.Equal(t, "two-a", assignments[0].SeatID)
}

func TestAssignDayUnmatchedRequirementsFallBackToFirstSeat(t *testing.T) {
	st := student("st1", "Alice", models.Monday)
	st.Requirements = []string{"wheelchair"}

	assignments, conflicts := AssignDay([]models.Student{st}, []models.Seat{seat("s1"), seat("s2", "quiet")}, models.Monday, testWeek, nil)

	require.Len(t, assignments, 1)
	assert.Equal(t, "s1", assignments[0].SeatID)
	assert.Empty(t, conflicts)
}

func TestAssignDayPreviousSeatWinsOverAlphabet(t *testing.T) {
	students := []models.Student{
		student("st-a", "Alice", models.Monday),
		student("st-z", "Zoe", models.Monday),
	}
	previous := []models.Assignment{{StudentID: "st-z", SeatID: "s1", Day: models.Monday, Week: "2025-W42"}}

	assignments, conflicts := AssignDay(students, []models.Seat{seat("s1")}, models.Monday, testWeek, previous)

	require.Len(t, assignments, 1)
	assert.Equal(t, "st-z", assignments[0].StudentID)
	assert.Equal(t, "s1", assignments[0].SeatID)
	assert.Equal(t, []string{"st-a"}, conflicts)
}

func TestAssignDayPreviousSeatBeatsRequirements(t *testing.T) {
	st := student("st1", "Alice", models.Monday)
	st.Requirements = []string{"near_window"}
	previous := []models.Assignment{{StudentID: "st1", SeatID: "s1"}}

	assignments, _ := AssignDay([]models.Student{st}, []models.Seat{seat("s2", "near_window"), seat("s1")}, models.Monday, testWeek, previous)

	require.Len(t, assignments, 1)
	assert.Equal(t, "s1", assignments[0].SeatID)
}

func TestAssignDayMissingPreviousSeatFallsThrough(t *testing.T) {
	st := student("st1", "Alice", models.Monday)
	previous := []models.Assignment{{StudentID: "st1", SeatID: "removed"}}

	assignments, conflicts := AssignDay([]models.Student{st}, []models.Seat{seat("s1")}, models.Monday, testWeek, previous)

	require.Len(t, assignments, 1)
	assert.Equal(t, "s1", assignments[0].SeatID)
	assert.Empty(t, conflicts)
}

func TestAssignDayEdgeCases(t *testing.T) {
	t.Run("no students", func(t *testing.T) {
		assignments, conflicts := AssignDay(nil, []models.Seat{seat("s1")}, models.Monday, testWeek, nil)
		assert.NotNil(t, assignments)
		assert.Empty(t, assignments)
		assert.NotNil(t, conflicts)
		assert.Empty(t, conflicts)
	})

	t.Run("no seats", func(t *testing.T) {
		students := []models.Student{student("st-b", "Bob", models.Monday), student("st-a", "Alice", models.Monday)}
		assignments, conflicts := AssignDay(students, nil, models.Monday, testWeek, nil)
		assert.Empty(t, assignments)
		assert.Equal(t, []string{"st-a", "st-b"}, conflicts)
	})

	t.Run("unavailable students are not conflicts", func(t *testing.T) {
		students := []models.Student{student("st1", "Alice", models.Tuesday)}
		assignments, conflicts := AssignDay(students, nil, models.Monday, testWeek, nil)
		assert.Empty(t, assignments)
		assert.Empty(t, conflicts)
	})
}

func TestAssignDayDoesNotMutateInputs(t *testing.T) {
	students := []models.Student{student("st-b", "Bob", models.Monday), student("st-a", "Alice", models.Monday)}
	seats := []models.Seat{seat("s1"), seat("s2")}

	AssignDay(students, seats, models.Monday, testWeek, nil)

	assert.Equal(t, "st-b", students[0].ID)
	assert.Equal(t, "s1", seats[0].ID)
	assert.Len(t, seats, 2)
}

func TestAssignDayIsDeterministic(t *testing.T) {
	students := []models.Student{
		student("st1", "Mia", models.Friday),
		student("st2", "Ava", models.Friday),
		student("st3", "Mia", models.Friday),
		student("st4", "Leo", models.Friday),
	}
	students[1].Requirements = []string{"quiet"}
	seats := []models.Seat{seat("s1"), seat("s2", "quiet"), seat("s3")}
	previous := []models.Assignment{{StudentID: "st4", SeatID: "s3"}}

	first, firstConflicts := AssignDay(students, seats, models.Friday, testWeek, previous)
	second, secondConflicts := AssignDay(students, seats, models.Friday, testWeek, previous)

	a, err := json.Marshal([]any{first, firstConflicts})
	require.NoError(t, err)
	b, err := json.Marshal([]any{second, secondConflicts})
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	assert.Equal(t, map[string]string{"st4": "s3", "st2": "s2", "st1": "s1"}, seatIDs(first))
	assert.Equal(t, []string{"st3"}, firstConflicts)
}

func TestAssignDayInvariants(t *testing.T) {
	var students []models.Student
	for i := 0; i < 25; i++ {
		days := []string{models.Monday}
		if i%3 == 0 {
			days = append(days, models.Tuesday)
		}
		st := student(fmt.Sprintf("st-%02d", i), fmt.Sprintf("Name %02d", 25-i), days...)
		if i%4 == 0 {
			st.Requirements = []string{"quiet", "near_window"}
		}
		students = append(students, st)
	}
	var seats []models.Seat
	for i := 0; i < 15; i++ {
		var props []string
		if i%5 == 0 {
			props = append(props, "quiet")
		}
		if i%7 == 0 {
			props = append(props, "near_window")
		}
		seats = append(seats, seat(fmt.Sprintf("s-%02d", i), props...))
	}
	previous := []models.Assignment{
		{StudentID: "st-24", SeatID: "s-03"},
		{StudentID: "st-10", SeatID: "s-14"},
	}

	assignments, conflicts := AssignDay(students, seats, models.Monday, testWeek, previous)

	assert.Equal(t, 25, len(assignments)+len(conflicts))
	seen := map[string]bool{}
	taken := map[string]bool{}
	for _, a := range assignments {
		assert.False(t, seen[a.StudentID], "student %s assigned twice", a.StudentID)
		assert.False(t, taken[a.SeatID], "seat %s used twice", a.SeatID)
		seen[a.StudentID] = true
		taken[a.SeatID] = true
	}
	bySeat := seatIDs(assignments)
	assert.Equal(t, "s-03", bySeat["st-24"])
	assert.Equal(t, "s-14", bySeat["st-10"])
}
