package validation

import (
	"fmt"

	"github.com/noah-isme/seatplan-api/internal/allocation"
	"github.com/noah-isme/seatplan-api/internal/models"
)

// Snapshot is everything a full validation pass looks at.
type Snapshot struct {
	Rooms       []models.Room
	Seats       []models.Seat
	Students    []models.Student
	Assignments []models.Assignment
}

// StudentIssue ties a date-range issue to the student it came from.
type StudentIssue struct {
	StudentID string         `json:"student_id" yaml:"student_id"`
	Issue     DateRangeIssue `json:"issue" yaml:"issue"`
}

// Report aggregates every check over a snapshot.
type Report struct {
	Valid               bool                       `json:"valid" yaml:"valid"`
	RoomOverlaps        []RoomPair                 `json:"room_overlaps" yaml:"room_overlaps"`
	InvalidSeats        []string                   `json:"invalid_seats" yaml:"invalid_seats"`
	Capacity            map[string]CapacityDetails `json:"capacity" yaml:"capacity"`
	OverCapacityDays    []string                   `json:"over_capacity_days" yaml:"over_capacity_days"`
	InvalidDateRanges   []StudentIssue             `json:"invalid_date_ranges" yaml:"invalid_date_ranges"`
	AssignmentConflicts []AssignmentConflict       `json:"assignment_conflicts" yaml:"assignment_conflicts"`
}

// BuildReport runs every structural check. Capacity shortfalls are reported but do not make the
// snapshot invalid, since the engine handles them by emitting conflicts.
func BuildReport(snapshot Snapshot) Report {
	report := Report{
		Capacity:          make(map[string]CapacityDetails, len(models.Weekdays)),
		OverCapacityDays:  make([]string, 0),
		InvalidDateRanges: make([]StudentIssue, 0),
	}

	_, report.RoomOverlaps = RoomOverlap(snapshot.Rooms)
	_, report.InvalidSeats = SeatsInRooms(snapshot.Seats, snapshot.Rooms)

	for _, day := range models.Weekdays {
		ok, details := Capacity(snapshot.Students, snapshot.Seats, day)
		report.Capacity[day] = details
		if !ok {
			report.OverCapacityDays = append(report.OverCapacityDays, day)
		}
	}

	for _, student := range snapshot.Students {
		if ok, issue := StudentDateRange(student); !ok {
			report.InvalidDateRanges = append(report.InvalidDateRanges, StudentIssue{StudentID: student.ID, Issue: *issue})
		}
	}

	report.AssignmentConflicts = AssignmentConflicts(snapshot.Assignments)

	report.Valid = len(report.RoomOverlaps) == 0 &&
		len(report.InvalidSeats) == 0 &&
		len(report.InvalidDateRanges) == 0 &&
		len(report.AssignmentConflicts) == 0
	return report
}

// SnapshotFromDataFile collects the floorplan, students and the given week's assignments.
// An empty week takes the assignments of every stored week.
func SnapshotFromDataFile(df *models.DataFile, week string) Snapshot {
	snap := Snapshot{
		Rooms:    df.Floorplan.Rooms,
		Seats:    df.Floorplan.Seats,
		Students: df.Students,
	}
	if week == "" {
		snap.Assignments = df.FlatAssignments()
		return snap
	}
	snap.Assignments = allocation.FromStored(week, df.AssignmentsForWeek(week)).Flatten()
	return snap
}

// DataFile checks the document shape before it is accepted for saving or restoring.
func DataFile(df *models.DataFile) []string {
	if df == nil {
		return []string{"document is empty"}
	}
	problems := make([]string, 0)
	if df.Metadata.Version == "" {
		problems = append(problems, "metadata.version is missing")
	}

	rooms := make(map[string]struct{}, len(df.Floorplan.Rooms))
	for _, r := range df.Floorplan.Rooms {
		if r.ID == "" {
			problems = append(problems, "room without id")
			continue
		}
		if _, dup := rooms[r.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate room id %s", r.ID))
		}
		rooms[r.ID] = struct{}{}
	}

	seats := make(map[string]struct{}, len(df.Floorplan.Seats))
	for _, s := range df.Floorplan.Seats {
		if s.ID == "" {
			problems = append(problems, "seat without id")
			continue
		}
		if _, dup := seats[s.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate seat id %s", s.ID))
		}
		seats[s.ID] = struct{}{}
		if _, ok := rooms[s.RoomID]; !ok {
			problems = append(problems, fmt.Sprintf("seat %s references unknown room %s", s.ID, s.RoomID))
		}
	}

	students := make(map[string]struct{}, len(df.Students))
	for _, s := range df.Students {
		if s.ID == "" {
			problems = append(problems, "student without id")
			continue
		}
		if _, dup := students[s.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate student id %s", s.ID))
		}
		students[s.ID] = struct{}{}
	}

	for week, byDay := range df.Assignments {
		for day := range byDay {
			if !models.IsWeekday(day) {
				problems = append(problems, fmt.Sprintf("week %s has unknown day %s", week, day))
			}
		}
	}
	return problems
}
