package models

import (
	"sort"
	"time"
)

// DataFileVersion is the document schema version written by this service.
const DataFileVersion = "1.0"

// DataFile is the persisted planning document.
type DataFile struct {
	Metadata    Metadata                                  `json:"metadata"`
	Floorplan   Floorplan                                 `json:"floorplan"`
	Students    []Student                                 `json:"students"`
	Assignments map[string]map[string][]StoredAssignment `json:"assignments"`
}

// Metadata tracks who touched the document last.
type Metadata struct {
	Version      string `json:"version"`
	LastModified string `json:"last_modified"`
	LastUser     string `json:"last_user"`
}

// Floorplan groups rooms and the seats placed inside them.
type Floorplan struct {
	Rooms []Room `json:"rooms"`
	Seats []Seat `json:"seats"`
}

// NewDataFile returns an empty document stamped for the system user.
func NewDataFile() *DataFile {
	return &DataFile{
		Metadata: Metadata{
			Version:      DataFileVersion,
			LastModified: time.Now().UTC().Format(time.RFC3339),
			LastUser:     "system",
		},
		Floorplan:   Floorplan{Rooms: []Room{}, Seats: []Seat{}},
		Students:    []Student{},
		Assignments: map[string]map[string][]StoredAssignment{},
	}
}

// Touch stamps the metadata with the acting user.
func (d *DataFile) Touch(user string, at time.Time) {
	d.Metadata.LastUser = user
	d.Metadata.LastModified = at.UTC().Format(time.RFC3339)
	if d.Metadata.Version == "" {
		d.Metadata.Version = DataFileVersion
	}
}

// AssignmentsForWeek rebuilds typed assignments for a week, keyed by weekday.
// The result is nil when the week has never been planned.
func (d *DataFile) AssignmentsForWeek(week string) map[string][]Assignment {
	stored, ok := d.Assignments[week]
	if !ok {
		return nil
	}
	result := make(map[string][]Assignment, len(stored))
	for day, items := range stored {
		list := make([]Assignment, 0, len(items))
		for _, item := range items {
			list = append(list, Assignment{StudentID: item.StudentID, SeatID: item.SeatID, Day: day, Week: week})
		}
		result[day] = list
	}
	return result
}

// FlatAssignments returns every stored assignment, weeks in ascending order and days in
// canonical order.
func (d *DataFile) FlatAssignments() []Assignment {
	weeks := make([]string, 0, len(d.Assignments))
	for week := range d.Assignments {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	var result []Assignment
	for _, week := range weeks {
		byDay := d.AssignmentsForWeek(week)
		for _, day := range Weekdays {
			result = append(result, byDay[day]...)
		}
	}
	return result
}

// SetWeek replaces the stored assignments of a week.
func (d *DataFile) SetWeek(week string, byDay map[string][]Assignment) {
	if d.Assignments == nil {
		d.Assignments = map[string]map[string][]StoredAssignment{}
	}
	stored := make(map[string][]StoredAssignment, len(byDay))
	for day, items := range byDay {
		list := make([]StoredAssignment, 0, len(items))
		for _, item := range items {
			list = append(list, StoredAssignment{StudentID: item.StudentID, SeatID: item.SeatID})
		}
		stored[day] = list
	}
	d.Assignments[week] = stored
}

// ClearWeek removes a week; it reports whether anything was stored.
func (d *DataFile) ClearWeek(week string) bool {
	if _, ok := d.Assignments[week]; !ok {
		return false
	}
	delete(d.Assignments, week)
	return true
}

// FindRoom returns the index of a room or -1.
func (d *DataFile) FindRoom(id string) int {
	for i, room := range d.Floorplan.Rooms {
		if room.ID == id {
			return i
		}
	}
	return -1
}

// FindSeat returns the index of a seat or -1.
func (d *DataFile) FindSeat(id string) int {
	for i, seat := range d.Floorplan.Seats {
		if seat.ID == id {
			return i
		}
	}
	return -1
}

// FindStudent returns the index of a student or -1.
func (d *DataFile) FindStudent(id string) int {
	for i, student := range d.Students {
		if student.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so snapshots never alias the live document.
func (d *DataFile) Clone() *DataFile {
	if d == nil {
		return nil
	}
	out := &DataFile{
		Metadata: d.Metadata,
		Floorplan: Floorplan{
			Rooms: append([]Room{}, d.Floorplan.Rooms...),
			Seats: make([]Seat, len(d.Floorplan.Seats)),
		},
		Students:    make([]Student, len(d.Students)),
		Assignments: make(map[string]map[string][]StoredAssignment, len(d.Assignments)),
	}
	for i, seat := range d.Floorplan.Seats {
		seat.Properties = copyFlags(seat.Properties)
		out.Floorplan.Seats[i] = seat
	}
	for i, student := range d.Students {
		student.WeeklyPattern = copyFlags(student.WeeklyPattern)
		student.Requirements = append([]string{}, student.Requirements...)
		out.Students[i] = student
	}
	for week, days := range d.Assignments {
		copied := make(map[string][]StoredAssignment, len(days))
		for day, items := range days {
			copied[day] = append([]StoredAssignment{}, items...)
		}
		out.Assignments[week] = copied
	}
	return out
}

func copyFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
