// Package allocation turns student and seat snapshots into seat assignments.
// Every function here is pure: inputs are never mutated and nothing is persisted.
package allocation

import (
	"sort"

	"github.com/noah-isme/seatplan-api/internal/models"
)

const (
	priorityPreviousSeat = 0
	priorityNewcomer     = 1
)

// AssignDay allocates seats for a single weekday.
//
// Students available on day are ordered by (had a seat on this weekday before, name) and served
// greedily: their previous seat if still free, else the first seat meeting all requirements, else
// the first seat meeting the most requirements, else the first free seat. Students left without a
// seat are returned as conflicts. previous may be nil.
func AssignDay(students []models.Student, seats []models.Seat, day, week string, previous []models.Assignment) ([]models.Assignment, []string) {
	prevSeats := make(map[string]string, len(previous))
	for _, a := range previous {
		prevSeats[a.StudentID] = a.SeatID
	}

	candidates := prioritize(availableOn(students, day), prevSeats)
	pool := newSeatPool(seats)

	assignments := make([]models.Assignment, 0, len(candidates))
	conflicts := make([]string, 0)

	for _, student := range candidates {
		prevPos := -1
		if seatID := prevSeats[student.ID]; seatID != "" {
			prevPos = pool.indexOf(seatID)
		}

		pos, ok := findSeat(student, pool, prevPos)
		if !ok {
			conflicts = append(conflicts, student.ID)
			continue
		}
		seat := pool.take(pos)
		assignments = append(assignments, models.Assignment{
			StudentID: student.ID,
			SeatID:    seat.ID,
			Day:       day,
			Week:      week,
		})
	}

	return assignments, conflicts
}

func availableOn(students []models.Student, day string) []models.Student {
	result := make([]models.Student, 0, len(students))
	for _, s := range students {
		if s.IsAvailableOn(day) {
			result = append(result, s)
		}
	}
	return result
}

// prioritize sorts by (tier, name). The sort is stable so equal names keep input order.
func prioritize(students []models.Student, prevSeats map[string]string) []models.Student {
	tier := func(s models.Student) int {
		if _, ok := prevSeats[s.ID]; ok {
			return priorityPreviousSeat
		}
		return priorityNewcomer
	}
	sort.SliceStable(students, func(i, j int) bool {
		ti, tj := tier(students[i]), tier(students[j])
		if ti != tj {
			return ti < tj
		}
		return students[i].Name < students[j].Name
	})
	return students
}

// findSeat returns the pool position to assign, or false when the pool is empty.
func findSeat(student models.Student, pool *seatPool, prevPos int) (int, bool) {
	if pool.len() == 0 {
		return 0, false
	}
	if prevPos >= 0 {
		return prevPos, true
	}
	if len(student.Requirements) > 0 {
		for i := 0; i < pool.len(); i++ {
			if pool.at(i).SatisfiedCount(student.Requirements) == len(student.Requirements) {
				return i, true
			}
		}

		best, bestCount := -1, 0
		for i := 0; i < pool.len(); i++ {
			if count := pool.at(i).SatisfiedCount(student.Requirements); count > bestCount {
				best, bestCount = i, count
			}
		}
		if best >= 0 {
			return best, true
		}
	}
	return 0, true
}

// seatPool keeps the remaining seats in input order.
type seatPool struct {
	seats []models.Seat
}

func newSeatPool(seats []models.Seat) *seatPool {
	return &seatPool{seats: append([]models.Seat(nil), seats...)}
}

func (p *seatPool) len() int { return len(p.seats) }

func (p *seatPool) at(i int) models.Seat { return p.seats[i] }

func (p *seatPool) indexOf(seatID string) int {
	for i, seat := range p.seats {
		if seat.ID == seatID {
			return i
		}
	}
	return -1
}

func (p *seatPool) take(i int) models.Seat {
	seat := p.seats[i]
	p.seats = append(p.seats[:i], p.seats[i+1:]...)
	return seat
}
