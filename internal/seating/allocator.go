// Package seating holds the pure seat-plan logic: bulk allocation of an
// ordered student list onto a hall grid, and the row-major scan for the
// next free seat. Both functions are deterministic and side-effect free;
// callers own all state replacement.
package seating

import (
	"github.com/noah-isme/exam-seating-api/internal/models"
)

// Allocate maps orderedStudentIDs onto the hall grid in row-major order:
// (1,1), (1,2) ... (1,C), (2,1) and so on. The returned plan always covers
// the full grid; seats beyond the student count carry no student reference.
// Students beyond capacity are dropped without error.
func Allocate(hall models.Hall, orderedStudentIDs []string) []models.SeatAssignment {
	if hall.Rows <= 0 || hall.SeatsPerRow <= 0 {
		return nil
	}

	plan := make([]models.SeatAssignment, 0, hall.TotalSeats())
	next := 0
	for row := 1; row <= hall.Rows; row++ {
		for seat := 1; seat <= hall.SeatsPerRow; seat++ {
			assignment := models.SeatAssignment{
				HallID: hall.ID,
				Row:    row,
				Seat:   seat,
			}
			if next < len(orderedStudentIDs) {
				id := orderedStudentIDs[next]
				assignment.StudentID = &id
				next++
			}
			plan = append(plan, assignment)
		}
	}
	return plan
}

// Seated counts the occupied entries of a plan.
func Seated(plan []models.SeatAssignment) int {
	count := 0
	for _, a := range plan {
		if a.Occupied() {
			count++
		}
	}
	return count
}

// NextFree scans rows 1..R and seats 1..C in that fixed nested order and
// returns the first coordinate not occupied by a student in the current
// assignment set. The second return value is false when the hall is full.
func NextFree(hall models.Hall, assignments []models.SeatAssignment) (models.SeatRef, bool) {
	occupied := make(map[models.SeatRef]struct{}, len(assignments))
	for _, a := range assignments {
		if a.Occupied() {
			occupied[models.SeatRef{Row: a.Row, Seat: a.Seat}] = struct{}{}
		}
	}

	for row := 1; row <= hall.Rows; row++ {
		for seat := 1; seat <= hall.SeatsPerRow; seat++ {
			ref := models.SeatRef{Row: row, Seat: seat}
			if _, taken := occupied[ref]; !taken {
				return ref, true
			}
		}
	}
	return models.SeatRef{}, false
}
