package models

import "time"

// SeatRef is a 1-based (row, seat) coordinate in a hall grid.
type SeatRef struct {
	Row  int `db:"seat_row" json:"row"`
	Seat int `db:"seat_no" json:"seat"`
}

// SeatAssignment binds one seat coordinate to at most one student.
// At most one assignment exists per (hall, row, seat) at any time.
type SeatAssignment struct {
	ID         string    `db:"id" json:"id"`
	HallID     string    `db:"hall_id" json:"hall_id"`
	Row        int       `db:"seat_row" json:"row"`
	Seat       int       `db:"seat_no" json:"seat"`
	StudentID  *string   `db:"student_id" json:"student_id,omitempty"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// Occupied reports whether the assignment carries a student reference.
func (a SeatAssignment) Occupied() bool {
	return a.StudentID != nil && *a.StudentID != ""
}

// AssignmentDetail joins an assignment with its student for chart views.
type AssignmentDetail struct {
	SeatAssignment
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
	RollNumber  *string `db:"roll_number" json:"roll_number,omitempty"`
}
