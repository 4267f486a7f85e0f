package dto

import (
	"time"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// AllocateRequest carries the ordered student list for bulk allocation.
// When StudentIDs is empty, every registered student is seated in
// registration order.
type AllocateRequest struct {
	StudentIDs []string `json:"student_ids"`
}

// AllocateResponse summarises the outcome of a bulk allocation.
type AllocateResponse struct {
	HallID   string `json:"hall_id"`
	Capacity int    `json:"capacity"`
	Seated   int    `json:"seated"`
	Dropped  int    `json:"dropped"`
}

// ChartSeat is one cell of the rendered seating chart.
type ChartSeat struct {
	Row         int     `json:"row"`
	Seat        int     `json:"seat"`
	StudentID   *string `json:"student_id,omitempty"`
	StudentName *string `json:"student_name,omitempty"`
	RollNumber  *string `json:"roll_number,omitempty"`
}

// ChartResponse is the full row-major grid for a hall.
type ChartResponse struct {
	Hall        models.Hall `json:"hall"`
	Seats       []ChartSeat `json:"seats"`
	Seated      int         `json:"seated"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// PlacementResponse reports a single-seat placement attempt. A full hall
// is not an error: Placed is false and Reason explains why.
type PlacementResponse struct {
	HallID    string          `json:"hall_id"`
	StudentID string          `json:"student_id,omitempty"`
	Placed    bool            `json:"placed"`
	Seat      *models.SeatRef `json:"seat,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}
