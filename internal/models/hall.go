package models

import "time"

// Hall models the physical seating area as a fixed grid of
// rows x seats-per-row. Reconfiguring a hall invalidates every
// seat assignment recorded for it.
type Hall struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Rows        int       `db:"row_count" json:"rows"`
	SeatsPerRow int       `db:"seats_per_row" json:"seats_per_row"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TotalSeats returns the derived hall capacity.
func (h Hall) TotalSeats() int {
	return h.Rows * h.SeatsPerRow
}
