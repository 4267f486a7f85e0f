package models

import "time"

// Student represents an examinee registered for seating.
// Records are immutable after registration; only the photo may be
// attached later. There is no delete operation.
type Student struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	RollNumber string    `db:"roll_number" json:"roll_number"`
	PhotoData  *string   `db:"photo_data" json:"photo_data,omitempty"`
	PhotoMIME  *string   `db:"photo_mime" json:"photo_mime,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
