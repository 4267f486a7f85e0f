package dto

import "github.com/noah-isme/exam-seating-api/internal/models"

// RecognitionResponse reports the outcome of a recognize-and-place
// round trip. Recognized false means the frame matched nobody; placed
// false with a recognized student means the hall was already full.
type RecognitionResponse struct {
	Recognized bool               `json:"recognized"`
	Student    *models.Student    `json:"student,omitempty"`
	Placement  *PlacementResponse `json:"placement,omitempty"`
}
