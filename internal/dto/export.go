package dto

import (
	"time"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// ExportRequest asks for a seating snapshot in the given format.
type ExportRequest struct {
	Format models.ExportFormat `json:"format" validate:"required,oneof=json csv pdf"`
}

// ExportJobResponse acknowledges an accepted export job.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress to clients.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}

// SeatingSnapshot is the exported artifact: hall configuration, the
// registered students and the occupied assignments only.
type SeatingSnapshot struct {
	Hall        models.Hall               `json:"hall_config"`
	Students    []models.Student          `json:"students"`
	Assignments []models.AssignmentDetail `json:"assignments"`
	GeneratedAt time.Time                 `json:"generated_at"`
}
