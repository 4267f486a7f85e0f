package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// AssignmentRepository manages persistence for seat assignments.
// The occupied set for a hall is replaced wholesale by the bulk
// allocator; only the incremental placement path inserts single rows.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByHall returns the occupied assignments of a hall joined with
// student info, in row-major order.
func (r *AssignmentRepository) ListByHall(ctx context.Context, hallID string) ([]models.AssignmentDetail, error) {
	const query = `SELECT a.id, a.hall_id, a.seat_row, a.seat_no, a.student_id, a.assigned_at,
        s.full_name AS student_name, s.roll_number
        FROM seat_assignments a
        LEFT JOIN students s ON s.id = a.student_id
        WHERE a.hall_id = $1
        ORDER BY a.seat_row ASC, a.seat_no ASC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, hallID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ReplaceForHall swaps the hall's assignment set for the provided plan in
// one transaction. Only occupied entries are persisted; empty seats are
// derived from the hall dimensions at read time.
func (r *AssignmentRepository) ReplaceForHall(ctx context.Context, hallID string, plan []models.SeatAssignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const wipe = `DELETE FROM seat_assignments WHERE hall_id = $1`
	if _, err := tx.ExecContext(ctx, wipe, hallID); err != nil {
		return fmt.Errorf("wipe assignments: %w", err)
	}

	const insert = `INSERT INTO seat_assignments (id, hall_id, seat_row, seat_no, student_id, assigned_at)
        VALUES (:id, :hall_id, :seat_row, :seat_no, :student_id, :assigned_at)`
	now := time.Now().UTC()
	for _, assignment := range plan {
		if !assignment.Occupied() {
			continue
		}
		assignment.HallID = hallID
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		if assignment.AssignedAt.IsZero() {
			assignment.AssignedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insert, assignment); err != nil {
			return fmt.Errorf("insert assignment (%d,%d): %w", assignment.Row, assignment.Seat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Insert records a single seat placement.
func (r *AssignmentRepository) Insert(ctx context.Context, assignment *models.SeatAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO seat_assignments (id, hall_id, seat_row, seat_no, student_id, assigned_at)
        VALUES (:id, :hall_id, :seat_row, :seat_no, :student_id, :assigned_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// DeleteForHall clears every assignment of the hall.
func (r *AssignmentRepository) DeleteForHall(ctx context.Context, hallID string) error {
	const query = `DELETE FROM seat_assignments WHERE hall_id = $1`
	if _, err := r.db.ExecContext(ctx, query, hallID); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}
	return nil
}

// SeatedStudentIDs returns the IDs of students already placed in the hall.
func (r *AssignmentRepository) SeatedStudentIDs(ctx context.Context, hallID string) ([]string, error) {
	const query = `SELECT student_id FROM seat_assignments WHERE hall_id = $1 AND student_id IS NOT NULL`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, hallID); err != nil {
		return nil, fmt.Errorf("list seated students: %w", err)
	}
	return ids, nil
}
