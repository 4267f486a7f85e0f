package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// HallRepository manages persistence for hall configurations.
type HallRepository struct {
	db *sqlx.DB
}

// NewHallRepository constructs a HallRepository.
func NewHallRepository(db *sqlx.DB) *HallRepository {
	return &HallRepository{db: db}
}

// List returns every configured hall.
func (r *HallRepository) List(ctx context.Context) ([]models.Hall, error) {
	const query = `SELECT id, name, row_count, seats_per_row, created_at, updated_at
        FROM halls ORDER BY created_at ASC`
	var halls []models.Hall
	if err := r.db.SelectContext(ctx, &halls, query); err != nil {
		return nil, fmt.Errorf("list halls: %w", err)
	}
	return halls, nil
}

// FindByID fetches a hall by ID.
func (r *HallRepository) FindByID(ctx context.Context, id string) (*models.Hall, error) {
	const query = `SELECT id, name, row_count, seats_per_row, created_at, updated_at
        FROM halls WHERE id = $1`
	var hall models.Hall
	if err := r.db.GetContext(ctx, &hall, query, id); err != nil {
		return nil, err
	}
	return &hall, nil
}

// Create inserts a new hall configuration.
func (r *HallRepository) Create(ctx context.Context, hall *models.Hall) error {
	if hall.ID == "" {
		hall.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hall.CreatedAt.IsZero() {
		hall.CreatedAt = now
	}
	hall.UpdatedAt = now
	const query = `INSERT INTO halls (id, name, row_count, seats_per_row, created_at, updated_at)
        VALUES (:id, :name, :row_count, :seats_per_row, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hall); err != nil {
		return fmt.Errorf("create hall: %w", err)
	}
	return nil
}

// Reconfigure replaces a hall's layout and wipes its seat assignments in
// one transaction. Every prior assignment is invalid once the grid changes.
func (r *HallRepository) Reconfigure(ctx context.Context, hall *models.Hall) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reconfigure: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	hall.UpdatedAt = time.Now().UTC()
	const update = `UPDATE halls SET name = :name, row_count = :row_count, seats_per_row = :seats_per_row, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, update, hall); err != nil {
		return fmt.Errorf("update hall: %w", err)
	}

	const wipe = `DELETE FROM seat_assignments WHERE hall_id = $1`
	if _, err := tx.ExecContext(ctx, wipe, hall.ID); err != nil {
		return fmt.Errorf("wipe assignments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reconfigure: %w", err)
	}
	return nil
}
