package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.roll_number) LIKE $%d OR LOWER(s.email) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":   "s.full_name",
		"roll_number": "s.roll_number",
		"created_at":  "s.created_at",
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.id, s.full_name, s.email, s.roll_number, s.photo_data, s.photo_mime, s.created_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(s.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListByRegistrationOrder returns all students ordered by creation time.
// This is the default seating order for bulk allocation.
func (r *StudentRepository) ListByRegistrationOrder(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, full_name, email, roll_number, photo_data, photo_mime, created_at
        FROM students ORDER BY created_at ASC, id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students by registration order: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, full_name, email, roll_number, photo_data, photo_mime, created_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByRollNumber checks if a student with the given roll number exists.
func (r *StudentRepository) ExistsByRollNumber(ctx context.Context, rollNumber string) (bool, error) {
	const query = "SELECT 1 FROM students WHERE roll_number = $1 LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, rollNumber); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roll number: %w", err)
	}
	return true, nil
}

// ExistsByEmail checks if a student with the given email exists.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = "SELECT 1 FROM students WHERE LOWER(email) = LOWER($1) LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, full_name, email, roll_number, photo_data, photo_mime, created_at)
        VALUES (:id, :full_name, :email, :roll_number, :photo_data, :photo_mime, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// AttachPhoto stores the encoded photo on an existing student record.
func (r *StudentRepository) AttachPhoto(ctx context.Context, id, photoData, photoMIME string) error {
	const query = `UPDATE students SET photo_data = $2, photo_mime = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, photoData, photoMIME); err != nil {
		return fmt.Errorf("attach photo: %w", err)
	}
	return nil
}
