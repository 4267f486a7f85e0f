package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestAssignmentRepositoryListByHall(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "hall_id", "seat_row", "seat_no", "student_id", "assigned_at", "student_name", "roll_number"}).
		AddRow("a-1", "hall-1", 1, 1, "s-1", time.Now(), "Ada Lovelace", "R-001").
		AddRow("a-2", "hall-1", 1, 2, "s-2", time.Now(), "Alan Turing", "R-002")
	mock.ExpectQuery("SELECT a.id, a.hall_id, a.seat_row, a.seat_no").
		WithArgs("hall-1").
		WillReturnRows(rows)

	assignments, err := repo.ListByHall(context.Background(), "hall-1")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, 1, assignments[0].Row)
	assert.Equal(t, "Ada Lovelace", *assignments[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReplaceForHall(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_assignments WHERE hall_id").
		WithArgs("hall-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	// only the two occupied entries of the plan are inserted
	mock.ExpectExec("INSERT INTO seat_assignments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO seat_assignments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	plan := []models.SeatAssignment{
		{Row: 1, Seat: 1, StudentID: strPtr("s-1")},
		{Row: 1, Seat: 2, StudentID: strPtr("s-2")},
		{Row: 2, Seat: 1},
		{Row: 2, Seat: 2},
	}
	err := repo.ReplaceForHall(context.Background(), "hall-1", plan)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO seat_assignments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.SeatAssignment{HallID: "hall-1", Row: 1, Seat: 1, StudentID: strPtr("s-1")}
	err := repo.Insert(context.Background(), assignment)
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositorySeatedStudentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id"}).AddRow("s-1").AddRow("s-2")
	mock.ExpectQuery("SELECT student_id FROM seat_assignments").
		WithArgs("hall-1").
		WillReturnRows(rows)

	ids, err := repo.SeatedStudentIDs(context.Background(), "hall-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1", "s-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
