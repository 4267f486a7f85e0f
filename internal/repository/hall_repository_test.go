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

func TestHallRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	mock.ExpectExec("INSERT INTO halls").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	hall := &models.Hall{Name: "Aula Magna", Rows: 10, SeatsPerRow: 8}
	err := repo.Create(context.Background(), hall)
	require.NoError(t, err)
	assert.NotEmpty(t, hall.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHallRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "row_count", "seats_per_row", "created_at", "updated_at"}).
		AddRow("hall-1", "Aula Magna", 10, 8, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, row_count, seats_per_row").
		WithArgs("hall-1").
		WillReturnRows(rows)

	hall, err := repo.FindByID(context.Background(), "hall-1")
	require.NoError(t, err)
	assert.Equal(t, 80, hall.TotalSeats())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHallRepositoryReconfigureWipesAssignments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE halls SET name").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM seat_assignments WHERE hall_id").
		WithArgs("hall-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	hall := &models.Hall{ID: "hall-1", Name: "Aula Magna", Rows: 5, SeatsPerRow: 6}
	err := repo.Reconfigure(context.Background(), hall)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
