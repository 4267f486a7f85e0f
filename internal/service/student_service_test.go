package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type studentRepoStub struct {
	students []models.Student
}

func (r *studentRepoStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return r.students, len(r.students), nil
}

func (r *studentRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for i := range r.students {
		if r.students[i].ID == id {
			return &r.students[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *studentRepoStub) ExistsByRollNumber(ctx context.Context, rollNumber string) (bool, error) {
	for _, s := range r.students {
		if s.RollNumber == rollNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *studentRepoStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, s := range r.students {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *studentRepoStub) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	r.students = append(r.students, *student)
	return nil
}

func (r *studentRepoStub) AttachPhoto(ctx context.Context, id, photoData, photoMIME string) error {
	for i := range r.students {
		if r.students[i].ID == id {
			r.students[i].PhotoData = &photoData
			r.students[i].PhotoMIME = &photoMIME
			return nil
		}
	}
	return sql.ErrNoRows
}

var pngFrame = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func newStudentServiceForTest(t *testing.T) (*StudentService, *studentRepoStub) {
	t.Helper()
	repo := &studentRepoStub{}
	svc := NewStudentService(repo, nil, zap.NewNop(), config.PhotoConfig{
		MaxSizeBytes: 1024,
		AllowedMIMEs: []string{"image/png", "image/jpeg"},
	})
	return svc, repo
}

func TestStudentServiceRegister(t *testing.T) {
	svc, repo := newStudentServiceForTest(t)

	student, err := svc.Register(context.Background(), RegisterStudentRequest{
		FullName:   "Alice Adams",
		Email:      "alice@example.com",
		RollNumber: "R001",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceRegisterValidation(t *testing.T) {
	svc, _ := newStudentServiceForTest(t)

	_, err := svc.Register(context.Background(), RegisterStudentRequest{FullName: "No Email", RollNumber: "R002"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceRegisterDuplicateRollNumber(t *testing.T) {
	svc, _ := newStudentServiceForTest(t)

	_, err := svc.Register(context.Background(), RegisterStudentRequest{
		FullName: "Alice Adams", Email: "alice@example.com", RollNumber: "R001",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterStudentRequest{
		FullName: "Other Alice", Email: "alice2@example.com", RollNumber: "R001",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newStudentServiceForTest(t)

	_, err := svc.Register(context.Background(), RegisterStudentRequest{
		FullName: "Alice Adams", Email: "alice@example.com", RollNumber: "R001",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterStudentRequest{
		FullName: "Other Alice", Email: "alice@example.com", RollNumber: "R099",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceAttachPhoto(t *testing.T) {
	svc, repo := newStudentServiceForTest(t)

	student, err := svc.Register(context.Background(), RegisterStudentRequest{
		FullName: "Alice Adams", Email: "alice@example.com", RollNumber: "R001",
	})
	require.NoError(t, err)

	updated, err := svc.AttachPhoto(context.Background(), student.ID, pngFrame)
	require.NoError(t, err)
	require.NotNil(t, updated.PhotoMIME)
	assert.Equal(t, "image/png", *updated.PhotoMIME)

	stored, err := repo.FindByID(context.Background(), student.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PhotoData)
	decoded, err := base64.StdEncoding.DecodeString(*stored.PhotoData)
	require.NoError(t, err)
	assert.Equal(t, pngFrame, decoded)
}

func TestStudentServiceAttachPhotoRejectsUnknownMIME(t *testing.T) {
	svc, repo := newStudentServiceForTest(t)
	repo.students = append(repo.students, models.Student{ID: "s1", RollNumber: "R001"})

	_, err := svc.AttachPhoto(context.Background(), "s1", []byte("plain text, not an image"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceAttachPhotoRejectsOversized(t *testing.T) {
	svc, repo := newStudentServiceForTest(t)
	repo.students = append(repo.students, models.Student{ID: "s1", RollNumber: "R001"})

	big := make([]byte, 2048)
	copy(big, pngFrame)
	_, err := svc.AttachPhoto(context.Background(), "s1", big)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc, _ := newStudentServiceForTest(t)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
