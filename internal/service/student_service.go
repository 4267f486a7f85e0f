package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByRollNumber(ctx context.Context, rollNumber string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	AttachPhoto(ctx context.Context, id, photoData, photoMIME string) error
}

// RegisterStudentRequest holds payload for registering students.
type RegisterStudentRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	RollNumber string `json:"roll_number" validate:"required"`
}

// StudentService handles student registration use-cases. Registered
// students are immutable; only a photo can be attached afterwards.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
	photos    config.PhotoConfig
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger, photos config.PhotoConfig) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger, photos: photos}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Register creates a new student record.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByRollNumber(ctx, req.RollNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate roll number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already registered")
	}
	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	student := &models.Student{
		FullName:   req.FullName,
		Email:      req.Email,
		RollNumber: req.RollNumber,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
	}
	return student, nil
}

// AttachPhoto validates the uploaded image and stores it base64-encoded
// on the student record.
func (s *StudentService) AttachPhoto(ctx context.Context, id string, data []byte) (*models.Student, error) {
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "photo payload is empty")
	}
	if s.photos.MaxSizeBytes > 0 && int64(len(data)) > s.photos.MaxSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "photo exceeds maximum size")
	}

	mime := http.DetectContentType(data)
	if !s.mimeAllowed(mime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported photo format")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	if err := s.repo.AttachPhoto(ctx, id, encoded, mime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}

	student.PhotoData = &encoded
	student.PhotoMIME = &mime
	return student, nil
}

func (s *StudentService) mimeAllowed(mime string) bool {
	if len(s.photos.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.photos.AllowedMIMEs {
		if mime == allowed {
			return true
		}
	}
	return false
}
