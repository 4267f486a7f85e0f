package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type hallRepository interface {
	List(ctx context.Context) ([]models.Hall, error)
	FindByID(ctx context.Context, id string) (*models.Hall, error)
	Create(ctx context.Context, hall *models.Hall) error
	Reconfigure(ctx context.Context, hall *models.Hall) error
}

// ConfigureHallRequest holds payload for creating or reshaping a hall.
type ConfigureHallRequest struct {
	Name        string `json:"name" validate:"required"`
	Rows        int    `json:"rows" validate:"required,min=1"`
	SeatsPerRow int    `json:"seats_per_row" validate:"required,min=1"`
}

// HallService manages exam-hall configuration. Reshaping a hall discards
// its seating plan, since existing coordinates may no longer exist.
type HallService struct {
	repo      hallRepository
	cache     chartCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHallService constructs the hall service. The cache, shared with
// SeatingService, holds rendered charts that reconfiguration invalidates.
func NewHallService(repo hallRepository, cache chartCache, validate *validator.Validate, logger *zap.Logger) *HallService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HallService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all configured halls.
func (s *HallService) List(ctx context.Context) ([]models.Hall, error) {
	halls, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list halls")
	}
	return halls, nil
}

// Get returns a hall by id.
func (s *HallService) Get(ctx context.Context, id string) (*models.Hall, error) {
	hall, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hall not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hall")
	}
	return hall, nil
}

// Configure creates a new hall with the given dimensions.
func (s *HallService) Configure(ctx context.Context, req ConfigureHallRequest) (*models.Hall, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hall payload")
	}
	hall := &models.Hall{
		Name:        req.Name,
		Rows:        req.Rows,
		SeatsPerRow: req.SeatsPerRow,
	}
	if err := s.repo.Create(ctx, hall); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create hall")
	}
	return hall, nil
}

// Reconfigure updates a hall's dimensions and wipes its seating plan.
func (s *HallService) Reconfigure(ctx context.Context, id string, req ConfigureHallRequest) (*models.Hall, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hall payload")
	}
	hall, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	hall.Name = req.Name
	hall.Rows = req.Rows
	hall.SeatsPerRow = req.SeatsPerRow
	if err := s.repo.Reconfigure(ctx, hall); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reconfigure hall")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, chartCacheKey(hall.ID)); err != nil {
			s.logger.Warn("failed to invalidate chart cache", zap.String("hall_id", hall.ID), zap.Error(err))
		}
	}
	s.logger.Info("hall reconfigured, seating plan discarded",
		zap.String("hall_id", hall.ID),
		zap.Int("rows", hall.Rows),
		zap.Int("seats_per_row", hall.SeatsPerRow))
	return hall, nil
}
