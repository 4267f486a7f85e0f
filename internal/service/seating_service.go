package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/events"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/seating"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type rosterRepository interface {
	ListByRegistrationOrder(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type assignmentRepository interface {
	ListByHall(ctx context.Context, hallID string) ([]models.AssignmentDetail, error)
	ReplaceForHall(ctx context.Context, hallID string, plan []models.SeatAssignment) error
	Insert(ctx context.Context, assignment *models.SeatAssignment) error
	DeleteForHall(ctx context.Context, hallID string) error
	SeatedStudentIDs(ctx context.Context, hallID string) ([]string, error)
}

type chartCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SeatingService orchestrates seat allocation for a hall. The plan logic
// itself lives in the seating package; this layer owns persistence,
// caching and event publication.
type SeatingService struct {
	halls       hallRepository
	students    rosterRepository
	assignments assignmentRepository
	cache       chartCache
	publisher   events.Publisher
	validator   *validator.Validate
	logger      *zap.Logger
	chartCfg    config.ChartConfig
}

// NewSeatingService constructs the seating service. cache may be nil when
// Redis is not configured.
func NewSeatingService(
	halls hallRepository,
	students rosterRepository,
	assignments assignmentRepository,
	cache chartCache,
	publisher events.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
	chartCfg config.ChartConfig,
) *SeatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &SeatingService{
		halls:       halls,
		students:    students,
		assignments: assignments,
		cache:       cache,
		publisher:   publisher,
		validator:   validate,
		logger:      logger,
		chartCfg:    chartCfg,
	}
}

// AssignAll replaces the hall's seating plan with a fresh row-major
// allocation. An empty student list seats every registered student in
// registration order. Students beyond capacity are reported as dropped,
// not rejected.
func (s *SeatingService) AssignAll(ctx context.Context, hallID string, req dto.AllocateRequest) (*dto.AllocateResponse, error) {
	hall, err := s.loadHall(ctx, hallID)
	if err != nil {
		return nil, err
	}

	ids := req.StudentIDs
	if len(ids) == 0 {
		students, err := s.students.ListByRegistrationOrder(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
		}
		ids = make([]string, 0, len(students))
		for _, st := range students {
			ids = append(ids, st.ID)
		}
	} else {
		ids, err = s.resolveStudents(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	plan := seating.Allocate(*hall, ids)
	if err := s.assignments.ReplaceForHall(ctx, hall.ID, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store seating plan")
	}

	seated := seating.Seated(plan)
	s.invalidateChart(ctx, hall.ID)
	s.publisher.PlanReplaced(ctx, events.PlanReplacedEvent{
		HallID:     hall.ID,
		Seated:     seated,
		ReplacedAt: time.Now().UTC(),
	})

	return &dto.AllocateResponse{
		HallID:   hall.ID,
		Capacity: hall.TotalSeats(),
		Seated:   seated,
		Dropped:  len(ids) - seated,
	}, nil
}

// PlaceStudent seats one student on the first free seat of the hall. A
// full hall is reported via Placed=false rather than an error.
func (s *SeatingService) PlaceStudent(ctx context.Context, hallID, studentID string) (*dto.PlacementResponse, error) {
	hall, err := s.loadHall(ctx, hallID)
	if err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	seatedIDs, err := s.assignments.SeatedStudentIDs(ctx, hall.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seating plan")
	}
	for _, id := range seatedIDs {
		if id == studentID {
			return nil, appErrors.Clone(appErrors.ErrSeatTaken, "student already seated in this hall")
		}
	}

	details, err := s.assignments.ListByHall(ctx, hall.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seating plan")
	}
	current := make([]models.SeatAssignment, 0, len(details))
	for _, d := range details {
		current = append(current, d.SeatAssignment)
	}

	ref, ok := seating.NextFree(*hall, current)
	if !ok {
		return &dto.PlacementResponse{
			HallID:    hall.ID,
			StudentID: studentID,
			Placed:    false,
			Reason:    "hall is full",
		}, nil
	}

	assignment := &models.SeatAssignment{
		HallID:    hall.ID,
		Row:       ref.Row,
		Seat:      ref.Seat,
		StudentID: &studentID,
	}
	if err := s.assignments.Insert(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assignment")
	}

	s.invalidateChart(ctx, hall.ID)
	s.publisher.SeatPlaced(ctx, events.SeatPlacedEvent{
		HallID:    hall.ID,
		StudentID: studentID,
		Seat:      ref,
		PlacedAt:  time.Now().UTC(),
	})

	return &dto.PlacementResponse{
		HallID:    hall.ID,
		StudentID: studentID,
		Placed:    true,
		Seat:      &ref,
	}, nil
}

// Chart renders the full row-major grid for a hall, including empty
// seats. Results are cached when a chart cache is configured; the bool
// return reports whether the response was served from cache.
func (s *SeatingService) Chart(ctx context.Context, hallID string) (*dto.ChartResponse, bool, error) {
	if s.cacheEnabled() {
		var cached dto.ChartResponse
		if err := s.cache.Get(ctx, chartCacheKey(hallID), &cached); err == nil {
			return &cached, true, nil
		}
	}

	hall, err := s.loadHall(ctx, hallID)
	if err != nil {
		return nil, false, err
	}
	details, err := s.assignments.ListByHall(ctx, hall.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seating plan")
	}

	occupied := make(map[models.SeatRef]models.AssignmentDetail, len(details))
	for _, d := range details {
		if d.Occupied() {
			occupied[models.SeatRef{Row: d.Row, Seat: d.Seat}] = d
		}
	}

	seats := make([]dto.ChartSeat, 0, hall.TotalSeats())
	seated := 0
	for row := 1; row <= hall.Rows; row++ {
		for seat := 1; seat <= hall.SeatsPerRow; seat++ {
			cell := dto.ChartSeat{Row: row, Seat: seat}
			if d, ok := occupied[models.SeatRef{Row: row, Seat: seat}]; ok {
				cell.StudentID = d.StudentID
				cell.StudentName = d.StudentName
				cell.RollNumber = d.RollNumber
				seated++
			}
			seats = append(seats, cell)
		}
	}

	chart := &dto.ChartResponse{
		Hall:        *hall,
		Seats:       seats,
		Seated:      seated,
		GeneratedAt: time.Now().UTC(),
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, chartCacheKey(hall.ID), chart, s.chartCfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache seating chart", zap.String("hall_id", hall.ID), zap.Error(err))
		}
	}
	return chart, false, nil
}

// Reset clears the hall's seating plan.
func (s *SeatingService) Reset(ctx context.Context, hallID string) error {
	hall, err := s.loadHall(ctx, hallID)
	if err != nil {
		return err
	}
	if err := s.assignments.DeleteForHall(ctx, hall.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset seating plan")
	}
	s.invalidateChart(ctx, hall.ID)
	s.publisher.PlanReplaced(ctx, events.PlanReplacedEvent{
		HallID:     hall.ID,
		Seated:     0,
		ReplacedAt: time.Now().UTC(),
	})
	return nil
}

func (s *SeatingService) loadHall(ctx context.Context, hallID string) (*models.Hall, error) {
	hall, err := s.halls.FindByID(ctx, hallID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hall not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hall")
	}
	return hall, nil
}

// resolveStudents verifies every id exists and drops duplicates while
// keeping first-occurrence order.
func (s *SeatingService) resolveStudents(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := s.students.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		resolved = append(resolved, id)
	}
	return resolved, nil
}

func (s *SeatingService) cacheEnabled() bool {
	return s.cache != nil && s.chartCfg.CacheEnabled
}

func (s *SeatingService) invalidateChart(ctx context.Context, hallID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, chartCacheKey(hallID)); err != nil {
		s.logger.Warn("failed to invalidate chart cache", zap.String("hall_id", hallID), zap.Error(err))
	}
}

func chartCacheKey(hallID string) string {
	return "chart:" + hallID
}
