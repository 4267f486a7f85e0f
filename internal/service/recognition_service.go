package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/recognition"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type placementService interface {
	PlaceStudent(ctx context.Context, hallID, studentID string) (*dto.PlacementResponse, error)
}

type seatedLookup interface {
	SeatedStudentIDs(ctx context.Context, hallID string) ([]string, error)
}

// RecognitionService runs a camera frame through the recognizer and, on
// a match, seats the student on the next free seat. Only students not
// already seated in the hall are offered as candidates.
type RecognitionService struct {
	recognizer recognition.Recognizer
	students   rosterRepository
	seated     seatedLookup
	placement  placementService
	logger     *zap.Logger
	cfg        config.RecognitionConfig
}

// NewRecognitionService constructs the recognition service.
func NewRecognitionService(
	recognizer recognition.Recognizer,
	students rosterRepository,
	seated seatedLookup,
	placement placementService,
	logger *zap.Logger,
	cfg config.RecognitionConfig,
) *RecognitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecognitionService{
		recognizer: recognizer,
		students:   students,
		seated:     seated,
		placement:  placement,
		logger:     logger,
		cfg:        cfg,
	}
}

// RecognizeAndPlace identifies the frame against the unseated students
// of the hall. An unrecognized frame is a normal outcome, not an error.
func (s *RecognitionService) RecognizeAndPlace(ctx context.Context, hallID string, frame recognition.Frame) (*dto.RecognitionResponse, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "recognition is disabled")
	}
	if len(frame.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "frame payload is empty")
	}
	if s.cfg.MaxFrameKB > 0 && int64(len(frame.Data)) > s.cfg.MaxFrameKB*1024 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "frame exceeds maximum size")
	}

	candidates, err := s.unseatedCandidates(ctx, hallID)
	if err != nil {
		return nil, err
	}

	student, err := s.recognizer.Identify(ctx, frame, candidates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "recognition failed")
	}
	if student == nil {
		return &dto.RecognitionResponse{Recognized: false}, nil
	}

	placement, err := s.placement.PlaceStudent(ctx, hallID, student.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("student recognized",
		zap.String("hall_id", hallID),
		zap.String("student_id", student.ID),
		zap.Bool("placed", placement.Placed))

	return &dto.RecognitionResponse{
		Recognized: true,
		Student:    student,
		Placement:  placement,
	}, nil
}

func (s *RecognitionService) unseatedCandidates(ctx context.Context, hallID string) ([]models.Student, error) {
	students, err := s.students.ListByRegistrationOrder(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	seatedIDs, err := s.seated.SeatedStudentIDs(ctx, hallID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load seating plan")
	}
	taken := make(map[string]struct{}, len(seatedIDs))
	for _, id := range seatedIDs {
		taken[id] = struct{}{}
	}
	candidates := make([]models.Student, 0, len(students))
	for _, st := range students {
		if _, ok := taken[st.ID]; !ok {
			candidates = append(candidates, st)
		}
	}
	return candidates, nil
}
