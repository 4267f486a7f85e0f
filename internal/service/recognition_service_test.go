package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/recognition"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type recognizerStub struct {
	candidates []models.Student
	match      bool
	err        error
}

func (r *recognizerStub) Identify(ctx context.Context, frame recognition.Frame, candidates []models.Student) (*models.Student, error) {
	r.candidates = candidates
	if r.err != nil {
		return nil, r.err
	}
	if !r.match || len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

type placementStub struct {
	responses []*dto.PlacementResponse
	calls     []string
}

func (p *placementStub) PlaceStudent(ctx context.Context, hallID, studentID string) (*dto.PlacementResponse, error) {
	p.calls = append(p.calls, studentID)
	resp := &dto.PlacementResponse{HallID: hallID, StudentID: studentID, Placed: true, Seat: &models.SeatRef{Row: 1, Seat: 1}}
	if len(p.responses) > 0 {
		resp = p.responses[0]
		p.responses = p.responses[1:]
	}
	return resp, nil
}

func newRecognitionServiceForTest(t *testing.T, match bool) (*RecognitionService, *recognizerStub, *placementStub, *assignmentRepoStub) {
	t.Helper()
	_, roster := seatingFixtures()
	recognizer := &recognizerStub{match: match}
	placement := &placementStub{}
	assignments := newAssignmentRepoStub()
	svc := NewRecognitionService(recognizer, roster, assignments, placement, zap.NewNop(), config.RecognitionConfig{
		Enabled:    true,
		MaxFrameKB: 1,
	})
	return svc, recognizer, placement, assignments
}

func TestRecognitionServiceMatchPlacesStudent(t *testing.T) {
	svc, _, placement, _ := newRecognitionServiceForTest(t, true)

	resp, err := svc.RecognizeAndPlace(context.Background(), "hall-1", recognition.Frame{Data: pngFrame})
	require.NoError(t, err)
	require.True(t, resp.Recognized)
	require.NotNil(t, resp.Student)
	assert.Equal(t, "s1", resp.Student.ID)
	require.NotNil(t, resp.Placement)
	assert.True(t, resp.Placement.Placed)
	assert.Equal(t, []string{"s1"}, placement.calls)
}

func TestRecognitionServiceNoMatch(t *testing.T) {
	svc, _, placement, _ := newRecognitionServiceForTest(t, false)

	resp, err := svc.RecognizeAndPlace(context.Background(), "hall-1", recognition.Frame{Data: pngFrame})
	require.NoError(t, err)
	assert.False(t, resp.Recognized)
	assert.Nil(t, resp.Student)
	assert.Nil(t, resp.Placement)
	assert.Empty(t, placement.calls)
}

func TestRecognitionServiceExcludesSeatedCandidates(t *testing.T) {
	svc, recognizer, _, assignments := newRecognitionServiceForTest(t, true)

	s1 := "s1"
	assignments.byHall["hall-1"] = []models.SeatAssignment{
		{HallID: "hall-1", Row: 1, Seat: 1, StudentID: &s1},
	}

	resp, err := svc.RecognizeAndPlace(context.Background(), "hall-1", recognition.Frame{Data: pngFrame})
	require.NoError(t, err)
	require.True(t, resp.Recognized)
	assert.Equal(t, "s2", resp.Student.ID)

	for _, c := range recognizer.candidates {
		assert.NotEqual(t, "s1", c.ID)
	}
}

func TestRecognitionServiceDisabled(t *testing.T) {
	_, roster := seatingFixtures()
	svc := NewRecognitionService(&recognizerStub{}, roster, newAssignmentRepoStub(), &placementStub{}, zap.NewNop(), config.RecognitionConfig{Enabled: false})

	_, err := svc.RecognizeAndPlace(context.Background(), "hall-1", recognition.Frame{Data: pngFrame})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFeatureDisabled.Code, appErrors.FromError(err).Code)
}

func TestRecognitionServiceRejectsEmptyFrame(t *testing.T) {
	svc, _, _, _ := newRecognitionServiceForTest(t, true)

	_, err := svc.RecognizeAndPlace(context.Background(), "hall-1", recognition.Frame{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecognitionServiceRejectsOversizedFrame(t *testing.T) {
	svc, _, _, _ := newRecognitionServiceForTest(t, true)

	big := make([]byte, 2048)
	_, err := svc.RecognizeAndPlace(context.Background(), "hall-1", recognition.Frame{Data: big})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
