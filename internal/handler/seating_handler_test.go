package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/service"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

type hallStub struct {
	hall *models.Hall
}

func (s *hallStub) List(ctx context.Context) ([]models.Hall, error) {
	return []models.Hall{*s.hall}, nil
}

func (s *hallStub) FindByID(ctx context.Context, id string) (*models.Hall, error) {
	if s.hall.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.hall
	return &copied, nil
}

func (s *hallStub) Create(ctx context.Context, hall *models.Hall) error      { return nil }
func (s *hallStub) Reconfigure(ctx context.Context, hall *models.Hall) error { return nil }

type rosterSliceStub struct {
	students []models.Student
}

func (s *rosterSliceStub) ListByRegistrationOrder(ctx context.Context) ([]models.Student, error) {
	return s.students, nil
}

func (s *rosterSliceStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for i := range s.students {
		if s.students[i].ID == id {
			return &s.students[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type planStub struct {
	plan []models.SeatAssignment
}

func (s *planStub) ListByHall(ctx context.Context, hallID string) ([]models.AssignmentDetail, error) {
	out := make([]models.AssignmentDetail, 0, len(s.plan))
	for _, a := range s.plan {
		out = append(out, models.AssignmentDetail{SeatAssignment: a})
	}
	return out, nil
}

func (s *planStub) ReplaceForHall(ctx context.Context, hallID string, plan []models.SeatAssignment) error {
	s.plan = nil
	for _, a := range plan {
		if a.Occupied() {
			s.plan = append(s.plan, a)
		}
	}
	return nil
}

func (s *planStub) Insert(ctx context.Context, assignment *models.SeatAssignment) error {
	s.plan = append(s.plan, *assignment)
	return nil
}

func (s *planStub) DeleteForHall(ctx context.Context, hallID string) error {
	s.plan = nil
	return nil
}

func (s *planStub) SeatedStudentIDs(ctx context.Context, hallID string) ([]string, error) {
	var ids []string
	for _, a := range s.plan {
		if a.Occupied() {
			ids = append(ids, *a.StudentID)
		}
	}
	return ids, nil
}

func newSeatingHandlerForTest(t *testing.T) (*SeatingHandler, *planStub) {
	t.Helper()
	hall := &models.Hall{ID: "hall-1", Name: "Main Hall", Rows: 2, SeatsPerRow: 2}
	roster := &rosterSliceStub{students: []models.Student{
		{ID: "s1", FullName: "Alice Adams", RollNumber: "R001"},
		{ID: "s2", FullName: "Bob Brown", RollNumber: "R002"},
	}}
	plan := &planStub{}
	svc := service.NewSeatingService(&hallStub{hall: hall}, roster, plan, nil, nil, nil, zap.NewNop(), config.ChartConfig{})
	return NewSeatingHandler(svc, nil), plan
}

func TestSeatingHandlerAssignAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, plan := newSeatingHandlerForTest(t)

	payload, _ := json.Marshal(dto.AllocateRequest{StudentIDs: []string{"s1", "s2"}})
	c, w := newGinContext(http.MethodPost, "/halls/hall-1/seating", payload)
	c.Params = gin.Params{{Key: "id", Value: "hall-1"}}

	h.AssignAll(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	raw, _ := json.Marshal(envelope.Data)
	var result dto.AllocateResponse
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Equal(t, 2, result.Seated)
	require.Equal(t, 0, result.Dropped)
	require.Len(t, plan.plan, 2)
}

func TestSeatingHandlerAssignAllEmptyBodySeatsRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, plan := newSeatingHandlerForTest(t)

	c, w := newGinContext(http.MethodPost, "/halls/hall-1/seating", nil)
	c.Params = gin.Params{{Key: "id", Value: "hall-1"}}

	h.AssignAll(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, plan.plan, 2)
}

func TestSeatingHandlerAssignAllUnknownHall(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newSeatingHandlerForTest(t)

	c, w := newGinContext(http.MethodPost, "/halls/missing/seating", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.AssignAll(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeatingHandlerChart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, plan := newSeatingHandlerForTest(t)
	s1 := "s1"
	plan.plan = []models.SeatAssignment{{HallID: "hall-1", Row: 1, Seat: 1, StudentID: &s1}}

	c, w := newGinContext(http.MethodGet, "/halls/hall-1/seating", nil)
	c.Params = gin.Params{{Key: "id", Value: "hall-1"}}

	h.Chart(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	raw, _ := json.Marshal(envelope.Data)
	var chart dto.ChartResponse
	require.NoError(t, json.Unmarshal(raw, &chart))
	require.Len(t, chart.Seats, 4)
	require.Equal(t, 1, chart.Seated)
}

func TestSeatingHandlerPlaceAndReset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, plan := newSeatingHandlerForTest(t)

	c, w := newGinContext(http.MethodPost, "/halls/hall-1/seating/s1", nil)
	c.Params = gin.Params{{Key: "id", Value: "hall-1"}, {Key: "studentId", Value: "s1"}}
	h.Place(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, plan.plan, 1)
	require.Equal(t, 1, plan.plan[0].Row)
	require.Equal(t, 1, plan.plan[0].Seat)

	c, w = newGinContext(http.MethodDelete, "/halls/hall-1/seating", nil)
	c.Params = gin.Params{{Key: "id", Value: "hall-1"}}
	h.Reset(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, plan.plan)
}
