package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *assignmentRepoStub) {
	t.Helper()
	hall, roster := seatingFixtures()
	assignments := newAssignmentRepoStub()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewExportService(
		newHallRepoStub(hall),
		roster,
		assignments,
		store,
		signer,
		ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour},
		zap.NewNop(),
	)
	return svc, assignments
}

func seedAssignments(assignments *assignmentRepoStub) {
	s1 := "s1"
	s2 := "s2"
	assignments.byHall["hall-1"] = []models.SeatAssignment{
		{HallID: "hall-1", Row: 1, Seat: 1, StudentID: &s1},
		{HallID: "hall-1", Row: 1, Seat: 2, StudentID: &s2},
	}
}

func TestExportServiceBuildSnapshot(t *testing.T) {
	svc, assignments := newExportServiceForTest(t)
	seedAssignments(assignments)

	snapshot, err := svc.BuildSnapshot(context.Background(), "hall-1")
	require.NoError(t, err)

	assert.Equal(t, "Main Hall", snapshot.Hall.Name)
	assert.Len(t, snapshot.Students, 3)
	assert.Len(t, snapshot.Assignments, 2)
	assert.False(t, snapshot.GeneratedAt.IsZero())
	for _, st := range snapshot.Students {
		assert.Nil(t, st.PhotoData)
	}
}

func TestExportServiceGenerateJSON(t *testing.T) {
	svc, assignments := newExportServiceForTest(t)
	seedAssignments(assignments)

	job := &models.ExportJob{
		ID:     "job-12345678",
		Params: models.ExportJobParams{HallID: "hall-1", Format: models.ExportFormatJSON},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/download/"))
	assert.True(t, strings.HasPrefix(filepath.Base(result.RelativePath), "main-hall_"))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".json"))

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
	raw, err := os.ReadFile(file.Name())
	require.NoError(t, err)

	var snapshot dto.SeatingSnapshot
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Len(t, snapshot.Assignments, 2)
	assert.Equal(t, 2, snapshot.Hall.Rows)
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, assignments := newExportServiceForTest(t)
	seedAssignments(assignments)

	job := &models.ExportJob{
		ID:     "job-abc",
		Params: models.ExportJobParams{HallID: "hall-1", Format: models.ExportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
	raw, err := os.ReadFile(file.Name())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Row")
	assert.Contains(t, lines[1], "s1")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, assignments := newExportServiceForTest(t)
	seedAssignments(assignments)

	job := &models.ExportJob{
		ID:     "job-pdf",
		Params: models.ExportJobParams{HallID: "hall-1", Format: models.ExportFormatPDF},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))
}

func TestExportServiceGenerateEmptyPlan(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	job := &models.ExportJob{
		ID:     "job-empty",
		Params: models.ExportJobParams{HallID: "hall-1", Format: models.ExportFormatJSON},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
	raw, err := os.ReadFile(file.Name())
	require.NoError(t, err)

	var snapshot dto.SeatingSnapshot
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.NotNil(t, snapshot.Assignments)
	assert.Empty(t, snapshot.Assignments)
	assert.Equal(t, "Main Hall", snapshot.Hall.Name)
}

func TestExportServiceTokenRoundTrip(t *testing.T) {
	svc, assignments := newExportServiceForTest(t)
	seedAssignments(assignments)

	job := &models.ExportJob{
		ID:     "job-token",
		Params: models.ExportJobParams{HallID: "hall-1", Format: models.ExportFormatJSON},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-token", jobID)
	assert.Equal(t, result.RelativePath, relPath)
}
