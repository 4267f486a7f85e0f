package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type exportServiceMock struct {
	createResp  *dto.ExportJobResponse
	createErr   error
	statusResp  *dto.ExportStatusResponse
	statusErr   error
	download    *service.ExportDownload
	downloadErr error
}

func (m *exportServiceMock) CreateJob(ctx context.Context, hallID string, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error) {
	return m.createResp, m.createErr
}

func (m *exportServiceMock) GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleAdmin}
}

func TestExportHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		createResp: &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued, Progress: 0},
	}
	h := NewExportHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.ExportRequest{Format: models.ExportFormatJSON})
	c, w := newGinContext(http.MethodPost, "/halls/hall-1/exports", payload)
	c.Params = gin.Params{{Key: "id", Value: "hall-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	h.Create(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Contains(t, w.Body.String(), "job-1")
}

func TestExportHandlerCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewExportHandler(&exportServiceMock{}, nil)

	payload, _ := json.Marshal(dto.ExportRequest{Format: models.ExportFormatJSON})
	c, w := newGinContext(http.MethodPost, "/halls/hall-1/exports", payload)
	c.Params = gin.Params{{Key: "id", Value: "hall-1"}}

	h.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportHandlerCreateRejectsBadFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{createErr: appErrors.Clone(appErrors.ErrValidation, "unsupported export format")}
	h := NewExportHandler(mockSvc, nil)

	payload := []byte(`{"format":"xml"}`)
	c, w := newGinContext(http.MethodPost, "/halls/hall-1/exports", payload)
	c.Params = gin.Params{{Key: "id", Value: "hall-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	url := "/api/v1/exports/download/tok"
	mockSvc := &exportServiceMock{
		statusResp: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100, ResultURL: &url},
	}
	h := NewExportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/exports/job-1", nil)
	c.Params = gin.Params{{Key: "jobId", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "FINISHED")
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "chart.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ok":true}`), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	mockSvc := &exportServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "chart.json",
			Format:    models.ExportFormatJSON,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	h := NewExportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/exports/download/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "chart.json")
	require.Contains(t, w.Body.String(), `"ok":true`)
}

func TestExportHandlerDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")}
	h := NewExportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/exports/download/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	h.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
