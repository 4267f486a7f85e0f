package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

type exportJobService interface {
	CreateJob(ctx context.Context, hallID string, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes seating export endpoints.
type ExportHandler struct {
	exports exportJobService
	metrics *service.MetricsService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportJobService, metrics *service.MetricsService) *ExportHandler {
	return &ExportHandler{exports: exports, metrics: metrics}
}

// Create godoc
// @Summary Queue a seating chart export
// @Tags Exports
// @Accept json
// @Produce json
// @Param id path string true "Hall ID"
// @Param payload body dto.ExportRequest true "Export options"
// @Success 202 {object} response.Envelope
// @Router /halls/{id}/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	job, err := h.exports.CreateJob(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordExportJob(string(job.Status))
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/jobs/{jobId} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("jobId"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.exports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentTypeForFormat(result.Format), result.File, nil)
}

func contentTypeForFormat(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatJSON:
		return "application/json"
	case models.ExportFormatCSV:
		return "text/csv"
	case models.ExportFormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
