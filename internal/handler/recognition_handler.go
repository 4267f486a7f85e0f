package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/recognition"
	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

// RecognitionHandler exposes the recognize-and-place endpoint.
type RecognitionHandler struct {
	recognitions *service.RecognitionService
	metrics      *service.MetricsService
}

// NewRecognitionHandler constructs RecognitionHandler.
func NewRecognitionHandler(recognitions *service.RecognitionService, metrics *service.MetricsService) *RecognitionHandler {
	return &RecognitionHandler{recognitions: recognitions, metrics: metrics}
}

// Recognize godoc
// @Summary Recognize a camera frame and seat the matched student
// @Tags Recognition
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Hall ID"
// @Param frame formData file true "Camera frame"
// @Success 200 {object} response.Envelope
// @Router /halls/{id}/recognize [post]
func (h *RecognitionHandler) Recognize(c *gin.Context) {
	fileHeader, err := c.FormFile("frame")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "frame file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read frame"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read frame"))
		return
	}

	frame := recognition.Frame{
		Data: data,
		MIME: fileHeader.Header.Get("Content-Type"),
	}
	result, err := h.recognitions.RecognizeAndPlace(c.Request.Context(), c.Param("id"), frame)
	if err != nil {
		h.metrics.RecordRecognition("error")
		response.Error(c, err)
		return
	}
	if result.Recognized {
		h.metrics.RecordRecognition("matched")
		if result.Placement != nil && result.Placement.Placed {
			h.metrics.RecordSeatsAssigned("recognition", 1)
		}
	} else {
		h.metrics.RecordRecognition("unmatched")
	}
	response.JSON(c, http.StatusOK, result, nil)
}
