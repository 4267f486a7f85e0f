package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

// SeatingHandler exposes seat allocation endpoints for a hall.
type SeatingHandler struct {
	seating *service.SeatingService
	metrics *service.MetricsService
}

// NewSeatingHandler constructs SeatingHandler.
func NewSeatingHandler(seating *service.SeatingService, metrics *service.MetricsService) *SeatingHandler {
	return &SeatingHandler{seating: seating, metrics: metrics}
}

// AssignAll godoc
// @Summary Allocate seats for all students in row-major order
// @Description Replaces the hall's current plan. An empty student list seats every registered student in registration order; students beyond capacity are dropped and counted in the response.
// @Tags Seating
// @Accept json
// @Produce json
// @Param id path string true "Hall ID"
// @Param payload body dto.AllocateRequest true "Ordered student IDs (optional)"
// @Success 200 {object} response.Envelope
// @Router /halls/{id}/seating [post]
func (h *SeatingHandler) AssignAll(c *gin.Context) {
	var req dto.AllocateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	result, err := h.seating.AssignAll(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordSeatsAssigned("bulk", result.Seated)
	response.JSON(c, http.StatusOK, result, nil)
}

// Place godoc
// @Summary Seat one student on the next free seat
// @Tags Seating
// @Produce json
// @Param id path string true "Hall ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /halls/{id}/seating/{studentId} [post]
func (h *SeatingHandler) Place(c *gin.Context) {
	result, err := h.seating.PlaceStudent(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Placed {
		h.metrics.RecordSeatsAssigned("single", 1)
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Chart godoc
// @Summary Render the hall's seating chart
// @Tags Seating
// @Produce json
// @Param id path string true "Hall ID"
// @Success 200 {object} response.Envelope
// @Router /halls/{id}/seating [get]
func (h *SeatingHandler) Chart(c *gin.Context) {
	chart, fromCache, err := h.seating.Chart(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, fromCache)
	response.JSON(c, http.StatusOK, chart, nil, middleware.ExtractMeta(c))
}

// Reset godoc
// @Summary Clear the hall's seating plan
// @Tags Seating
// @Produce json
// @Param id path string true "Hall ID"
// @Success 204 "No Content"
// @Router /halls/{id}/seating [delete]
func (h *SeatingHandler) Reset(c *gin.Context) {
	if err := h.seating.Reset(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
