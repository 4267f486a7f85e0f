package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/service"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

// HallHandler exposes exam-hall configuration endpoints.
type HallHandler struct {
	halls *service.HallService
}

// NewHallHandler constructs HallHandler.
func NewHallHandler(halls *service.HallService) *HallHandler {
	return &HallHandler{halls: halls}
}

// List godoc
// @Summary List halls
// @Tags Halls
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /halls [get]
func (h *HallHandler) List(c *gin.Context) {
	halls, err := h.halls.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, halls, nil)
}

// Get godoc
// @Summary Get hall detail
// @Tags Halls
// @Produce json
// @Param id path string true "Hall ID"
// @Success 200 {object} response.Envelope
// @Router /halls/{id} [get]
func (h *HallHandler) Get(c *gin.Context) {
	hall, err := h.halls.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hall, nil)
}

// Create godoc
// @Summary Configure a new hall
// @Tags Halls
// @Accept json
// @Produce json
// @Param payload body service.ConfigureHallRequest true "Hall payload"
// @Success 201 {object} response.Envelope
// @Router /halls [post]
func (h *HallHandler) Create(c *gin.Context) {
	var req service.ConfigureHallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	hall, err := h.halls.Configure(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hall)
}

// Update godoc
// @Summary Reconfigure a hall
// @Description Changing dimensions discards the hall's seating plan.
// @Tags Halls
// @Accept json
// @Produce json
// @Param id path string true "Hall ID"
// @Param payload body service.ConfigureHallRequest true "Hall payload"
// @Success 200 {object} response.Envelope
// @Router /halls/{id} [put]
func (h *HallHandler) Update(c *gin.Context) {
	var req service.ConfigureHallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	hall, err := h.halls.Reconfigure(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hall, nil)
}
