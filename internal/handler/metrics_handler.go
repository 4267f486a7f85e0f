package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/service"
)

// MetricsHandler serves the Prometheus scrape endpoint and the
// liveness/readiness probes.
type MetricsHandler struct {
	metrics *service.MetricsService
}

func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Prometheus exposes the metrics registry.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health answers probes with a static OK body.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
