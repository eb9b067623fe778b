package handlers

import (
	"net/http"

	"example.com/warehouse/services/arrivals/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsHandler exposes the in-process metrics snapshot
type MetricsHandler struct {
	metrics *metrics.Metrics
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metricsCollector *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metricsCollector}
}

// RegisterRoutes registers the metrics routes
func (h *MetricsHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/metrics", h.GetMetrics)
}

// GetMetrics returns all collected metrics
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetAllMetrics())
}
