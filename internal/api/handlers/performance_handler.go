package handlers

import (
	"net/http"
	"strconv"
	"time"

	"example.com/warehouse/services/arrivals/internal/services"

	"github.com/gin-gonic/gin"
)

// PerformanceHandler serves supplier performance rankings
type PerformanceHandler struct {
	arrivalService *services.ArrivalService
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(arrivalService *services.ArrivalService) *PerformanceHandler {
	return &PerformanceHandler{arrivalService: arrivalService}
}

// RegisterRoutes registers the performance routes
func (h *PerformanceHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/performance", h.ListPerformance)
}

// ListPerformance lists a period's supplier scores ordered by rank
func (h *PerformanceHandler) ListPerformance(c *gin.Context) {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}
		month = m
	}
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = y
	}

	records, err := h.arrivalService.ListPerformance(c.Request.Context(), month, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}
