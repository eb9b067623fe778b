package handlers

import (
	"net/http"
	"time"

	"example.com/warehouse/services/arrivals/internal/services"
	"example.com/warehouse/services/arrivals/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// JobsHandler exposes on-demand triggers for the batch jobs
type JobsHandler struct {
	arrivalService *services.ArrivalService
	tracer         tracing.Tracer
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(arrivalService *services.ArrivalService, tracer tracing.Tracer) *JobsHandler {
	return &JobsHandler{
		arrivalService: arrivalService,
		tracer:         tracer,
	}
}

// RegisterRoutes registers the job trigger routes
func (h *JobsHandler) RegisterRoutes(router *gin.Engine) {
	jobs := router.Group("/jobs")
	{
		jobs.POST("/arrival-status", h.RunArrivalStatus)
		jobs.POST("/delivery-compliance", h.RunDeliveryCompliance)
		jobs.POST("/visitor-sync", h.RunVisitorSync)
		jobs.POST("/supplier-scoring", h.RunSupplierScoring)
	}
}

// targetDay parses the optional date query parameter, defaulting to today
func targetDay(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return day, true
}

// RunArrivalStatus triggers one arrival status classification run
func (h *JobsHandler) RunArrivalStatus(c *gin.Context) {
	day, ok := targetDay(c)
	if !ok {
		return
	}

	summary, err := h.arrivalService.RunArrivalStatus(c.Request.Context(), day)
	if err != nil {
		log.Error().Err(err).Msg("Arrival status run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RunDeliveryCompliance triggers one delivery compliance run
func (h *JobsHandler) RunDeliveryCompliance(c *gin.Context) {
	day, ok := targetDay(c)
	if !ok {
		return
	}

	summary, err := h.arrivalService.RunDeliveryCompliance(c.Request.Context(), day)
	if err != nil {
		log.Error().Err(err).Msg("Delivery compliance run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RunVisitorSync triggers one visitor reconciliation run for the requested
// direction (checkin or checkout)
func (h *JobsHandler) RunVisitorSync(c *gin.Context) {
	day, ok := targetDay(c)
	if !ok {
		return
	}

	direction := services.SyncCheckin
	if c.Query("direction") == string(services.SyncCheckout) {
		direction = services.SyncCheckout
	}

	summary, err := h.arrivalService.RunVisitorSync(c.Request.Context(), day, direction)
	if err != nil {
		log.Error().Err(err).Msg("Visitor sync run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RunSupplierScoring triggers one supplier scoring run for the requested
// period, defaulting to the previous month
func (h *JobsHandler) RunSupplierScoring(c *gin.Context) {
	now := time.Now()
	previous := now.AddDate(0, -1, 0)
	month := int(previous.Month())
	year := previous.Year()

	var query struct {
		Month int `form:"month"`
		Year  int `form:"year"`
	}
	if err := c.ShouldBindQuery(&query); err == nil {
		if query.Month >= 1 && query.Month <= 12 {
			month = query.Month
		}
		if query.Year > 0 {
			year = query.Year
		}
	}

	summary, err := h.arrivalService.RunSupplierScoring(c.Request.Context(), time.Month(month), year)
	if err != nil {
		log.Error().Err(err).Msg("Supplier scoring run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
