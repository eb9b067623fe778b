package handlers

import (
	"net/http"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"
	"example.com/warehouse/services/arrivals/internal/services"
	"example.com/warehouse/services/arrivals/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ArrivalsHandler handles arrival lifecycle requests
type ArrivalsHandler struct {
	arrivalService *services.ArrivalService
	tracer         tracing.Tracer
}

// NewArrivalsHandler creates a new arrivals handler
func NewArrivalsHandler(arrivalService *services.ArrivalService, tracer tracing.Tracer) *ArrivalsHandler {
	return &ArrivalsHandler{
		arrivalService: arrivalService,
		tracer:         tracer,
	}
}

// RegisterRoutes registers the arrival routes
func (h *ArrivalsHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/arrivals/:id/catch-up", h.BookCatchUp)
	router.POST("/receipts", h.RecordReceipt)
	router.POST("/delivery-notes", h.IngestDeliveryNotes)
}

// CatchUpRequest books a rebooked slot for a missed regular delivery
type CatchUpRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// BookCatchUp creates the additional schedule and arrival for a missed
// delivery
func (h *ArrivalsHandler) BookCatchUp(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-book-catch-up")
	defer h.tracer.EndTransaction(txn)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid arrival id"})
		return
	}

	var req CatchUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	arrival, err := h.arrivalService.CreateCatchUpArrival(c.Request.Context(), id, day, req.Time)
	if err != nil {
		log.Error().Err(err).Str("arrival_id", id.String()).Msg("Failed to book catch-up arrival")
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, arrival)
}

// ReceiptRequest records one scanned receipt line
type ReceiptRequest struct {
	DNNo       string  `json:"dn_no" binding:"required"`
	PartNo     string  `json:"part_no" binding:"required"`
	ScannedQty float64 `json:"scanned_qty"`
	CloseOut   bool    `json:"close_out"`
}

// RecordReceipt stores a scanned quantity; closing out a short delivery
// marks its arrival incomplete
func (h *ArrivalsHandler) RecordReceipt(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt := &models.GoodsReceipt{
		DNNo:       req.DNNo,
		PartNo:     req.PartNo,
		ScannedQty: req.ScannedQty,
	}
	if err := h.arrivalService.RecordGoodsReceipt(c.Request.Context(), receipt, req.CloseOut); err != nil {
		log.Error().Err(err).Str("dn_no", req.DNNo).Msg("Failed to record receipt")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// IngestDeliveryNotes imports a batch of delivery notes in one transaction
func (h *ArrivalsHandler) IngestDeliveryNotes(c *gin.Context) {
	var batch []services.DeliveryNotePayload
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.arrivalService.IngestDeliveryNotes(c.Request.Context(), batch); err != nil {
		log.Error().Err(err).Msg("Delivery note ingestion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingested": len(batch)})
}
