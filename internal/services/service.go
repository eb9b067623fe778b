package services

import (
	"context"
	"encoding/json"
	"time"

	"example.com/warehouse/services/arrivals/internal/cache"
	"example.com/warehouse/services/arrivals/internal/metrics"
	"example.com/warehouse/services/arrivals/internal/models"
	"example.com/warehouse/services/arrivals/internal/repositories"
	"example.com/warehouse/services/arrivals/internal/search"
	"example.com/warehouse/services/arrivals/internal/tracing"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ArrivalService owns the arrival lifecycle: delivery-note ingestion, the
// hourly status and visitor-sync jobs, the daily compliance job, and the
// monthly supplier scoring job.
type ArrivalService struct {
	db            *gorm.DB // Write database
	readOnlyDB    *gorm.DB // Read-only database
	arrivalRepo   repositories.ArrivalRepository
	scheduleRepo  repositories.ScheduleRepository
	dnRepo        repositories.DeliveryNoteRepository
	receiptRepo   repositories.GoodsReceiptRepository
	visitorRepo   repositories.VisitorLogRepository
	perfRepo      repositories.PerformanceRepository
	supplierNames *cache.SupplierNameCache
	elasticClient *search.ElasticClient
	metrics       *metrics.Metrics
	tracer        tracing.Tracer
}

// NewArrivalService creates a new arrival service
func NewArrivalService(
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *ArrivalService {
	supplierRepo := repositories.NewSupplierRepository(readOnlyDB)

	return &ArrivalService{
		db:            db,
		readOnlyDB:    readOnlyDB,
		arrivalRepo:   repositories.NewArrivalRepository(db, readOnlyDB),
		scheduleRepo:  repositories.NewScheduleRepository(db, readOnlyDB),
		dnRepo:        repositories.NewDeliveryNoteRepository(db, readOnlyDB),
		receiptRepo:   repositories.NewGoodsReceiptRepository(db, readOnlyDB),
		visitorRepo:   repositories.NewVisitorLogRepository(readOnlyDB),
		perfRepo:      repositories.NewPerformanceRepository(db, readOnlyDB),
		supplierNames: cache.NewSupplierNameCache(redisCache, supplierRepo, 0),
		elasticClient: elasticClient,
		metrics:       metricsCollector,
		tracer:        tracer,
	}
}

// scheduleFor loads the schedule an arrival references, if any
func (s *ArrivalService) scheduleFor(ctx context.Context, arrival *models.Arrival) (*models.SupplierSchedule, error) {
	if arrival.ScheduleID == nil {
		return nil, nil
	}
	sched, err := s.scheduleRepo.GetByID(ctx, *arrival.ScheduleID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return sched, err
}

// DeliveryNotePayload is the delivery-note feed message from the SCM system
type DeliveryNotePayload struct {
	DNNo         string                    `json:"dn_no"`
	PONo         string                    `json:"po_no"`
	SupplierCode string                    `json:"supplier_code"`
	PlannedDate  string                    `json:"planned_date"`
	PlannedTime  string                    `json:"planned_time"`
	DriverName   string                    `json:"driver_name"`
	VehiclePlate string                    `json:"vehicle_plate"`
	Status       string                    `json:"status"`
	Items        []DeliveryNoteItemPayload `json:"items"`
}

// DeliveryNoteItemPayload is one line item on the feed message
type DeliveryNoteItemPayload struct {
	PartNo   string  `json:"part_no"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// IngestDeliveryNotes writes a batch of delivery notes and their arrival
// records in a single transaction. The whole batch rolls back on any
// failure; a partial import is never committed.
func (s *ArrivalService) IngestDeliveryNotes(ctx context.Context, batch []DeliveryNotePayload) error {
	txn := s.tracer.StartTransaction("ingest-delivery-notes")
	defer s.tracer.EndTransaction(txn)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range batch {
			if err := s.ingestOne(ctx, tx, &batch[i]); err != nil {
				return errors.Wrapf(err, "failed to ingest delivery note %s", batch[i].DNNo)
			}
		}
		return nil
	})
	if err != nil {
		s.tracer.RecordError(txn, err)
		s.metrics.IncrementCounter("ingest.failed")
		return err
	}

	s.metrics.IncrementCounterBy("ingest.notes", int64(len(batch)))
	log.Info().Int("notes", len(batch)).Msg("Delivery note batch ingested")
	return nil
}

func (s *ArrivalService) ingestOne(ctx context.Context, tx *gorm.DB, payload *DeliveryNotePayload) error {
	var plannedDate *time.Time
	if payload.PlannedDate != "" {
		d, err := time.ParseInLocation("2006-01-02", payload.PlannedDate, time.Local)
		if err != nil {
			return errors.Wrapf(err, "invalid planned date %q", payload.PlannedDate)
		}
		plannedDate = &d
	}

	var note models.DeliveryNote
	err := tx.Where("dn_no = ?", payload.DNNo).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		note = models.DeliveryNote{ID: uuid.New(), DNNo: payload.DNNo}
	} else if err != nil {
		return errors.Wrap(err, "failed to look up delivery note")
	}

	note.PONo = payload.PONo
	note.SupplierCode = payload.SupplierCode
	note.PlannedDate = plannedDate
	note.PlannedTime = payload.PlannedTime
	note.DriverName = payload.DriverName
	note.VehiclePlate = payload.VehiclePlate
	note.Status = payload.Status
	if err := tx.Save(&note).Error; err != nil {
		return errors.Wrap(err, "failed to save delivery note")
	}

	// Line items are replaced wholesale on every feed
	if err := tx.Where("delivery_note_id = ?", note.ID).Delete(&models.DeliveryNoteItem{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear delivery note items")
	}
	for _, item := range payload.Items {
		row := models.DeliveryNoteItem{
			ID:             uuid.New(),
			DeliveryNoteID: note.ID,
			DNNo:           note.DNNo,
			PartNo:         item.PartNo,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
		}
		if err := tx.Create(&row).Error; err != nil {
			return errors.Wrap(err, "failed to create delivery note item")
		}
	}

	// One regular arrival per delivery note. Existing arrivals keep their
	// lifecycle fields; only the planning data is refreshed.
	var arrival models.Arrival
	err = tx.Where("dn_no = ? AND po_no = ? AND kind = ?", payload.DNNo, payload.PONo, models.KindRegular).
		First(&arrival).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		arrival = models.Arrival{
			ID:              uuid.New(),
			DeliveryNoteNo:  payload.DNNo,
			PurchaseOrderNo: payload.PONo,
			Kind:            models.KindRegular,
			Status:          models.StatusPending,
			Compliance:      models.CompliancePending,
		}
	} else if err != nil {
		return errors.Wrap(err, "failed to look up arrival")
	}

	arrival.PlannedDate = plannedDate
	arrival.PlannedTime = payload.PlannedTime
	arrival.SupplierCode = payload.SupplierCode
	arrival.DriverName = payload.DriverName
	arrival.VehiclePlate = payload.VehiclePlate
	if name, nameErr := s.supplierNames.Get(ctx, payload.SupplierCode); nameErr == nil {
		arrival.SupplierName = name
	}

	return errors.Wrap(tx.Save(&arrival).Error, "failed to save arrival")
}

// ProcessDeliveryNoteMessage handles one delivery-note message from the
// Service Bus queue
func (s *ArrivalService) ProcessDeliveryNoteMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error {
	var payload DeliveryNotePayload
	if err := json.Unmarshal(message.Body, &payload); err != nil {
		return errors.Wrap(err, "failed to unmarshal delivery note message")
	}
	if payload.DNNo == "" || payload.PONo == "" {
		return errors.New("delivery note message missing dn_no or po_no")
	}

	return s.IngestDeliveryNotes(ctx, []DeliveryNotePayload{payload})
}

// CreateCatchUpArrival rebooks a missed regular delivery: it creates the
// one-off additional schedule for the new slot and the additional arrival
// carrying the original delivery-note and purchase-order numbers with a
// back-reference to the regular record.
func (s *ArrivalService) CreateCatchUpArrival(ctx context.Context, regularID uuid.UUID, slotDate time.Time, slotTime string) (*models.Arrival, error) {
	regular, err := s.arrivalRepo.GetByID(ctx, regularID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load regular arrival")
	}
	if regular.Kind != models.KindRegular {
		return nil, errors.New("catch-up slots can only be booked against regular arrivals")
	}

	day := time.Date(slotDate.Year(), slotDate.Month(), slotDate.Day(), 0, 0, 0, 0, slotDate.Location())
	sched := &models.SupplierSchedule{
		ID:           uuid.New(),
		SupplierCode: regular.SupplierCode,
		Kind:         models.KindAdditional,
		ScheduleDate: &day,
		ArrivalTime:  slotTime,
	}
	if err := s.scheduleRepo.Create(ctx, sched); err != nil {
		return nil, err
	}

	additional := &models.Arrival{
		ID:               uuid.New(),
		DeliveryNoteNo:   regular.DeliveryNoteNo,
		PurchaseOrderNo:  regular.PurchaseOrderNo,
		Kind:             models.KindAdditional,
		PlannedDate:      &day,
		PlannedTime:      slotTime,
		SupplierCode:     regular.SupplierCode,
		SupplierName:     regular.SupplierName,
		DriverName:       regular.DriverName,
		VehiclePlate:     regular.VehiclePlate,
		ScheduleID:       &sched.ID,
		RelatedArrivalID: &regular.ID,
		Status:           models.StatusPending,
		Compliance:       models.CompliancePending,
	}
	if err := s.arrivalRepo.Create(ctx, additional); err != nil {
		return nil, err
	}

	log.Info().
		Str("arrival_id", additional.ID.String()).
		Str("related_arrival_id", regular.ID.String()).
		Str("dn_no", regular.DeliveryNoteNo).
		Msg("Catch-up arrival booked")

	return additional, nil
}

// RecordGoodsReceipt stores one scanned receipt line. When the cumulative
// scanned quantity falls short of the delivery-note quantity the arrival is
// force-marked incomplete; the compliance job treats that like a no-show for
// the catch-up rule.
func (s *ArrivalService) RecordGoodsReceipt(ctx context.Context, receipt *models.GoodsReceipt, closeOut bool) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	if receipt.ScannedAt.IsZero() {
		receipt.ScannedAt = time.Now()
	}
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return err
	}

	if !closeOut {
		return nil
	}

	note, err := s.dnRepo.GetByDNNo(ctx, receipt.DNNo)
	if err != nil {
		return errors.Wrap(err, "failed to load delivery note for receipt")
	}

	var expected float64
	for _, item := range note.Items {
		expected += item.Quantity
	}

	scanned, err := s.receiptRepo.TotalScannedForDN(ctx, receipt.DNNo)
	if err != nil {
		return err
	}

	if scanned >= expected {
		return nil
	}

	arrival, err := s.arrivalRepo.GetByDeliveryNote(ctx, note.DNNo, note.PONo, models.KindRegular)
	if err != nil {
		return errors.Wrap(err, "failed to load arrival for receipt close-out")
	}

	log.Info().
		Str("dn_no", note.DNNo).
		Float64("expected", expected).
		Float64("scanned", scanned).
		Msg("Scanned quantity short of delivery note, marking arrival incomplete")

	return s.arrivalRepo.UpdateCompliance(ctx, arrival.ID, models.ComplianceIncomplete)
}
