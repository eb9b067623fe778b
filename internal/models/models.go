package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ArrivalKind distinguishes an originally scheduled delivery from a rebooked
// catch-up delivery.
type ArrivalKind string

const (
	// KindRegular is a delivery on the supplier's recurring schedule
	KindRegular ArrivalKind = "regular"
	// KindAdditional is a one-off rebooked slot for a delivery that missed
	// its regular schedule
	KindAdditional ArrivalKind = "additional"
)

// ArrivalStatus is the punctuality classification of a single arrival.
// It is owned by the hourly status job.
type ArrivalStatus string

const (
	StatusPending   ArrivalStatus = "pending"
	StatusOnTime    ArrivalStatus = "on_time"
	StatusDelay     ArrivalStatus = "delay"
	StatusAdvance   ArrivalStatus = "advance"
	StatusCancelled ArrivalStatus = "cancelled"
)

// ComplianceStatus is the delivery-compliance classification of an arrival.
// It is owned by the daily compliance job and is independent of ArrivalStatus.
type ComplianceStatus string

const (
	CompliancePending      ComplianceStatus = "pending"
	ComplianceOnCommitment ComplianceStatus = "on_commitment"
	ComplianceDelay        ComplianceStatus = "delay"
	ComplianceNoShow       ComplianceStatus = "no_show"
	ComplianceIncomplete   ComplianceStatus = "incomplete"
	CompliancePartial      ComplianceStatus = "partial"
)

// PerformanceGrade is the letter grade assigned from the final score
type PerformanceGrade string

const (
	GradeA PerformanceGrade = "A"
	GradeB PerformanceGrade = "B"
	GradeC PerformanceGrade = "C"
	GradeD PerformanceGrade = "D"
)

// PerformanceCategory is the ranking band assigned from the final score.
// Its thresholds differ from the grade thresholds; both are kept.
type PerformanceCategory string

const (
	CategoryBest   PerformanceCategory = "best"
	CategoryMedium PerformanceCategory = "medium"
	CategoryWorst  PerformanceCategory = "worst"
)

// Supplier represents a supplier master record
type Supplier struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Code      string         `gorm:"not null;uniqueIndex" json:"code"`
	Name      string         `gorm:"not null" json:"name"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
}

// SupplierSchedule represents a supplier's expected arrival pattern. A
// regular schedule recurs on a day of week; an additional schedule is a
// one-off slot created when a missed delivery is rebooked.
type SupplierSchedule struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	SupplierCode string         `gorm:"not null;index" json:"supplier_code"`
	Kind         ArrivalKind    `gorm:"not null" json:"kind"`
	DayOfWeek    *string        `json:"day_of_week"`
	ScheduleDate *time.Time     `gorm:"type:date" json:"schedule_date"`
	ArrivalTime  string         `json:"arrival_time"`
}

// Arrival represents one delivery-note occurrence at the warehouse, from
// gate check-in through delivery verification.
//
// Status and Compliance are two independent state machines on the same row:
// the hourly status job owns Status, the daily compliance job owns
// Compliance. Neither job writes the other's field.
type Arrival struct {
	ID                   uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt            time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt    `gorm:"index" json:"-"`
	DeliveryNoteNo       string            `gorm:"column:dn_no;not null;uniqueIndex:idx_arrivals_dn_po_kind" json:"dn_no"`
	PurchaseOrderNo      string            `gorm:"column:po_no;not null;uniqueIndex:idx_arrivals_dn_po_kind" json:"po_no"`
	Kind                 ArrivalKind       `gorm:"not null;uniqueIndex:idx_arrivals_dn_po_kind" json:"kind"`
	PlannedDate          *time.Time        `gorm:"type:date;index" json:"planned_date"`
	PlannedTime          string            `json:"planned_time"`
	SupplierCode         string            `gorm:"not null;index" json:"supplier_code"`
	SupplierName         string            `json:"supplier_name"`
	DriverName           string            `json:"driver_name"`
	VehiclePlate         string            `json:"vehicle_plate"`
	ScheduleID           *uuid.UUID        `gorm:"type:uuid" json:"schedule_id"`
	Schedule             *SupplierSchedule `gorm:"foreignKey:ScheduleID" json:"-"`
	RelatedArrivalID     *uuid.UUID        `gorm:"type:uuid;index" json:"related_arrival_id"`
	SecurityCheckinAt    *time.Time        `json:"security_checkin_at"`
	SecurityCheckoutAt   *time.Time        `json:"security_checkout_at"`
	SecurityDurationMin  *int64            `json:"security_duration_min"`
	WarehouseCheckinAt   *time.Time        `json:"warehouse_checkin_at"`
	WarehouseCheckoutAt  *time.Time        `json:"warehouse_checkout_at"`
	WarehouseDurationMin *int64            `json:"warehouse_duration_min"`
	Status               ArrivalStatus     `gorm:"not null;default:'pending'" json:"status"`
	Compliance           ComplianceStatus  `gorm:"not null;default:'pending'" json:"compliance"`
	CompletedAt          *time.Time        `json:"completed_at"`
	VisitorRecordID      *string           `json:"visitor_record_id"`
}

// DeliveryNote mirrors a delivery-note header from the external SCM system.
// Written only by the ingestion transaction, read by the scoring job.
type DeliveryNote struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt     `gorm:"index" json:"-"`
	DNNo         string             `gorm:"column:dn_no;not null;uniqueIndex" json:"dn_no"`
	PONo         string             `gorm:"column:po_no;not null" json:"po_no"`
	SupplierCode string             `gorm:"not null;index" json:"supplier_code"`
	PlannedDate  *time.Time         `gorm:"type:date;index" json:"planned_date"`
	PlannedTime  string             `json:"planned_time"`
	DriverName   string             `json:"driver_name"`
	VehiclePlate string             `json:"vehicle_plate"`
	Status       string             `json:"status"`
	Items        []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID" json:"items"`
}

// DeliveryNoteItem is one line item on a delivery note
type DeliveryNoteItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	DeliveryNoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"delivery_note_id"`
	DNNo           string    `gorm:"column:dn_no;not null;index" json:"dn_no"`
	PartNo         string    `gorm:"not null" json:"part_no"`
	Quantity       float64   `gorm:"not null" json:"quantity"`
	Unit           string    `json:"unit"`
}

// GoodsReceipt records the scanned quantity for one delivery-note line,
// produced by the item-verification subsystem.
type GoodsReceipt struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	DNNo       string    `gorm:"column:dn_no;not null;index" json:"dn_no"`
	PartNo     string    `gorm:"not null" json:"part_no"`
	ScannedQty float64   `gorm:"not null" json:"scanned_qty"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// VisitorLog mirrors one security-gate visit from the external checkpoint
// system. Rows are never mutated by this service.
type VisitorLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RecordID     string     `gorm:"not null;index" json:"record_id"`
	VisitDate    time.Time  `gorm:"type:date;index" json:"visit_date"`
	SupplierCode string     `gorm:"index" json:"supplier_code"`
	DriverName   string     `json:"driver_name"`
	VehiclePlate string     `json:"vehicle_plate"`
	PlannedTime  string     `json:"planned_time"`
	CheckinAt    *time.Time `json:"checkin_at"`
	CheckoutAt   *time.Time `json:"checkout_at"`
}

// SupplierPerformance is one supplier's score for one month. The row is
// recomputed and overwritten in full on every scoring run.
type SupplierPerformance struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	SupplierCode       string              `gorm:"not null;uniqueIndex:idx_performance_period" json:"supplier_code"`
	SupplierName       string              `json:"supplier_name"`
	Month              int                 `gorm:"not null;uniqueIndex:idx_performance_period" json:"month"`
	Year               int                 `gorm:"not null;uniqueIndex:idx_performance_period" json:"year"`
	TotalDeliveries    int                 `gorm:"not null;default:0" json:"total_deliveries"`
	OnTimeDeliveries   int                 `gorm:"not null;default:0" json:"on_time_deliveries"`
	DelayDays          int                 `gorm:"not null;default:0" json:"delay_days"`
	DNQuantity         float64             `gorm:"not null;default:0" json:"dn_quantity"`
	ReceivedQuantity   float64             `gorm:"not null;default:0" json:"received_quantity"`
	FulfillmentPercent float64             `gorm:"not null;default:0" json:"fulfillment_percent"`
	FulfillmentIndex   int                 `gorm:"not null;default:0" json:"fulfillment_index"`
	DeliveryIndex      int                 `gorm:"not null;default:0" json:"delivery_index"`
	TotalIndex         int                 `gorm:"not null;default:0" json:"total_index"`
	FinalScore         int                 `gorm:"not null;default:0" json:"final_score"`
	Grade              PerformanceGrade    `json:"grade"`
	Rank               int                 `gorm:"not null;default:0" json:"rank"`
	Category           PerformanceCategory `json:"category"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	// Apply all migrations
	err := db.AutoMigrate(
		&Supplier{},
		&SupplierSchedule{},
		&Arrival{},
		&DeliveryNote{},
		&DeliveryNoteItem{},
		&GoodsReceipt{},
		&VisitorLog{},
		&SupplierPerformance{},
	)

	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
