package repositories

import (
	"context"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ArrivalRepository provides access to arrival records
type ArrivalRepository interface {
	Create(ctx context.Context, arrival *models.Arrival) error
	Save(ctx context.Context, arrival *models.Arrival) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Arrival, error)
	GetByDeliveryNote(ctx context.Context, dnNo, poNo string, kind models.ArrivalKind) (*models.Arrival, error)
	ListRegularPlannedOn(ctx context.Context, day time.Time) ([]models.Arrival, error)
	ListAdditionalScheduledOn(ctx context.Context, day time.Time) ([]models.Arrival, error)
	ListLinkedAdditional(ctx context.Context, regularID uuid.UUID) ([]models.Arrival, error)
	ListMatchCandidates(ctx context.Context, day time.Time, supplierCode string, checkout bool) ([]models.Arrival, error)
	ListRegularForPeriod(ctx context.Context, supplierCode string, from, to time.Time) ([]models.Arrival, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ArrivalStatus) error
	UpdateCompliance(ctx context.Context, id uuid.UUID, compliance models.ComplianceStatus) error
}

type arrivalRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewArrivalRepository creates a new arrival repository
func NewArrivalRepository(db *gorm.DB, readOnlyDB *gorm.DB) ArrivalRepository {
	return &arrivalRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create creates a new arrival record. A record with the same delivery-note
// number, purchase-order number and kind is rejected.
func (r *arrivalRepository) Create(ctx context.Context, arrival *models.Arrival) error {
	err := r.db.WithContext(ctx).Create(arrival).Error
	return translateArrivalCreateError(err, arrival.DeliveryNoteNo, arrival.PurchaseOrderNo)
}

// translateArrivalCreateError maps the driver's duplicated-key error, surfaced
// through gorm's TranslateError, to the repository sentinel
func translateArrivalCreateError(err error, dnNo, poNo string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(ErrDuplicateKey, "arrival %s/%s already exists", dnNo, poNo)
	}
	return errors.Wrap(err, "failed to create arrival")
}

// Save persists all fields of an existing arrival
func (r *arrivalRepository) Save(ctx context.Context, arrival *models.Arrival) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(arrival).Error, "failed to save arrival")
}

// GetByID gets an arrival by ID
func (r *arrivalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Arrival, error) {
	var arrival models.Arrival
	err := r.readOnlyDB.WithContext(ctx).First(&arrival, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get arrival by ID")
	}
	return &arrival, nil
}

// GetByDeliveryNote gets an arrival by its delivery-note and purchase-order numbers
func (r *arrivalRepository) GetByDeliveryNote(ctx context.Context, dnNo, poNo string, kind models.ArrivalKind) (*models.Arrival, error) {
	var arrival models.Arrival
	err := r.readOnlyDB.WithContext(ctx).
		Where("dn_no = ? AND po_no = ? AND kind = ?", dnNo, poNo, kind).
		First(&arrival).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get arrival by delivery note")
	}
	return &arrival, nil
}

// ListRegularPlannedOn lists regular arrivals planned for the given day
func (r *arrivalRepository) ListRegularPlannedOn(ctx context.Context, day time.Time) ([]models.Arrival, error) {
	var arrivals []models.Arrival
	err := r.readOnlyDB.WithContext(ctx).
		Where("kind = ? AND planned_date = ?", models.KindRegular, dateOnly(day)).
		Find(&arrivals).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list regular arrivals")
	}
	return arrivals, nil
}

// ListAdditionalScheduledOn lists additional arrivals whose rebooked schedule
// falls on the given day
func (r *arrivalRepository) ListAdditionalScheduledOn(ctx context.Context, day time.Time) ([]models.Arrival, error) {
	var arrivals []models.Arrival
	err := r.readOnlyDB.WithContext(ctx).
		Joins("JOIN supplier_schedules ON supplier_schedules.id = arrivals.schedule_id").
		Where("arrivals.kind = ? AND supplier_schedules.schedule_date = ?", models.KindAdditional, dateOnly(day)).
		Find(&arrivals).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list additional arrivals")
	}
	return arrivals, nil
}

// ListLinkedAdditional lists the additional arrivals back-referencing a
// regular arrival
func (r *arrivalRepository) ListLinkedAdditional(ctx context.Context, regularID uuid.UUID) ([]models.Arrival, error) {
	var arrivals []models.Arrival
	err := r.readOnlyDB.WithContext(ctx).
		Where("kind = ? AND related_arrival_id = ?", models.KindAdditional, regularID).
		Find(&arrivals).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list linked additional arrivals")
	}
	return arrivals, nil
}

// ListMatchCandidates lists arrivals for the given day and supplier that are
// still missing the security timestamp of interest. For check-in that means
// a null security check-in; for checkout a recorded check-in without a
// checkout.
func (r *arrivalRepository) ListMatchCandidates(ctx context.Context, day time.Time, supplierCode string, checkout bool) ([]models.Arrival, error) {
	q := r.readOnlyDB.WithContext(ctx).
		Where("planned_date = ? AND supplier_code = ?", dateOnly(day), supplierCode)
	if checkout {
		q = q.Where("security_checkin_at IS NOT NULL AND security_checkout_at IS NULL")
	} else {
		q = q.Where("security_checkin_at IS NULL")
	}

	var arrivals []models.Arrival
	if err := q.Find(&arrivals).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list match candidates")
	}
	return arrivals, nil
}

// ListRegularForPeriod lists a supplier's regular arrivals planned inside
// [from, to)
func (r *arrivalRepository) ListRegularForPeriod(ctx context.Context, supplierCode string, from, to time.Time) ([]models.Arrival, error) {
	var arrivals []models.Arrival
	err := r.readOnlyDB.WithContext(ctx).
		Where("kind = ? AND supplier_code = ? AND planned_date >= ? AND planned_date < ?",
			models.KindRegular, supplierCode, dateOnly(from), dateOnly(to)).
		Find(&arrivals).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list arrivals for period")
	}
	return arrivals, nil
}

// UpdateStatus sets only the punctuality status of an arrival
func (r *arrivalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ArrivalStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Arrival{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update arrival status")
	}
	if result.RowsAffected == 0 {
		return ErrUpdateFailed
	}
	return nil
}

// UpdateCompliance sets only the delivery-compliance status of an arrival
func (r *arrivalRepository) UpdateCompliance(ctx context.Context, id uuid.UUID, compliance models.ComplianceStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Arrival{}).
		Where("id = ?", id).
		Update("compliance", compliance)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update arrival compliance")
	}
	if result.RowsAffected == 0 {
		return ErrUpdateFailed
	}
	return nil
}

// dateOnly truncates a timestamp to its calendar date
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
