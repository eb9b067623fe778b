package repositories

import (
	"context"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DeliveryNoteRepository provides read access to the mirrored SCM
// delivery-note data
type DeliveryNoteRepository interface {
	GetByDNNo(ctx context.Context, dnNo string) (*models.DeliveryNote, error)
	DistinctSupplierCodes(ctx context.Context, from, to time.Time) ([]string, error)
	TotalQuantity(ctx context.Context, supplierCode string, from, to time.Time) (float64, error)
}

type deliveryNoteRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewDeliveryNoteRepository creates a new delivery note repository
func NewDeliveryNoteRepository(db *gorm.DB, readOnlyDB *gorm.DB) DeliveryNoteRepository {
	return &deliveryNoteRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// GetByDNNo gets a delivery note with its items by delivery-note number
func (r *deliveryNoteRepository) GetByDNNo(ctx context.Context, dnNo string) (*models.DeliveryNote, error) {
	var note models.DeliveryNote
	err := r.readOnlyDB.WithContext(ctx).
		Preload("Items").
		Where("dn_no = ?", dnNo).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get delivery note")
	}
	return &note, nil
}

// DistinctSupplierCodes lists the suppliers with delivery notes planned
// inside [from, to)
func (r *deliveryNoteRepository) DistinctSupplierCodes(ctx context.Context, from, to time.Time) ([]string, error) {
	var codes []string
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.DeliveryNote{}).
		Where("planned_date >= ? AND planned_date < ?", from, to).
		Distinct("supplier_code").
		Pluck("supplier_code", &codes).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list supplier codes")
	}
	return codes, nil
}

// TotalQuantity sums the delivery-note quantities for a supplier inside
// [from, to)
func (r *deliveryNoteRepository) TotalQuantity(ctx context.Context, supplierCode string, from, to time.Time) (float64, error) {
	var total float64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.DeliveryNoteItem{}).
		Joins("JOIN delivery_notes ON delivery_notes.id = delivery_note_items.delivery_note_id").
		Where("delivery_notes.supplier_code = ? AND delivery_notes.planned_date >= ? AND delivery_notes.planned_date < ?",
			supplierCode, from, to).
		Select("COALESCE(SUM(delivery_note_items.quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum delivery note quantity")
	}
	return total, nil
}
