package repositories

import (
	"context"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GoodsReceiptRepository provides access to scanned receipt quantities
type GoodsReceiptRepository interface {
	Create(ctx context.Context, receipt *models.GoodsReceipt) error
	TotalScannedForDN(ctx context.Context, dnNo string) (float64, error)
	TotalReceivedForSupplier(ctx context.Context, supplierCode string, from, to time.Time) (float64, error)
}

type goodsReceiptRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewGoodsReceiptRepository creates a new goods receipt repository
func NewGoodsReceiptRepository(db *gorm.DB, readOnlyDB *gorm.DB) GoodsReceiptRepository {
	return &goodsReceiptRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create records a scanned receipt line
func (r *goodsReceiptRepository) Create(ctx context.Context, receipt *models.GoodsReceipt) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(receipt).Error, "failed to create goods receipt")
}

// TotalScannedForDN sums the scanned quantity for one delivery note
func (r *goodsReceiptRepository) TotalScannedForDN(ctx context.Context, dnNo string) (float64, error) {
	var total float64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.GoodsReceipt{}).
		Where("dn_no = ?", dnNo).
		Select("COALESCE(SUM(scanned_qty), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum scanned quantity")
	}
	return total, nil
}

// TotalReceivedForSupplier sums the scanned quantities for a supplier's
// delivery notes planned inside [from, to), joined through the delivery-note
// number
func (r *goodsReceiptRepository) TotalReceivedForSupplier(ctx context.Context, supplierCode string, from, to time.Time) (float64, error) {
	var total float64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.GoodsReceipt{}).
		Joins("JOIN delivery_notes ON delivery_notes.dn_no = goods_receipts.dn_no").
		Where("delivery_notes.supplier_code = ? AND delivery_notes.planned_date >= ? AND delivery_notes.planned_date < ?",
			supplierCode, from, to).
		Select("COALESCE(SUM(goods_receipts.scanned_qty), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum received quantity")
	}
	return total, nil
}
