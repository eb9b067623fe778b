package repositories

import (
	"context"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SupplierRepository provides access to supplier master data
type SupplierRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Supplier, error)
}

type supplierRepository struct {
	readOnlyDB *gorm.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(readOnlyDB *gorm.DB) SupplierRepository {
	return &supplierRepository{readOnlyDB: readOnlyDB}
}

// GetByCode gets a supplier by its code
func (r *supplierRepository) GetByCode(ctx context.Context, code string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.readOnlyDB.WithContext(ctx).Where("code = ?", code).First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get supplier by code")
	}
	return &supplier, nil
}
