package repositories

import (
	"context"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PerformanceRepository provides access to monthly supplier performance
// records
type PerformanceRepository interface {
	Upsert(ctx context.Context, record *models.SupplierPerformance) error
	Save(ctx context.Context, record *models.SupplierPerformance) error
	ListByPeriodOrdered(ctx context.Context, month, year int) ([]models.SupplierPerformance, error)
}

type performanceRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewPerformanceRepository creates a new performance repository
func NewPerformanceRepository(db *gorm.DB, readOnlyDB *gorm.DB) PerformanceRepository {
	return &performanceRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Upsert overwrites the record for (supplier, month, year), creating it if it
// does not exist. Every scoring run replaces the computed fields in full.
func (r *performanceRepository) Upsert(ctx context.Context, record *models.SupplierPerformance) error {
	var existing models.SupplierPerformance
	err := r.db.WithContext(ctx).
		Where("supplier_code = ? AND month = ? AND year = ?", record.SupplierCode, record.Month, record.Year).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		return errors.Wrap(r.db.WithContext(ctx).Create(record).Error, "failed to create performance record")
	}
	if err != nil {
		return errors.Wrap(err, "failed to look up performance record")
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	return errors.Wrap(r.db.WithContext(ctx).Save(record).Error, "failed to update performance record")
}

// Save persists all fields of an existing performance record
func (r *performanceRepository) Save(ctx context.Context, record *models.SupplierPerformance) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(record).Error, "failed to save performance record")
}

// ListByPeriodOrdered lists a period's records ordered by final score,
// highest first. Ties keep the stored order, so re-ranking a period is
// stable.
func (r *performanceRepository) ListByPeriodOrdered(ctx context.Context, month, year int) ([]models.SupplierPerformance, error) {
	var records []models.SupplierPerformance
	err := r.readOnlyDB.WithContext(ctx).
		Where("month = ? AND year = ?", month, year).
		Order("final_score DESC, created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list performance records")
	}
	return records, nil
}
