package repositories

import (
	"context"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ScheduleRepository provides access to supplier schedules
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.SupplierSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SupplierSchedule, error)
}

type scheduleRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *gorm.DB, readOnlyDB *gorm.DB) ScheduleRepository {
	return &scheduleRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create creates a new supplier schedule
func (r *scheduleRepository) Create(ctx context.Context, schedule *models.SupplierSchedule) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(schedule).Error, "failed to create schedule")
}

// GetByID gets a schedule by ID
func (r *scheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SupplierSchedule, error) {
	var schedule models.SupplierSchedule
	err := r.readOnlyDB.WithContext(ctx).First(&schedule, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get schedule by ID")
	}
	return &schedule, nil
}
