package repositories

import (
	"context"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// VisitorLogRepository provides read-only access to the external checkpoint
// system's visit rows
type VisitorLogRepository interface {
	ListCheckinsOn(ctx context.Context, day time.Time) ([]models.VisitorLog, error)
	ListCheckoutsOn(ctx context.Context, day time.Time) ([]models.VisitorLog, error)
}

type visitorLogRepository struct {
	readOnlyDB *gorm.DB
}

// NewVisitorLogRepository creates a new visitor log repository
func NewVisitorLogRepository(readOnlyDB *gorm.DB) VisitorLogRepository {
	return &visitorLogRepository{readOnlyDB: readOnlyDB}
}

// ListCheckinsOn lists the day's visits that have a recorded check-in
func (r *visitorLogRepository) ListCheckinsOn(ctx context.Context, day time.Time) ([]models.VisitorLog, error) {
	var logs []models.VisitorLog
	err := r.readOnlyDB.WithContext(ctx).
		Where("visit_date = ? AND checkin_at IS NOT NULL", dateOnly(day)).
		Find(&logs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list visitor check-ins")
	}
	return logs, nil
}

// ListCheckoutsOn lists the day's visits that have a recorded checkout
func (r *visitorLogRepository) ListCheckoutsOn(ctx context.Context, day time.Time) ([]models.VisitorLog, error) {
	var logs []models.VisitorLog
	err := r.readOnlyDB.WithContext(ctx).
		Where("visit_date = ? AND checkout_at IS NOT NULL", dateOnly(day)).
		Find(&logs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list visitor checkouts")
	}
	return logs, nil
}
