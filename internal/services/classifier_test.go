package services

import (
	"context"
	"testing"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func classifiableArrival(checkin *time.Time) *models.Arrival {
	return &models.Arrival{
		ID:                 uuid.New(),
		Kind:               models.KindRegular,
		PlannedDate:        datePtr(2025, time.March, 10),
		PlannedTime:        "08:00",
		WarehouseCheckinAt: checkin,
		Status:             models.StatusPending,
	}
}

func TestClassifyArrivalBoundaries(t *testing.T) {
	committed := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.Local)

	cases := []struct {
		name    string
		checkin time.Time
		want    models.ArrivalStatus
	}{
		{"exactly on commitment", committed, models.StatusOnTime},
		{"last second inside window", committed.Add(59*time.Minute + 59*time.Second), models.StatusOnTime},
		{"exactly one hour late", committed.Add(time.Hour), models.StatusDelay},
		{"well past the window", committed.Add(3 * time.Hour), models.StatusDelay},
		{"one second early", committed.Add(-time.Second), models.StatusAdvance},
		{"previous day", committed.Add(-24 * time.Hour), models.StatusAdvance},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyArrival(classifiableArrival(timePtr(tc.checkin)), nil)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyArrivalPendingWithoutWarehouseCheckin(t *testing.T) {
	arrival := classifiableArrival(nil)
	// A security gate check-in alone does not count as arriving
	arrival.SecurityCheckinAt = timePtr(time.Date(2025, time.March, 10, 7, 50, 0, 0, time.Local))

	require.Equal(t, models.StatusPending, ClassifyArrival(arrival, nil))
}

func TestClassifyArrivalPendingWithoutCommitment(t *testing.T) {
	arrival := classifiableArrival(timePtr(time.Date(2025, time.March, 10, 8, 10, 0, 0, time.Local)))
	arrival.PlannedTime = ""

	require.Equal(t, models.StatusPending, ClassifyArrival(arrival, nil))
}

func TestRunArrivalStatusWritesOnlyChangedRecords(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)

	onTime := classifiableArrival(timePtr(time.Date(2025, time.March, 10, 8, 20, 0, 0, time.Local)))
	alreadyDelayed := classifiableArrival(timePtr(time.Date(2025, time.March, 10, 10, 0, 0, 0, time.Local)))
	alreadyDelayed.Status = models.StatusDelay
	cancelled := classifiableArrival(nil)
	cancelled.Status = models.StatusCancelled

	mocks.arrivals.On("ListRegularPlannedOn", mock.Anything, day).
		Return([]models.Arrival{*onTime, *alreadyDelayed, *cancelled}, nil)
	mocks.arrivals.On("ListAdditionalScheduledOn", mock.Anything, day).
		Return([]models.Arrival{}, nil)
	mocks.arrivals.On("UpdateStatus", mock.Anything, onTime.ID, models.StatusOnTime).Return(nil)

	summary, err := service.RunArrivalStatus(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Processed)
	require.Equal(t, 1, summary.OnTime)
	require.Equal(t, 0, summary.Delayed)
	require.Equal(t, 0, summary.Errors)

	// The already-correct record and the cancelled record produce no writes
	mocks.arrivals.AssertNumberOfCalls(t, "UpdateStatus", 1)
	mocks.arrivals.AssertExpectations(t)
}

func TestRunArrivalStatusSecondRunIsIdempotent(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)

	settled := classifiableArrival(timePtr(time.Date(2025, time.March, 10, 8, 20, 0, 0, time.Local)))
	settled.Status = models.StatusOnTime

	mocks.arrivals.On("ListRegularPlannedOn", mock.Anything, day).
		Return([]models.Arrival{*settled}, nil)
	mocks.arrivals.On("ListAdditionalScheduledOn", mock.Anything, day).
		Return([]models.Arrival{}, nil)

	summary, err := service.RunArrivalStatus(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.Equal(t, 0, summary.OnTime)

	mocks.arrivals.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunArrivalStatusUsesAdditionalScheduleSlot(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 12, 16, 0, 0, 0, time.Local)

	schedID := uuid.New()
	additional := &models.Arrival{
		ID:                 uuid.New(),
		Kind:               models.KindAdditional,
		PlannedDate:        datePtr(2025, time.March, 10),
		PlannedTime:        "08:00",
		ScheduleID:         &schedID,
		WarehouseCheckinAt: timePtr(time.Date(2025, time.March, 12, 14, 10, 0, 0, time.Local)),
		Status:             models.StatusPending,
	}

	mocks.arrivals.On("ListRegularPlannedOn", mock.Anything, day).Return([]models.Arrival{}, nil)
	mocks.arrivals.On("ListAdditionalScheduledOn", mock.Anything, day).
		Return([]models.Arrival{*additional}, nil)
	mocks.schedules.On("GetByID", mock.Anything, schedID).Return(&models.SupplierSchedule{
		ID:           schedID,
		Kind:         models.KindAdditional,
		ScheduleDate: datePtr(2025, time.March, 12),
		ArrivalTime:  "14:00",
	}, nil)
	// Judged against the rebooked slot, not the original planned time
	mocks.arrivals.On("UpdateStatus", mock.Anything, additional.ID, models.StatusOnTime).Return(nil)

	summary, err := service.RunArrivalStatus(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 1, summary.OnTime)
	mocks.arrivals.AssertExpectations(t)
	mocks.schedules.AssertExpectations(t)
}
