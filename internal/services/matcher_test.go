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

func TestDriverEqual(t *testing.T) {
	require.True(t, driverEqual("John Doe", "John Doe"))
	require.True(t, driverEqual("john doe", "John Doe"))
	require.True(t, driverEqual("  John Doe  ", "john doe"))
	require.False(t, driverEqual("John Doe", "Jane Doe"))
}

func TestPlateEqual(t *testing.T) {
	require.True(t, plateEqual("B1234ABC", "B1234ABC"))
	require.True(t, plateEqual("B 1234 ABC", "B1234ABC"))
	require.True(t, plateEqual("b 1234 abc", "B1234ABC"))
	require.False(t, plateEqual("B 1234 ABC", "B 1234 ABD"))
}

func TestClockEqual(t *testing.T) {
	require.True(t, clockEqual("08:30", "08:30:00"))
	require.True(t, clockEqual("08:30:00", "08:30"))
	require.True(t, clockEqual(" 08:30 ", "08:30"))
	require.False(t, clockEqual("08:30", "08:31"))
	// Unparseable values only match exactly
	require.False(t, clockEqual("morning", "08:30"))
	require.True(t, clockEqual("morning", "morning"))
}

func TestValidRecordID(t *testing.T) {
	require.True(t, validRecordID("VIS-42"))
	require.False(t, validRecordID(""))
	require.False(t, validRecordID("0"))
	require.False(t, validRecordID("  "))
}

func matchableArrival(supplier, driver, plate, plannedTime string) models.Arrival {
	return models.Arrival{
		ID:           uuid.New(),
		Kind:         models.KindRegular,
		SupplierCode: supplier,
		DriverName:   driver,
		VehiclePlate: plate,
		PlannedDate:  datePtr(2025, time.March, 10),
		PlannedTime:  plannedTime,
	}
}

func gateVisit(supplier, driver, plate, plannedTime string, checkin time.Time) models.VisitorLog {
	return models.VisitorLog{
		RecordID:     "VIS-1",
		VisitDate:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local),
		SupplierCode: supplier,
		DriverName:   driver,
		VehiclePlate: plate,
		PlannedTime:  plannedTime,
		CheckinAt:    &checkin,
	}
}

func TestVisitorSyncMatchesNormalizedIdentity(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)
	checkin := time.Date(2025, time.March, 10, 7, 45, 0, 0, time.Local)

	arrival := matchableArrival("SUP01", "John Doe", "B1234ABC", "08:00")
	visit := gateVisit("SUP01", "john doe", "B 1234 ABC", "08:00:00", checkin)

	mocks.visitors.On("ListCheckinsOn", mock.Anything, day).
		Return([]models.VisitorLog{visit}, nil)
	mocks.arrivals.On("ListMatchCandidates", mock.Anything, day, "SUP01", false).
		Return([]models.Arrival{arrival}, nil)
	mocks.arrivals.On("Save", mock.Anything, mock.MatchedBy(func(a *models.Arrival) bool {
		return a.ID == arrival.ID &&
			a.SecurityCheckinAt != nil && a.SecurityCheckinAt.Equal(checkin) &&
			a.VisitorRecordID != nil && *a.VisitorRecordID == "VIS-1"
	})).Return(nil)

	summary, err := service.RunVisitorSync(context.Background(), day, SyncCheckin)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Updated)
	require.Equal(t, 0, summary.Unmatched)
	mocks.arrivals.AssertExpectations(t)
}

func TestVisitorSyncRelaxedFallbackDropsPlannedTime(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)
	checkin := time.Date(2025, time.March, 10, 7, 45, 0, 0, time.Local)

	// Same driver and plate but the gate system recorded a different slot time
	arrival := matchableArrival("SUP01", "John Doe", "B1234ABC", "08:00")
	visit := gateVisit("SUP01", "John Doe", "B1234ABC", "10:30", checkin)

	mocks.visitors.On("ListCheckinsOn", mock.Anything, day).
		Return([]models.VisitorLog{visit}, nil)
	mocks.arrivals.On("ListMatchCandidates", mock.Anything, day, "SUP01", false).
		Return([]models.Arrival{arrival}, nil)
	mocks.arrivals.On("Save", mock.Anything, mock.AnythingOfType("*models.Arrival")).Return(nil)

	summary, err := service.RunVisitorSync(context.Background(), day, SyncCheckin)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Updated)
	require.Equal(t, 0, summary.Unmatched)
}

func TestVisitorSyncTieUpdatesAllMatches(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)
	checkin := time.Date(2025, time.March, 10, 7, 45, 0, 0, time.Local)

	first := matchableArrival("SUP01", "John Doe", "B1234ABC", "08:00")
	second := matchableArrival("SUP01", "John Doe", "B1234ABC", "08:00")
	visit := gateVisit("SUP01", "John Doe", "B1234ABC", "08:00", checkin)

	mocks.visitors.On("ListCheckinsOn", mock.Anything, day).
		Return([]models.VisitorLog{visit}, nil)
	mocks.arrivals.On("ListMatchCandidates", mock.Anything, day, "SUP01", false).
		Return([]models.Arrival{first, second}, nil)
	mocks.arrivals.On("Save", mock.Anything, mock.AnythingOfType("*models.Arrival")).Return(nil)

	summary, err := service.RunVisitorSync(context.Background(), day, SyncCheckin)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Processed)
	require.Equal(t, 2, summary.Updated)
	mocks.arrivals.AssertNumberOfCalls(t, "Save", 2)
}

func TestVisitorSyncUnmatchedAndUnusableVisits(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)
	checkin := time.Date(2025, time.March, 10, 7, 45, 0, 0, time.Local)

	stranger := gateVisit("SUP01", "Jane Roe", "D9999XYZ", "", checkin)
	missingIdentity := gateVisit("SUP01", "", "B1234ABC", "", checkin)

	mocks.visitors.On("ListCheckinsOn", mock.Anything, day).
		Return([]models.VisitorLog{stranger, missingIdentity}, nil)
	mocks.arrivals.On("ListMatchCandidates", mock.Anything, day, "SUP01", false).
		Return([]models.Arrival{matchableArrival("SUP01", "John Doe", "B1234ABC", "08:00")}, nil)

	summary, err := service.RunVisitorSync(context.Background(), day, SyncCheckin)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Events)
	require.Equal(t, 1, summary.Unmatched)
	require.Equal(t, 0, summary.Updated)
	// Only the visit with complete identity fields reaches matching
	mocks.arrivals.AssertNumberOfCalls(t, "ListMatchCandidates", 1)
}

func TestVisitorSyncSecondRunSkipsFilledArrivals(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.Local)
	checkin := time.Date(2025, time.March, 10, 7, 45, 0, 0, time.Local)

	recordID := "VIS-1"
	filled := matchableArrival("SUP01", "John Doe", "B1234ABC", "08:00")
	filled.SecurityCheckinAt = &checkin
	filled.VisitorRecordID = &recordID

	visit := gateVisit("SUP01", "John Doe", "B1234ABC", "08:00", checkin)

	mocks.visitors.On("ListCheckinsOn", mock.Anything, day).
		Return([]models.VisitorLog{visit}, nil)
	mocks.arrivals.On("ListMatchCandidates", mock.Anything, day, "SUP01", false).
		Return([]models.Arrival{filled}, nil)

	summary, err := service.RunVisitorSync(context.Background(), day, SyncCheckin)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 0, summary.Updated)
	mocks.arrivals.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestVisitorSyncCheckoutComputesGateDuration(t *testing.T) {
	service, mocks := newTestService(t)
	day := time.Date(2025, time.March, 10, 17, 0, 0, 0, time.Local)
	checkin := time.Date(2025, time.March, 10, 7, 45, 0, 0, time.Local)
	checkout := time.Date(2025, time.March, 10, 9, 30, 0, 0, time.Local)

	arrival := matchableArrival("SUP01", "John Doe", "B1234ABC", "08:00")
	arrival.SecurityCheckinAt = &checkin

	visit := gateVisit("SUP01", "John Doe", "B1234ABC", "08:00", checkin)
	visit.CheckoutAt = &checkout

	mocks.visitors.On("ListCheckoutsOn", mock.Anything, day).
		Return([]models.VisitorLog{visit}, nil)
	mocks.arrivals.On("ListMatchCandidates", mock.Anything, day, "SUP01", true).
		Return([]models.Arrival{arrival}, nil)
	mocks.arrivals.On("Save", mock.Anything, mock.MatchedBy(func(a *models.Arrival) bool {
		return a.SecurityCheckoutAt != nil && a.SecurityCheckoutAt.Equal(checkout) &&
			a.SecurityDurationMin != nil && *a.SecurityDurationMin == 105
	})).Return(nil)

	summary, err := service.RunVisitorSync(context.Background(), day, SyncCheckout)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Updated)
	mocks.arrivals.AssertExpectations(t)
}
