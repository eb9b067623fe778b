package services

import (
	"context"
	"time"

	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories for testing

type MockArrivalRepository struct {
	mock.Mock
}

func (m *MockArrivalRepository) Create(ctx context.Context, arrival *models.Arrival) error {
	args := m.Called(ctx, arrival)
	return args.Error(0)
}

func (m *MockArrivalRepository) Save(ctx context.Context, arrival *models.Arrival) error {
	args := m.Called(ctx, arrival)
	return args.Error(0)
}

func (m *MockArrivalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Arrival, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Arrival), args.Error(1)
}

func (m *MockArrivalRepository) GetByDeliveryNote(ctx context.Context, dnNo, poNo string, kind models.ArrivalKind) (*models.Arrival, error) {
	args := m.Called(ctx, dnNo, poNo, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Arrival), args.Error(1)
}

func (m *MockArrivalRepository) ListRegularPlannedOn(ctx context.Context, day time.Time) ([]models.Arrival, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Arrival), args.Error(1)
}

func (m *MockArrivalRepository) ListAdditionalScheduledOn(ctx context.Context, day time.Time) ([]models.Arrival, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Arrival), args.Error(1)
}

func (m *MockArrivalRepository) ListLinkedAdditional(ctx context.Context, regularID uuid.UUID) ([]models.Arrival, error) {
	args := m.Called(ctx, regularID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Arrival), args.Error(1)
}

func (m *MockArrivalRepository) ListMatchCandidates(ctx context.Context, day time.Time, supplierCode string, checkout bool) ([]models.Arrival, error) {
	args := m.Called(ctx, day, supplierCode, checkout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Arrival), args.Error(1)
}

func (m *MockArrivalRepository) ListRegularForPeriod(ctx context.Context, supplierCode string, from, to time.Time) ([]models.Arrival, error) {
	args := m.Called(ctx, supplierCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Arrival), args.Error(1)
}

func (m *MockArrivalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ArrivalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockArrivalRepository) UpdateCompliance(ctx context.Context, id uuid.UUID, compliance models.ComplianceStatus) error {
	args := m.Called(ctx, id, compliance)
	return args.Error(0)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *models.SupplierSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SupplierSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplierSchedule), args.Error(1)
}

type MockDeliveryNoteRepository struct {
	mock.Mock
}

func (m *MockDeliveryNoteRepository) GetByDNNo(ctx context.Context, dnNo string) (*models.DeliveryNote, error) {
	args := m.Called(ctx, dnNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryNote), args.Error(1)
}

func (m *MockDeliveryNoteRepository) DistinctSupplierCodes(ctx context.Context, from, to time.Time) ([]string, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDeliveryNoteRepository) TotalQuantity(ctx context.Context, supplierCode string, from, to time.Time) (float64, error) {
	args := m.Called(ctx, supplierCode, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type MockGoodsReceiptRepository struct {
	mock.Mock
}

func (m *MockGoodsReceiptRepository) Create(ctx context.Context, receipt *models.GoodsReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockGoodsReceiptRepository) TotalScannedForDN(ctx context.Context, dnNo string) (float64, error) {
	args := m.Called(ctx, dnNo)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockGoodsReceiptRepository) TotalReceivedForSupplier(ctx context.Context, supplierCode string, from, to time.Time) (float64, error) {
	args := m.Called(ctx, supplierCode, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type MockVisitorLogRepository struct {
	mock.Mock
}

func (m *MockVisitorLogRepository) ListCheckinsOn(ctx context.Context, day time.Time) ([]models.VisitorLog, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VisitorLog), args.Error(1)
}

func (m *MockVisitorLogRepository) ListCheckoutsOn(ctx context.Context, day time.Time) ([]models.VisitorLog, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VisitorLog), args.Error(1)
}

type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) Upsert(ctx context.Context, record *models.SupplierPerformance) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPerformanceRepository) Save(ctx context.Context, record *models.SupplierPerformance) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPerformanceRepository) ListByPeriodOrdered(ctx context.Context, month, year int) ([]models.SupplierPerformance, error) {
	args := m.Called(ctx, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SupplierPerformance), args.Error(1)
}

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) GetByCode(ctx context.Context, code string) (*models.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}
