package services

import (
	"testing"
	"time"

	"example.com/warehouse/services/arrivals/config"
	"example.com/warehouse/services/arrivals/internal/cache"
	"example.com/warehouse/services/arrivals/internal/metrics"
	"example.com/warehouse/services/arrivals/internal/tracing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var errTestBoom = errors.New("boom")

type testMocks struct {
	arrivals  *MockArrivalRepository
	schedules *MockScheduleRepository
	notes     *MockDeliveryNoteRepository
	receipts  *MockGoodsReceiptRepository
	visitors  *MockVisitorLogRepository
	perf      *MockPerformanceRepository
	suppliers *MockSupplierRepository
}

// newTestService builds an ArrivalService over mock repositories, a disabled
// Redis cache and a disabled tracer
func newTestService(t *testing.T) (*ArrivalService, *testMocks) {
	t.Helper()

	mocks := &testMocks{
		arrivals:  new(MockArrivalRepository),
		schedules: new(MockScheduleRepository),
		notes:     new(MockDeliveryNoteRepository),
		receipts:  new(MockGoodsReceiptRepository),
		visitors:  new(MockVisitorLogRepository),
		perf:      new(MockPerformanceRepository),
		suppliers: new(MockSupplierRepository),
	}

	redisCache, err := cache.NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	tracer, err := tracing.NewTracer(config.TracingConfig{})
	require.NoError(t, err)

	service := &ArrivalService{
		arrivalRepo:   mocks.arrivals,
		scheduleRepo:  mocks.schedules,
		dnRepo:        mocks.notes,
		receiptRepo:   mocks.receipts,
		visitorRepo:   mocks.visitors,
		perfRepo:      mocks.perf,
		supplierNames: cache.NewSupplierNameCache(redisCache, mocks.suppliers, 0),
		metrics:       metrics.NewMetrics(),
		tracer:        tracer,
	}
	return service, mocks
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}
