package cache

import (
	"context"
	"testing"

	"example.com/warehouse/services/arrivals/config"
	"example.com/warehouse/services/arrivals/internal/models"
	"example.com/warehouse/services/arrivals/internal/repositories"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func TestSupplierNameCacheFallsThroughToStore(t *testing.T) {
	redisCache, err := NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	suppliers := new(MockSupplierRepository)
	suppliers.On("GetByCode", mock.Anything, "SUP01").
		Return(&models.Supplier{Code: "SUP01", Name: "Acme Components"}, nil)

	names := NewSupplierNameCache(redisCache, suppliers, 0)

	name, err := names.Get(context.Background(), "SUP01")
	require.NoError(t, err)
	require.Equal(t, "Acme Components", name)
	suppliers.AssertExpectations(t)
}

func TestSupplierNameCacheSurvivesNilRedisCache(t *testing.T) {
	// A failed Redis connection must degrade to store lookups, never crash
	// the scoring or ingestion paths
	suppliers := new(MockSupplierRepository)
	suppliers.On("GetByCode", mock.Anything, "SUP01").
		Return(&models.Supplier{Code: "SUP01", Name: "Acme Components"}, nil)

	names := NewSupplierNameCache(nil, suppliers, 0)

	name, err := names.Get(context.Background(), "SUP01")
	require.NoError(t, err)
	require.Equal(t, "Acme Components", name)

	require.NoError(t, names.Invalidate(context.Background(), "SUP01"))
}

func TestSupplierNameCachePropagatesStoreError(t *testing.T) {
	redisCache, err := NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	suppliers := new(MockSupplierRepository)
	suppliers.On("GetByCode", mock.Anything, "MISSING").Return(nil, repositories.ErrNotFound)

	names := NewSupplierNameCache(redisCache, suppliers, 0)

	_, err = names.Get(context.Background(), "MISSING")
	require.Error(t, err)
}

func TestDisabledCacheBehaviour(t *testing.T) {
	redisCache, err := NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	var out string
	err = redisCache.Get(context.Background(), "any-key", &out)
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, redisCache.Set(context.Background(), "any-key", "value", 0))
	require.NoError(t, redisCache.Delete(context.Background(), "any-key"))
}
