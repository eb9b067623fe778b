package cache

import (
	"context"
	"fmt"
	"time"

	"example.com/warehouse/services/arrivals/internal/repositories"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SupplierNameCache is a read-through cache for supplier display names,
// keyed by supplier code. Names come from the supplier master table and are
// denormalized onto arrival and performance rows; the cache keeps the
// scoring and ingestion paths from hitting the master table per record.
type SupplierNameCache struct {
	cache     *RedisCache
	suppliers repositories.SupplierRepository
	ttl       time.Duration
}

// NewSupplierNameCache creates a supplier name cache backed by Redis and the
// supplier repository
func NewSupplierNameCache(cache *RedisCache, suppliers repositories.SupplierRepository, ttl time.Duration) *SupplierNameCache {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SupplierNameCache{
		cache:     cache,
		suppliers: suppliers,
		ttl:       ttl,
	}
}

func supplierNameKey(code string) string {
	return fmt.Sprintf("supplier-name:%s", code)
}

// Get returns the display name for a supplier code, loading it through the
// cache on a miss
func (c *SupplierNameCache) Get(ctx context.Context, code string) (string, error) {
	var name string
	err := c.cache.Get(ctx, supplierNameKey(code), &name)
	if err == nil && name != "" {
		return name, nil
	}
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		log.Warn().Err(err).Str("supplier_code", code).Msg("Supplier name cache read failed, falling back to store")
	}

	return c.Refresh(ctx, code)
}

// Refresh reloads a supplier's name from the store and rewrites the cached
// entry
func (c *SupplierNameCache) Refresh(ctx context.Context, code string) (string, error) {
	supplier, err := c.suppliers.GetByCode(ctx, code)
	if err != nil {
		return "", errors.Wrapf(err, "failed to load supplier %s", code)
	}

	if err := c.cache.Set(ctx, supplierNameKey(code), supplier.Name, c.ttl); err != nil {
		log.Warn().Err(err).Str("supplier_code", code).Msg("Failed to cache supplier name")
	}

	return supplier.Name, nil
}

// Invalidate drops the cached name for a supplier code
func (c *SupplierNameCache) Invalidate(ctx context.Context, code string) error {
	return c.cache.Delete(ctx, supplierNameKey(code))
}
