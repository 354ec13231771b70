// internal/cache/scancache.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"macromaps/internal/common/database"
	"macromaps/internal/common/logger"
)

// ScanCache stores rendered scan-nearby responses keyed by the rounded
// search coordinates. Coordinates are rounded to 4 decimal places (~11m)
// so nearby repeat scans hit the same entry.
type ScanCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewScanCache(rdb *database.RedisClient, ttl time.Duration, log logger.Logger) *ScanCache {
	return &ScanCache{
		redis:  rdb,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "cache.scan"}),
	}
}

func scanKey(latitude, longitude, radiusKm float64) string {
	return fmt.Sprintf("scan:%.4f:%.4f:%.1f", latitude, longitude, radiusKm)
}

// Get returns the cached response body for the coordinates, or ok=false on
// a miss. Redis failures are logged and treated as misses so the endpoint
// degrades to a direct query.
func (c *ScanCache) Get(ctx context.Context, latitude, longitude, radiusKm float64) ([]byte, bool) {
	key := scanKey(latitude, longitude, radiusKm)
	value, err := c.redis.Get(ctx, key)
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}
	return []byte(value), true
}

// Set stores a rendered response. Failures are logged, not propagated.
func (c *ScanCache) Set(ctx context.Context, latitude, longitude, radiusKm float64, body []byte) {
	key := scanKey(latitude, longitude, radiusKm)
	if err := c.redis.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Invalidate drops the entry for the coordinates. Used once background
// processing finishes so the next scan reflects new menus.
func (c *ScanCache) Invalidate(ctx context.Context, latitude, longitude, radiusKm float64) {
	key := scanKey(latitude, longitude, radiusKm)
	if err := c.redis.Client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
