// internal/cache/scancache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macromaps/internal/common/database"
	"macromaps/internal/common/logger/logtest"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ScanCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	t.Cleanup(func() { client.Close() })
	return NewScanCache(client, ttl, logtest.NewLogger(t)), mr
}

func TestScanCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, 52.52, 13.405, 5.0)
	assert.False(t, ok)

	c.Set(ctx, 52.52, 13.405, 5.0, []byte(`{"success":true}`))

	body, ok := c.Get(ctx, 52.52, 13.405, 5.0)
	require.True(t, ok)
	assert.JSONEq(t, `{"success":true}`, string(body))
}

func TestScanCacheKeysByRoundedCoordinates(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, 52.520004, 13.405004, 5.0, []byte(`{"v":1}`))

	// Within rounding distance (~11m) hits the same entry.
	body, ok := c.Get(ctx, 52.520001, 13.405001, 5.0)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":1}`, string(body))

	// A different radius is a different entry.
	_, ok = c.Get(ctx, 52.520001, 13.405001, 10.0)
	assert.False(t, ok)

	// A clearly different point misses.
	_, ok = c.Get(ctx, 52.53, 13.405, 5.0)
	assert.False(t, ok)
}

func TestScanCacheExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, 52.52, 13.405, 5.0, []byte(`{"v":1}`))
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, 52.52, 13.405, 5.0)
	assert.False(t, ok)
}

func TestScanCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, 52.52, 13.405, 5.0, []byte(`{"v":1}`))
	c.Invalidate(ctx, 52.52, 13.405, 5.0)

	_, ok := c.Get(ctx, 52.52, 13.405, 5.0)
	assert.False(t, ok)
}

func TestScanCacheDegradesWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	mr.Close()

	// Both directions are best-effort: no panic, just a miss.
	c.Set(ctx, 52.52, 13.405, 5.0, []byte(`{"v":1}`))
	_, ok := c.Get(ctx, 52.52, 13.405, 5.0)
	assert.False(t, ok)
}
