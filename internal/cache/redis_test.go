package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-agent/internal/config"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := config.NewDefaultConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.URL = "redis://" + mr.Addr()

	c, err := NewRedisCache(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := ListingKey("https://www.zillow.com/homes/for_sale/austin-tx/")

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, "# Listings", time.Minute))

	value, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "# Listings", value)
	assert.NoError(t, c.Ping(ctx))
}

func TestRedisCache_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "listing:abc", "content", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "listing:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "listing:abc")
	assert.Error(t, err)
}

func TestNew_DisabledUsesNoop(t *testing.T) {
	cfg := config.NewDefaultConfig()

	c, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, NoopCache{}, c)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrDisabled)

	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Redis.URL = "not a url"

	_, err := NewRedisCache(cfg)
	assert.Error(t, err)
}

func TestListingKey_Stable(t *testing.T) {
	a := ListingKey("https://example.com/a")
	assert.Equal(t, a, ListingKey("https://example.com/a"))
	assert.NotEqual(t, a, ListingKey("https://example.com/b"))
	assert.Contains(t, a, "listing:")
}
