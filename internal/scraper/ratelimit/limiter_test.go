package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-agent/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, maxFailures int) (*RateLimiter, *fakeClock) {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Scraper.RateLimit = 6000
	cfg.Scraper.Burst = 10
	cfg.Scraper.CircuitMaxFailures = maxFailures
	cfg.Scraper.CircuitResetTimeout = 30 * time.Second

	rl := NewRateLimiter(cfg)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl.now = clock.Now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiter_CircuitOpensAfterFailures(t *testing.T) {
	rl, _ := newTestLimiter(t, 3)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		require.NoError(t, rl.Wait(ctx, "www.zillow.com"))
		rl.RecordFailure("www.zillow.com", boom)
	}
	assert.Equal(t, CircuitClosed, rl.State("www.zillow.com"))

	rl.RecordFailure("WWW.ZILLOW.COM", boom)
	assert.Equal(t, CircuitOpen, rl.State("www.zillow.com"))

	err := rl.Wait(ctx, "www.zillow.com")
	assert.ErrorIs(t, err, ErrCircuitOpen)

	// other domains are unaffected
	assert.NoError(t, rl.Wait(ctx, "www.trulia.com"))
}

func TestRateLimiter_HalfOpenThenClosed(t *testing.T) {
	rl, clock := newTestLimiter(t, 1)
	ctx := context.Background()

	rl.RecordFailure("www.realtor.com", errors.New("503"))
	require.ErrorIs(t, rl.Wait(ctx, "www.realtor.com"), ErrCircuitOpen)

	clock.Advance(31 * time.Second)
	require.NoError(t, rl.Wait(ctx, "www.realtor.com"))
	assert.Equal(t, CircuitHalfOpen, rl.State("www.realtor.com"))

	rl.RecordSuccess("www.realtor.com")
	assert.Equal(t, CircuitClosed, rl.State("www.realtor.com"))
}

func TestRateLimiter_HalfOpenFailureReopens(t *testing.T) {
	rl, clock := newTestLimiter(t, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rl.RecordFailure("www.homes.com", nil)
	}
	clock.Advance(time.Minute)
	require.NoError(t, rl.Wait(ctx, "www.homes.com"))

	rl.RecordFailure("www.homes.com", errors.New("still down"))
	assert.Equal(t, CircuitOpen, rl.State("www.homes.com"))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Scraper.RateLimit = 1 // one per minute
	cfg.Scraper.Burst = 1
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	require.NoError(t, rl.Wait(context.Background(), "slow.example"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, "slow.example"))
}

func TestRateLimiter_StatsAndCleanup(t *testing.T) {
	rl, clock := newTestLimiter(t, 5)
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx, "www.zillow.com"))
	rl.RecordFailure("www.zillow.com", errors.New("x"))

	stats := rl.GetAllStats()
	require.Contains(t, stats, "www.zillow.com")
	assert.Equal(t, int64(1), stats["www.zillow.com"].Requests)
	assert.Equal(t, int64(1), stats["www.zillow.com"].Failures)
	assert.Equal(t, "closed", stats["www.zillow.com"].CircuitState)

	clock.Advance(11 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.GetAllStats())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl, _ := newTestLimiter(t, 5)
	rl.Stop()
	rl.Stop()
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "www.zillow.com", DomainOf("https://WWW.Zillow.com/homes/for_sale/austin-tx/"))
	assert.Equal(t, "unknown", DomainOf("not a url"))
	assert.Equal(t, "unknown", DomainOf("://bad"))
}
