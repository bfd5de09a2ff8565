package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})
	require.NotNil(t, limiter)
	assert.Equal(t, float64(DefaultRateLimit.RequestsPerSecond), float64(limiter.limiter.Limit()))
	assert.Equal(t, DefaultRateLimit.BurstSize, limiter.limiter.Burst())
}

func TestNewRateLimiter_BurstFloor(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 5, BurstSize: 0})
	assert.Equal(t, 1, limiter.limiter.Burst())
}

func TestRateLimiter_WaitWithinBurst(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 3})

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "burst should not block")
}

func TestRateLimiter_WaitThrottles(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 20, BurstSize: 1})

	require.NoError(t, limiter.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond,
		"second request waits for a token")
}

func TestRateLimiter_BackoffWindow(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 10})
	limiter.RecordRateLimitError(1)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond,
		"wait should respect the backoff window")
}

func TestRateLimiter_BackoffCancellable(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 10})
	limiter.RecordRateLimitError(60)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
