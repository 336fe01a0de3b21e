package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(start time.Time) (*MemoryRateLimiter, *time.Time) {
	clock := start
	l := NewMemoryRateLimiter()
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestRateLimit_WindowExhaustion(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		ok, err := l.Allow("1.2.3.4", "order_submission")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := l.Allow("1.2.3.4", "order_submission")
	require.NoError(t, err)
	assert.False(t, ok, "sixth attempt inside the window")
}

func TestRateLimit_BlockExpires(t *testing.T) {
	l, clock := newTestLimiter(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		_, err := l.Allow("1.2.3.4", "order_submission")
		require.NoError(t, err)
	}

	// Still blocked just before the hour is up.
	*clock = clock.Add(59 * time.Minute)
	ok, err := l.Allow("1.2.3.4", "order_submission")
	require.NoError(t, err)
	assert.False(t, ok)

	// The block and the original attempts have both aged out.
	*clock = clock.Add(2 * time.Minute)
	ok, err = l.Allow("1.2.3.4", "order_submission")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimit_SlidingWindow(t *testing.T) {
	l, clock := newTestLimiter(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 4; i++ {
		ok, err := l.Allow("1.2.3.4", "order_submission")
		require.NoError(t, err)
		require.True(t, ok)
		*clock = clock.Add(10 * time.Minute)
	}

	// 61 minutes after the first attempt: it no longer counts.
	*clock = clock.Add(21 * time.Minute)
	ok, err := l.Allow("1.2.3.4", "order_submission")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimit_KeyIsolation(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		_, err := l.Allow("1.2.3.4", "order_submission")
		require.NoError(t, err)
	}

	ok, err := l.Allow("5.6.7.8", "order_submission")
	require.NoError(t, err)
	assert.True(t, ok, "other IPs keep their own budget")

	ok, err = l.Allow("1.2.3.4", "event_tracking")
	require.NoError(t, err)
	assert.True(t, ok, "other actions keep their own budget")
}
