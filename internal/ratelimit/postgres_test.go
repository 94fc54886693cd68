package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("RATELIMIT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("RATELIMIT_TEST_PG_DSN not set")
	}
	s, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStoreWindow(t *testing.T) {
	s := openTestPostgres(t)
	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Millisecond)}
	s.now = clock.Now
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	for i := 1; i <= 2; i++ {
		d, err := s.Hit(ctx, key, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, i, d.Count)
	}
	for i := 0; i < 2; i++ {
		d, err := s.Hit(ctx, key, 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 2, d.Count)
		assert.InDelta(t, time.Minute.Seconds(), d.RetryAfter.Seconds(), 1)
	}

	clock.Advance(time.Minute)
	d, err := s.Hit(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestPostgresStoreSweep(t *testing.T) {
	s := openTestPostgres(t)
	clock := &fakeClock{now: time.Now().UTC()}
	s.now = clock.Now
	ctx := context.Background()

	_, err := s.Hit(ctx, "sweep:"+uuid.NewString(), 1, time.Second)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}
