package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	r, err := s.Reserve(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, Acquired, r.State)

	r, err = s.Reserve(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, InFlight, r.State)

	require.NoError(t, s.Complete(ctx, "k1", "enr-1", time.Hour))
	r, err = s.Reserve(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, Completed, r.State)
	assert.Equal(t, "enr-1", r.EnrollmentID.String())

	require.NoError(t, s.Release(ctx, "k1"))
	r, _ = s.Reserve(ctx, "k1", time.Hour)
	assert.Equal(t, Completed, r.State, "release never unbinds a completed key")
}

func TestInMemoryReleaseFreesPendingKey(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	_, err := s.Reserve(ctx, "k", time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k"))

	r, err := s.Reserve(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, Acquired, r.State)
}

func TestInMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewInMemory()
	s.now = func() time.Time { return now }

	_, _ = s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, s.Complete(ctx, "k", "enr-1", time.Minute))

	now = now.Add(time.Minute)
	r, err := s.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Acquired, r.State)
}

func TestInMemoryConcurrentReserve(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	var wg sync.WaitGroup
	var acquired atomic.Int32
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := s.Reserve(ctx, "shared", time.Hour)
			assert.NoError(t, err)
			if r.State == Acquired {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), acquired.Load())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "acquired", Acquired.String())
	assert.Equal(t, "in_flight", InFlight.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "unknown", State(42).String())
}
