package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("returns job id for valid interval", func(t *testing.T) {
		s, err := New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		id, err := s.ScheduleEvery(context.Background(), "check-release", 10*time.Second, func(context.Context) {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Equal(t, []string{"check-release"}, s.Jobs())
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		_, err = s.ScheduleEvery(context.Background(), "test", 0, func(context.Context) {})
		require.Error(t, err)
	})
}

func TestScheduler_RunsImmediately(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	var calls atomic.Int32
	_, err = s.ScheduleEvery(context.Background(), "tick", time.Hour, func(context.Context) {
		calls.Add(1)
	})
	require.NoError(t, err)

	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_SkipsAfterCancel(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err = s.ScheduleEvery(ctx, "tick", time.Hour, func(context.Context) { calls.Add(1) })
	require.NoError(t, err)

	s.Start()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Stop())
	assert.Equal(t, int32(0), calls.Load())
}
