package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestScheduleEvery_RejectsNonPositiveInterval(t *testing.T) {
	s := newTestScheduler(t)
	for _, interval := range []time.Duration{0, -time.Second} {
		_, err := s.ScheduleEvery("poll-rebuild", interval, func() {})
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation), "interval %s", interval)
	}
}

func TestScheduleEvery_RepeatsUntilStopped(t *testing.T) {
	s, err := NewScheduler(nil)
	require.NoError(t, err)

	var ticks atomic.Int32
	id, err := s.ScheduleEvery("poll-rebuild", 20*time.Millisecond, func() { ticks.Add(1) })
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Zero(t, ticks.Load(), "jobs wait for Start")
	s.Start()
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	stopped := ticks.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load())
}
