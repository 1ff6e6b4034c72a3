package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRunsImmediatelyAndOnTicks(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	var n atomic.Int32
	require.NoError(t, s.Every("balances", 20*time.Millisecond, func(ctx context.Context) {
		n.Add(1)
	}))

	assert.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestEveryRejectsDuplicatesAndBadInterval(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	noop := func(context.Context) {}
	require.NoError(t, s.Every("prices", time.Hour, noop))
	assert.Error(t, s.Every("prices", time.Hour, noop))
	assert.Error(t, s.Every("other", 0, noop))
	assert.Equal(t, []string{"prices"}, s.Names())
}

func TestBusyTaskSkipsTicks(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	release := make(chan struct{})
	require.NoError(t, s.Every("slow", 5*time.Millisecond, func(ctx context.Context) {
		select {
		case <-release:
		case <-ctx.Done():
		}
	}))

	assert.Eventually(t, func() bool {
		_, skips, _ := s.Stats("slow")
		return skips >= 2
	}, time.Second, 5*time.Millisecond)

	runs, _, ok := s.Stats("slow")
	require.True(t, ok)
	assert.Equal(t, int64(1), runs)
	close(release)
}

func TestCancelStopsTaskAndCancelsContext(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	cancelled := make(chan struct{})
	require.NoError(t, s.Every("alerts", time.Hour, func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}))

	time.Sleep(10 * time.Millisecond)
	assert.True(t, s.Cancel("alerts"))
	select {
	case <-cancelled:
	default:
		t.Fatal("run context was not cancelled before Cancel returned")
	}
	assert.False(t, s.Cancel("alerts"))
	assert.Empty(t, s.Names())
}

func TestStopRejectsNewTasks(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Every("a", time.Hour, func(context.Context) {}))
	s.Stop()

	assert.Error(t, s.Every("b", time.Hour, func(context.Context) {}))
	assert.Empty(t, s.Names())
}

func TestPanickingTaskKeepsRunning(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	var n atomic.Int32
	require.NoError(t, s.Every("flaky", 5*time.Millisecond, func(context.Context) {
		if n.Add(1) == 1 {
			panic("boom")
		}
	}))

	assert.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
