package rollover

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByeongIn-K/goat-server/internal/events"
)

func TestUntilNextMidnight(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			"one minute to midnight",
			time.Date(2024, 6, 1, 23, 59, 0, 0, loc),
			time.Minute,
		},
		{
			"noon",
			time.Date(2024, 6, 1, 12, 0, 0, 0, loc),
			12 * time.Hour,
		},
		{
			"just after midnight",
			time.Date(2024, 6, 1, 0, 0, 1, 0, loc),
			24*time.Hour - time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UntilNextMidnight(tt.now, loc))
		})
	}
}

func TestUntilNextMidnight_MonthBoundary(t *testing.T) {
	now := time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, UntilNextMidnight(now, time.UTC))
}

func TestNewScheduler_BadTimezone(t *testing.T) {
	_, err := NewScheduler(events.NewBus(), "Mars/Olympus", zerolog.New(io.Discard))
	assert.Error(t, err)
}

func TestScheduler_StopUnblocksStart(t *testing.T) {
	s, err := NewScheduler(events.NewBus(), "", zerolog.New(io.Discard))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	// Give the loop a moment to arm, then stop it.
	time.Sleep(10 * time.Millisecond)
	assert.True(t, s.IsRunning())
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.False(t, s.IsRunning())
}

func TestScheduler_ContextCancelUnblocksStart(t *testing.T) {
	s, err := NewScheduler(events.NewBus(), "", zerolog.New(io.Discard))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after context cancel")
	}
}
