// Package rollover signals local-midnight day boundaries.
package rollover

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ByeongIn-K/goat-server/internal/events"
	"github.com/ByeongIn-K/goat-server/internal/metrics"
)

// Scheduler sleeps until the next local midnight, publishes a day-rollover
// event, and re-arms itself. Consumers of time-derived views (the
// upcoming/past classification) subscribe to recompute.
type Scheduler struct {
	bus      *events.Bus
	location *time.Location
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler for the given timezone. An empty timezone
// means local time.
func NewScheduler(bus *events.Bus, timezone string, logger zerolog.Logger) (*Scheduler, error) {
	loc := time.Local
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, err
		}
	}
	return &Scheduler{
		bus:      bus,
		location: loc,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// UntilNextMidnight returns the duration from now to the next midnight in
// the given location.
func UntilNextMidnight(now time.Time, loc *time.Location) time.Duration {
	local := now.In(loc)
	tomorrow := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return tomorrow.Sub(local)
}

// Start runs the rollover loop until the context is cancelled or Stop is
// called. It blocks; run it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	for {
		wait := UntilNextMidnight(time.Now(), s.location)
		s.logger.Debug().Dur("until_midnight", wait).Msg("armed day-rollover timer")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("day-rollover scheduler stopped by context")
			return
		case <-s.stopCh:
			timer.Stop()
			s.logger.Info().Msg("day-rollover scheduler stopped")
			return
		case <-timer.C:
			s.fire()
		}
	}
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

// IsRunning returns whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) fire() {
	today := time.Now().In(s.location).Format("2006-01-02")
	s.logger.Info().Str("date", today).Msg("day rolled over")
	metrics.IncDayRollover()
	s.bus.PublishType(events.TypeDayRollover, today)
}
