package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/bookfinder-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler prunes the audit trail on a cron schedule.
type Scheduler struct {
	eventSvc  services.EventServiceProvider
	schedule  cron.Schedule
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	nextRun   time.Time
	done      chan struct{}
}

// NewScheduler creates a scheduler that runs the maintenance task whenever
// spec (standard five-field cron) comes due.
func NewScheduler(eventSvc services.EventServiceProvider, spec string, retention time.Duration, now func() time.Time) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		eventSvc:  eventSvc,
		schedule:  schedule,
		retention: retention,
		interval:  time.Minute,
		now:       now,
		nextRun:   schedule.Next(now()),
		done:      make(chan struct{}),
	}, nil
}

// Run starts the scheduler's ticking loop.
func (s *Scheduler) Run() {
	log.Info().Time("next_run", s.nextRun).Msg("Starting maintenance scheduler")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping maintenance scheduler")
			return
		case <-ticker.C:
			s.checkAndRun(context.Background())
		}
	}
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.done)
}

// NextRun reports when the maintenance task is next due.
func (s *Scheduler) NextRun() time.Time {
	return s.nextRun
}

// checkAndRun executes the task if it is due and advances the schedule.
func (s *Scheduler) checkAndRun(ctx context.Context) bool {
	now := s.now()
	if now.Before(s.nextRun) {
		return false
	}
	s.nextRun = s.schedule.Next(now)

	deleted, err := s.eventSvc.PruneEvents(ctx, s.retention)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler: failed to prune events")
		return true
	}
	log.Info().Int64("deleted", deleted).Time("next_run", s.nextRun).Msg("Scheduler: pruned audit events")
	if deleted > 0 {
		msg := fmt.Sprintf("Pruned %d audit events older than %s.", deleted, s.retention)
		if err := s.eventSvc.CreateEvent(ctx, "maintenance.prune", services.LevelInfo, msg, nil); err != nil {
			log.Warn().Err(err).Msg("Scheduler: failed to record prune event")
		}
	}
	return true
}
