package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

// RequestFunc returns the archive request for a run starting at now.
type RequestFunc func(now time.Time) weather.ArchiveRequest

// Scheduler periodically collects archive data for every registered station
// into a store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	collector *weather.Collector
	store     weather.Store
	request   RequestFunc
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. Each run is bounded by timeout when it is positive.
func New(collector *weather.Collector, store weather.Store, request RequestFunc, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		collector: collector,
		store:     store,
		request:   request,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run starts immediately. Runs never overlap; stations are collected
// one after the other.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.collector.Registry().Len() == 0 {
		s.logger.Warn("scheduler: no stations registered; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval", interval)
	return nil
}

// RunOnce performs one collection and stores its records.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	req := s.request(started)
	s.logger.Info("scheduler: running collection job", "start", req.StartDate, "end", req.EndDate)

	saved := s.collector.CollectAndStore(ctx, s.store, req)
	s.logger.Info("scheduler: completed collection job", "records", saved, "took", time.Since(started))
	return saved
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
