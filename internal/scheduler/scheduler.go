package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Refresher fetches a location's dashboard; weather.Service records the
// result in the history cache as a side effect.
type Refresher interface {
	Dashboard(ctx context.Context, provider string, q weather.Query) (weather.DashboardResponse, error)
}

// Scheduler periodically refreshes configured locations so the history cache
// keeps covering past days even when nobody is looking.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	refresher  Refresher
	provider   string
	queries    []weather.Query
	interval   time.Duration
	jobTimeout time.Duration
	logger     *zap.Logger
}

// New creates a new Scheduler. An empty provider uses the service default.
func New(queries []weather.Query, interval time.Duration, provider string, refresher Refresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		refresher:  refresher,
		provider:   provider,
		queries:    queries,
		interval:   interval,
		jobTimeout: 30 * time.Second,
		logger:     logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.queries) == 0 {
		s.logger.Info("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.Int("locations", len(s.queries)), zap.Int("interval_minutes", minutes))
	return nil
}

// RunOnce refreshes every location concurrently and returns the number that
// failed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.logger.Debug("scheduler: running refresh job")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, q := range s.queries {
		wg.Add(1)
		go func(q weather.Query) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
			defer cancel()

			if _, err := s.refresher.Dashboard(ctx, s.provider, q); err != nil {
				s.logger.Warn("scheduler: refresh failed", zap.String("location", q.String()), zap.Error(err))
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(q)
	}
	wg.Wait()

	s.logger.Debug("scheduler: completed refresh job", zap.Int("failed", failed))
	return failed
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
