package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsIngest/internal/ports"
)

// Scheduler wires the cron-like driver with the ingestion use case.
type Scheduler struct {
	driver   ports.Scheduler
	ingestor *Ingestor
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring ingestion job.
func NewScheduler(driver ports.Scheduler, ingestor *Ingestor, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, ingestor: ingestor, logger: logger}
}

// Start registers the ingestion job with the provided scheduler. The job
// runs with configured defaults and never lets an error escape: a failed
// run is logged and the schedule keeps ticking.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("scheduled ingestion started", "trigger", trigger)
		res, err := s.ingestor.ProcessIngestion(ctx, 0, 0, 0)
		if err != nil {
			s.logger.Error("scheduled ingestion failed", "error", err)
			return
		}
		s.logger.Info("scheduled ingestion finished",
			"inserted", res.Inserted,
			"pages", res.Metrics.PagesAttempted,
			"raw", res.Metrics.RawCount,
			"curated", res.Metrics.CleanCount)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
