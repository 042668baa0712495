package scheduler

import (
	"context"
	"time"

	"NewsIngest/internal/ports"
)

// IntervalScheduler triggers the job on a fixed interval using time.Ticker.
type IntervalScheduler struct {
	interval time.Duration
	location *time.Location
	stop     chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler firing every interval, reporting
// trigger times in the given location.
func NewIntervalScheduler(interval time.Duration, location *time.Location) *IntervalScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if location == nil {
		location = time.UTC
	}
	return &IntervalScheduler{interval: interval, location: location}
}

// Start launches the ticking goroutine. Calling Start twice is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				job(t.In(s.location))
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
