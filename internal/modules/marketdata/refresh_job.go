package marketdata

import (
	"context"
	"time"
)

// RefreshJob runs RefreshAll on a schedule.
type RefreshJob struct {
	service *Service
	timeout time.Duration
}

// NewRefreshJob creates the scheduled refresh job.
func NewRefreshJob(service *Service, timeout time.Duration) *RefreshJob {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &RefreshJob{service: service, timeout: timeout}
}

// Run refreshes every catalog symbol.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.service.RefreshAll(ctx)
	return err
}

// Name returns the job name for scheduling and logging.
func (j *RefreshJob) Name() string {
	return "market_data_refresh"
}
