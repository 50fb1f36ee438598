package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/portfolio-dashboard/logger"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher refreshes a dashboard. *Store implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AutoRefresh refreshes a dashboard on a cron schedule.
type AutoRefresh struct {
	cron     *cron.Cron
	log      zerolog.Logger
	schedule string
}

// NewAutoRefresh schedules r.Refresh. Schedule examples:
//   - "@every 5m"       - Every 5 minutes
//   - "@hourly"         - Every hour
//   - "0 9 * * MON-FRI" - 9 AM weekdays
//
// Each run is bounded by timeout when positive.
func NewAutoRefresh(r Refresher, schedule string, timeout time.Duration, log zerolog.Logger) (*AutoRefresh, error) {
	a := &AutoRefresh{
		cron:     cron.New(),
		log:      logger.Component(log, "autorefresh"),
		schedule: schedule,
	}
	_, err := a.cron.AddFunc(schedule, func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		a.log.Debug().Msg("Running scheduled refresh")
		if err := r.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			a.log.Error().Err(err).Msg("Scheduled refresh failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return a, nil
}

// Start starts the scheduler.
func (a *AutoRefresh) Start() {
	a.cron.Start()
	a.log.Info().Str("schedule", a.schedule).Msg("Auto refresh started")
}

// Stop stops the scheduler and waits for a running refresh to complete.
func (a *AutoRefresh) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
	a.log.Info().Msg("Auto refresh stopped")
}
