package components

import (
	"context"
	"log/slog"

	"rental-backend/internal/infra/outbox"
	"rental-backend/internal/infra/scheduler"
	"rental-backend/internal/pkg/config"
	"rental-backend/internal/usecase/calendar"
	"rental-backend/internal/usecase/pricing"

	"go.uber.org/fx"
)

const (
	jobCalendarRefresh = "calendar-refresh"
	jobRateSync        = "rate-sync"
	jobOutboxRelay     = "outbox-relay"
)

var JobModule = fx.Module("job",
	fx.Provide(NewScheduler),
	fx.Invoke(func(*scheduler.Scheduler) {}),
)

type SchedulerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Logger    *slog.Logger
	Blocks    *calendar.BlockCache
	Rates     *pricing.RateCache
	Relay     *outbox.Relay
}

// NewScheduler registers the background refresh jobs and ties them to the app lifecycle.
func NewScheduler(p SchedulerParams) *scheduler.Scheduler {
	s := scheduler.New(p.Logger.With("component", "scheduler"))

	s.Register(scheduler.Job{
		Name:       jobCalendarRefresh,
		Interval:   p.Config.Calendar.RefreshInterval,
		RunOnStart: true,
		Run:        p.Blocks.Refresh,
	})
	s.Register(scheduler.Job{
		Name:       jobRateSync,
		Interval:   p.Config.Rates.SyncInterval,
		RunOnStart: true,
		Run:        p.Rates.Sync,
	})
	if p.Relay != nil {
		relay := p.Relay
		s.Register(scheduler.Job{
			Name:     jobOutboxRelay,
			Interval: p.Config.Kafka.RelayInterval,
			Run: func(ctx context.Context) error {
				sent, err := relay.RunOnce(ctx)
				if sent > 0 {
					p.Logger.Info("outbox jobs published", "count", sent)
				}
				return err
			},
		})
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
	return s
}
