package cleanup

import (
	"context"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

// Schedule registers the daily sweep on a new gocron scheduler and starts
// it. Singleton mode keeps runs serialized: a sweep still in flight when the
// next tick fires is not overlapped. A failed run is logged and the next
// scheduled run proceeds normally.
func Schedule(svc *Service, crontab string) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(func() {
			if err := svc.Run(context.Background()); err != nil {
				slog.Error("cleanup sweep failed", "err", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("stale-unverified-sweep"),
	)
	if err != nil {
		return nil, err
	}
	sched.Start()
	return sched, nil
}
