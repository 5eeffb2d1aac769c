// services/scheduler.go
package services

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// StartPresenceResetScheduler checks every player out on the given cron
// schedule (typically just before play starts).
func StartPresenceResetScheduler(league *LeagueService, holder *SessionHolder, cronExpr string, clock clockwork.Clock) (gocron.Scheduler, error) {
	opts := []gocron.SchedulerOption{}
	if clock != nil {
		opts = append(opts, gocron.WithClock(clock))
	}
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			err := holder.With(func(s *Session) error {
				return league.ResetPresence(context.Background(), s)
			})
			if err != nil {
				log.Error().Err(err).Str("component", "scheduler").Msg("presence reset failed")
				return
			}
			log.Info().Str("component", "scheduler").Msg("presence reset for new session")
		}),
		gocron.WithName("presence-reset"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule presence reset %q: %w", cronExpr, err)
	}

	sched.Start()
	return sched, nil
}
