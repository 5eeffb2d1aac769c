package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"league-night-system/handlers"
	"league-night-system/services"
	"league-night-system/workers"
)

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the commissioner API and public view",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var sched gocron.Scheduler
			if cfg.Schedule.PresenceResetCron != "" {
				sched, err = services.StartPresenceResetScheduler(a.league, a.holder, cfg.Schedule.PresenceResetCron, nil)
				if err != nil {
					return err
				}
				log.Info().Str("cron", cfg.Schedule.PresenceResetCron).Msg("presence reset scheduled")
			}

			if cfg.Feed.URL != "" {
				workers.NewRosterFeedWorker(a.league, a.holder, cfg.Feed.URL, cfg.Feed.Token, cfg.Feed.Interval).Start(ctx)
			}

			server := handlers.NewApp(handlers.AppOptions{
				AllowedOrigins:    cfg.Server.AllowedOrigins,
				CommissionerToken: cfg.Server.CommissionerToken,
				Public:            handlers.NewPublicHandler(a.league.Publication, handlers.DefaultStreamInterval, cfg.Server.RequestTimeout),
				Roster:            handlers.NewRosterHandler(a.league, a.holder),
				Session:           handlers.NewSessionHandler(a.league, a.holder),
			})

			go func() {
				if err := server.Listen(":" + cfg.Server.Port); err != nil {
					log.Error().Err(err).Msg("server error")
					stop()
				}
			}()
			log.Info().
				Str("port", cfg.Server.Port).
				Str("store", cfg.Storage.Driver).
				Str("origins", cfg.Server.AllowedOrigins).
				Msg("league night server running")

			<-ctx.Done()
			log.Info().Msg("shutting down server")
			if sched != nil {
				if err := sched.Shutdown(); err != nil {
					log.Warn().Err(err).Msg("scheduler shutdown failed")
				}
			}
			return server.ShutdownWithTimeout(10 * time.Second)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	return cmd
}

// withApp runs fn against a wired app for one-shot subcommands.
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <roster.csv>",
		Short: "Bulk import players from a name,gender,skill CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open roster file: %w", err)
				}
				defer f.Close()

				records, rejected, err := services.ParseRosterCSV(f)
				for _, r := range rejected {
					log.Warn().Int("line", r.Line).Str("reason", r.Reason).Msg("row rejected")
				}
				if err != nil {
					return err
				}

				result, err := a.league.Roster.Import(ctx, records, rejected)
				if err != nil {
					return err
				}
				for _, failure := range result.Failed {
					log.Warn().Str("row", failure).Msg("row not stored")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d players, rejected %d rows\n", len(result.Imported), len(result.Rejected))
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the roster as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				players, err := a.league.Roster.List(ctx, "", false)
				if err != nil {
					return err
				}
				return services.WriteRosterCSV(cmd.OutOrStdout(), players)
			})
		},
	}
}

func resetPresenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-presence",
		Short: "Check every player out before a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				return a.holder.With(func(s *services.Session) error {
					return a.league.ResetPresence(ctx, s)
				})
			})
		},
	}
}
