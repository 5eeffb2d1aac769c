package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"league-night-system/config"
	"league-night-system/models"
	"league-night-system/services"
	"league-night-system/storage"
	"league-night-system/utils"
)

// loadConfig reads and validates configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogging(cfg.Log)
	return cfg, nil
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return storage.OpenPostgres(cfg.DatabaseURL)
	case config.DriverBolt:
		return storage.NewBoltStore(cfg.DatabasePath)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// app is the wired service graph shared by every subcommand.
type app struct {
	cfg         *config.Config
	store       storage.Store
	league      *services.LeagueService
	holder      *services.SessionHolder
	broadcaster *services.NATSBroadcaster
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	strategies := map[models.Format]services.BalanceStrategy{}
	for format, name := range cfg.League.Strategies {
		f, err := models.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		s, err := services.ParseBalanceStrategy(name)
		if err != nil {
			return nil, err
		}
		strategies[f] = s
	}

	mode, err := cfg.GameMode()
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}

	publication := services.NewPublicationService(store, nil)
	a := &app{cfg: cfg, store: store}

	if cfg.Mirror.Enabled() {
		mirror, err := utils.NewR2Mirror(ctx, utils.R2Config{
			AccountID:       cfg.Mirror.AccountID,
			AccessKeyID:     cfg.Mirror.AccessKeyID,
			AccessKeySecret: cfg.Mirror.AccessKeySecret,
			Bucket:          cfg.Mirror.Bucket,
			CDNBaseURL:      cfg.Mirror.CDNBaseURL,
			ObjectKey:       cfg.Mirror.ObjectKey,
		})
		if err != nil {
			store.Close()
			return nil, err
		}
		publication.SetMirror(mirror)
		log.Info().Str("bucket", cfg.Mirror.Bucket).Msg("snapshot mirror enabled")
	}

	if cfg.Broadcast.NATSURL != "" {
		broadcaster, err := services.NewNATSBroadcaster(cfg.Broadcast.NATSURL, cfg.Broadcast.Subject)
		if err != nil {
			// Broadcast is best effort; the service runs without it.
			log.Warn().Err(err).Msg("snapshot broadcast disabled")
		} else {
			publication.SetBroadcaster(broadcaster)
			a.broadcaster = broadcaster
		}
	}

	var rules services.RuleGenerator
	if cfg.Rules.BaseURL != "" {
		rules = services.NewRuleTextClient(cfg.Rules.BaseURL, cfg.Rules.Token, cfg.Rules.Timeout, cfg.Rules.PerMinute)
	}

	randSource := services.TimeSeededRand
	if seed := cfg.League.Seed; seed != 0 {
		// Each call restarts the stream so repeated generations match.
		randSource = func() *rand.Rand { return services.NewRand(seed) }
	}

	a.league = services.NewLeagueService(services.NewRosterService(store), publication, rules, services.LeagueOptions{
		TeamNames:  cfg.League.TeamNames,
		CourtCount: cfg.League.CourtCount,
		Strategies: strategies,
		Rand:       randSource,
		Timeout:    cfg.Server.RequestTimeout,
	})

	session := services.NewSession(mode, cfg.League.TeamSize, cfg.League.PointsToWin)
	if err := a.league.LoadRoster(ctx, session); err != nil {
		log.Warn().Err(err).Msg("initial roster load failed")
	}
	a.holder = services.NewSessionHolder(session)
	return a, nil
}

func (a *app) Close() {
	if a.broadcaster != nil {
		a.broadcaster.Close()
	}
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("store close failed")
	}
}
