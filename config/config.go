package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"league-night-system/models"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	League    LeagueConfig
	Rules     RulesConfig
	Mirror    MirrorConfig
	Broadcast BroadcastConfig
	Schedule  ScheduleConfig
	Feed      FeedConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port              string
	AllowedOrigins    string
	CommissionerToken string
	RequestTimeout    time.Duration
}

type StorageConfig struct {
	Driver       string
	DatabaseURL  string
	DatabasePath string
}

type LeagueConfig struct {
	File        string
	TeamNames   []string
	CourtCount  int
	TeamSize    int
	PointsToWin int
	Format      string
	Variant     string
	// Strategies maps a format name to a balance strategy name.
	Strategies map[string]string
	// Seed pins generation for reproducible nights. Zero seeds from the clock.
	Seed uint64
}

type RulesConfig struct {
	BaseURL   string
	Token     string
	PerMinute int
	Timeout   time.Duration
}

type MirrorConfig struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
	ObjectKey       string
}

func (m MirrorConfig) Enabled() bool {
	return m.Bucket != ""
}

type BroadcastConfig struct {
	NATSURL string
	Subject string
}

type ScheduleConfig struct {
	// PresenceResetCron checks everyone out before play. Empty disables it.
	PresenceResetCron string
}

// FeedConfig points at a published sign-up sheet. Empty URL disables the worker.
type FeedConfig struct {
	URL      string
	Token    string
	Interval time.Duration
}

type LogConfig struct {
	Level  string
	Pretty bool
}

const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

func LoadFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "5200"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
			CommissionerToken: os.Getenv("COMMISSIONER_TOKEN"),
			RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORE_DRIVER", DriverBolt),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			DatabasePath: getEnv("DB_PATH", "./league.db"),
		},
		League: LeagueConfig{
			File:        os.Getenv("LEAGUE_FILE"),
			CourtCount:  getEnvInt("COURT_COUNT", 2),
			TeamSize:    getEnvInt("TEAM_SIZE", 4),
			PointsToWin: getEnvInt("POINTS_TO_WIN", models.DefaultPointsToWin),
			Format:      getEnv("GAME_FORMAT", string(models.FormatRoundRobin)),
			Variant:     getEnv("GAME_VARIANT", string(models.VariantStandard)),
			Strategies:  strategiesFromEnv(),
			Seed:        uint64(getEnvInt("GENERATION_SEED", 0)),
		},
		Rules: RulesConfig{
			BaseURL:   strings.TrimRight(os.Getenv("RULE_TEXT_URL"), "/"),
			Token:     os.Getenv("RULE_TEXT_TOKEN"),
			PerMinute: getEnvInt("RULE_TEXT_PER_MINUTE", 6),
			Timeout:   getEnvDuration("RULE_TEXT_TIMEOUT", 20*time.Second),
		},
		Mirror: MirrorConfig{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET"),
			CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
			ObjectKey:       os.Getenv("R2_SNAPSHOT_KEY"),
		},
		Broadcast: BroadcastConfig{
			NATSURL: os.Getenv("NATS_URL"),
			Subject: getEnv("NATS_SUBJECT", "league.snapshot.published"),
		},
		Schedule: ScheduleConfig{
			PresenceResetCron: os.Getenv("PRESENCE_RESET_CRON"),
		},
		Feed: FeedConfig{
			URL:      os.Getenv("ROSTER_FEED_URL"),
			Token:    os.Getenv("ROSTER_FEED_TOKEN"),
			Interval: getEnvDuration("ROSTER_FEED_INTERVAL", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
	}
}

// strategiesFromEnv reads BALANCE_STRATEGY_<FORMAT>, e.g.
// BALANCE_STRATEGY_KING_OF_THE_COURT=snake-draft.
func strategiesFromEnv() map[string]string {
	out := map[string]string{}
	for _, f := range []models.Format{
		models.FormatRoundRobin, models.FormatPoolPlay, models.FormatBlindDraw, models.FormatKingOfTheCourt,
	} {
		key := "BALANCE_STRATEGY_" + strings.ToUpper(strings.ReplaceAll(string(f), "-", "_"))
		if v := os.Getenv(key); v != "" {
			out[string(f)] = v
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverBolt:
		if c.Storage.DatabasePath == "" {
			return fmt.Errorf("storage.database_path is required for the bolt driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.League.TeamSize < 1 {
		return fmt.Errorf("league.team_size must be at least 1")
	}
	if c.League.CourtCount < 1 {
		return fmt.Errorf("league.court_count must be at least 1")
	}
	if c.League.PointsToWin < 1 {
		return fmt.Errorf("league.points_to_win must be at least 1")
	}
	if _, err := c.GameMode(); err != nil {
		return err
	}
	for format, strategy := range c.League.Strategies {
		if _, err := models.ParseFormat(format); err != nil {
			return fmt.Errorf("league.strategies: %w", err)
		}
		if strategy != "snake-draft" && strategy != "round-draft" {
			return fmt.Errorf("league.strategies: unknown strategy %q for %s", strategy, format)
		}
	}

	if c.Mirror.Enabled() {
		if c.Mirror.AccountID == "" || c.Mirror.AccessKeyID == "" || c.Mirror.AccessKeySecret == "" {
			return fmt.Errorf("mirror credentials are required when R2_BUCKET is set")
		}
	}

	if c.Schedule.PresenceResetCron != "" {
		if _, err := cron.ParseStandard(c.Schedule.PresenceResetCron); err != nil {
			return fmt.Errorf("invalid presence_reset_cron: %w", err)
		}
	}

	if c.Feed.URL != "" && c.Feed.Interval <= 0 {
		return fmt.Errorf("roster_feed_interval must be positive")
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// GameMode parses the configured starting format and variant.
func (c *Config) GameMode() (models.GameMode, error) {
	format, err := models.ParseFormat(c.League.Format)
	if err != nil {
		return models.GameMode{}, fmt.Errorf("league.format: %w", err)
	}
	variant, err := models.ParseVariant(c.League.Variant)
	if err != nil {
		return models.GameMode{}, fmt.Errorf("league.variant: %w", err)
	}
	if format != models.FormatKingOfTheCourt {
		variant = models.VariantStandard
	}
	return models.GameMode{Format: format, Variant: variant}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
