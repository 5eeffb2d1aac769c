package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"league-night-system/models"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg := LoadFromEnv()
	if cfg.Storage.Driver != DriverBolt || cfg.Server.Port != "5200" {
		t.Errorf("defaults = %+v / %+v", cfg.Storage, cfg.Server)
	}
	if cfg.League.TeamSize != 4 || cfg.League.CourtCount != 2 || cfg.League.PointsToWin != 15 {
		t.Errorf("league defaults = %+v", cfg.League)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoadFromEnv_StrategyOverrides(t *testing.T) {
	t.Setenv("BALANCE_STRATEGY_KING_OF_THE_COURT", "round-draft")
	t.Setenv("BALANCE_STRATEGY_POOL_PLAY", "snake-draft")

	cfg := LoadFromEnv()
	if cfg.League.Strategies["king-of-the-court"] != "round-draft" || cfg.League.Strategies["pool-play"] != "snake-draft" {
		t.Errorf("strategies = %v", cfg.League.Strategies)
	}
	if _, ok := cfg.League.Strategies["round-robin"]; ok {
		t.Error("unset format should not appear in strategies")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "Unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: "unknown storage driver"},
		{name: "Postgres without URL", mutate: func(c *Config) { c.Storage.Driver = DriverPostgres }, wantErr: "database_url"},
		{name: "Team size zero", mutate: func(c *Config) { c.League.TeamSize = 0 }, wantErr: "team_size"},
		{name: "Bad format", mutate: func(c *Config) { c.League.Format = "ladder" }, wantErr: "league.format"},
		{name: "Bad variant", mutate: func(c *Config) { c.League.Variant = "queen" }, wantErr: "league.variant"},
		{name: "Bad strategy", mutate: func(c *Config) { c.League.Strategies = map[string]string{"pool-play": "greedy"} }, wantErr: "unknown strategy"},
		{name: "Mirror without credentials", mutate: func(c *Config) { c.Mirror.Bucket = "league" }, wantErr: "mirror credentials"},
		{name: "Bad cron", mutate: func(c *Config) { c.Schedule.PresenceResetCron = "every tuesday" }, wantErr: "presence_reset_cron"},
		{name: "Bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log level"},
		{name: "Valid cron", mutate: func(c *Config) { c.Schedule.PresenceResetCron = "30 18 * * 2" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadFromEnv()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGameMode_VariantOnlyForKingOfTheCourt(t *testing.T) {
	cfg := LoadFromEnv()
	cfg.League.Format = "pool-play"
	cfg.League.Variant = "monarch"

	mode, err := cfg.GameMode()
	if err != nil {
		t.Fatalf("GameMode() error = %v", err)
	}
	if mode.Variant != models.VariantStandard {
		t.Errorf("variant = %q, want standard", mode.Variant)
	}

	cfg.League.Format = "king-of-the-court"
	mode, _ = cfg.GameMode()
	if mode.Variant != models.VariantMonarch {
		t.Errorf("variant = %q, want monarch", mode.Variant)
	}
}

func TestLoad_LeagueFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league.yaml")
	content := `team_names:
  - Sand Sharks
  - Dune Diggers
courts: 3
team_size: 6
format: king-of-the-court
variant: power-up-round
strategies:
  king-of-the-court: round-draft
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEAGUE_FILE", path)
	t.Setenv("POINTS_TO_WIN", "21")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	l := cfg.League
	if len(l.TeamNames) != 2 || l.TeamNames[0] != "Sand Sharks" {
		t.Errorf("team names = %v", l.TeamNames)
	}
	if l.CourtCount != 3 || l.TeamSize != 6 || l.PointsToWin != 21 {
		t.Errorf("league = %+v", l)
	}
	if l.Strategies["king-of-the-court"] != "round-draft" {
		t.Errorf("strategies = %v", l.Strategies)
	}
	mode, err := cfg.GameMode()
	if err != nil || mode.Variant != models.VariantPowerUpRound {
		t.Errorf("mode = %+v, err = %v", mode, err)
	}
}

func TestLoad_MissingLeagueFile(t *testing.T) {
	t.Setenv("LEAGUE_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Load() with missing league file expected error")
	}
}
