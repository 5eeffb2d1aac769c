package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LeagueFile is the optional YAML description of a league. Fields left
// empty keep the environment values.
type LeagueFile struct {
	TeamNames   []string          `yaml:"team_names"`
	Courts      int               `yaml:"courts"`
	TeamSize    int               `yaml:"team_size"`
	PointsToWin int               `yaml:"points_to_win"`
	Format      string            `yaml:"format"`
	Variant     string            `yaml:"variant"`
	Strategies  map[string]string `yaml:"strategies"`
}

func LoadLeagueFile(path string) (*LeagueFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read league file: %w", err)
	}

	var lf LeagueFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse league file: %w", err)
	}
	return &lf, nil
}

// Apply overlays the file onto the league section.
func (lf *LeagueFile) Apply(c *LeagueConfig) {
	if len(lf.TeamNames) > 0 {
		c.TeamNames = lf.TeamNames
	}
	if lf.Courts > 0 {
		c.CourtCount = lf.Courts
	}
	if lf.TeamSize > 0 {
		c.TeamSize = lf.TeamSize
	}
	if lf.PointsToWin > 0 {
		c.PointsToWin = lf.PointsToWin
	}
	if lf.Format != "" {
		c.Format = lf.Format
	}
	if lf.Variant != "" {
		c.Variant = lf.Variant
	}
	if c.Strategies == nil {
		c.Strategies = map[string]string{}
	}
	for format, strategy := range lf.Strategies {
		c.Strategies[format] = strategy
	}
}

// Load reads the environment and, when LEAGUE_FILE is set, overlays the
// league file.
func Load() (*Config, error) {
	cfg := LoadFromEnv()
	if cfg.League.File != "" {
		lf, err := LoadLeagueFile(cfg.League.File)
		if err != nil {
			return nil, err
		}
		lf.Apply(&cfg.League)
	}
	return cfg, nil
}
