package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotID is the singleton key of the published snapshot row.
const SnapshotID = "current"

const DefaultPointsToWin = 15

// Snapshot is the state shown on the public view.
type Snapshot struct {
	Teams       []Team    `json:"teams"`
	Mode        GameMode  `json:"mode"`
	Schedule    []Match   `json:"schedule"`
	ActiveRule  *RuleText `json:"active_rule"`
	PointsToWin int       `json:"points_to_win"`
	PublishedAt time.Time `json:"published_at"`
}

// DefaultSnapshot is what readers see before anything is published.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Teams:       []Team{},
		Mode:        GameMode{Format: FormatRoundRobin, Variant: VariantStandard},
		Schedule:    []Match{},
		ActiveRule:  nil,
		PointsToWin: DefaultPointsToWin,
	}
}

// PublishedSnapshot is the persisted row. Collections are stored as JSON
// text so the row stays a single record in any backend.
type PublishedSnapshot struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Format         string    `json:"format" gorm:"type:varchar(32);not null"`
	TeamsJSON      string    `json:"teams_json" gorm:"type:text"`
	ScheduleJSON   string    `json:"schedule_json" gorm:"type:text"`
	ActiveRuleJSON *string   `json:"active_rule_json,omitempty" gorm:"type:text"`
	PointsToWin    int       `json:"points_to_win" gorm:"default:15"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ToRecord serializes a snapshot into its singleton row.
func (s Snapshot) ToRecord() (*PublishedSnapshot, error) {
	teamsJSON, err := json.Marshal(s.Teams)
	if err != nil {
		return nil, fmt.Errorf("marshal teams: %w", err)
	}
	scheduleJSON, err := json.Marshal(s.Schedule)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule: %w", err)
	}

	rec := &PublishedSnapshot{
		ID:           SnapshotID,
		Format:       s.Mode.Encode(),
		TeamsJSON:    string(teamsJSON),
		ScheduleJSON: string(scheduleJSON),
		PointsToWin:  s.PointsToWin,
		CreatedAt:    s.PublishedAt,
		UpdatedAt:    s.PublishedAt,
	}
	if s.ActiveRule != nil {
		ruleJSON, err := json.Marshal(s.ActiveRule)
		if err != nil {
			return nil, fmt.Errorf("marshal active rule: %w", err)
		}
		str := string(ruleJSON)
		rec.ActiveRuleJSON = &str
	}
	return rec, nil
}

// ToSnapshot decodes a stored row.
func (r PublishedSnapshot) ToSnapshot() (*Snapshot, error) {
	mode, err := DecodeGameMode(r.Format)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Teams:       []Team{},
		Mode:        mode,
		Schedule:    []Match{},
		PointsToWin: r.PointsToWin,
		PublishedAt: r.UpdatedAt,
	}
	if r.TeamsJSON != "" {
		if err := json.Unmarshal([]byte(r.TeamsJSON), &snap.Teams); err != nil {
			return nil, fmt.Errorf("unmarshal teams: %w", err)
		}
	}
	if r.ScheduleJSON != "" {
		if err := json.Unmarshal([]byte(r.ScheduleJSON), &snap.Schedule); err != nil {
			return nil, fmt.Errorf("unmarshal schedule: %w", err)
		}
	}
	if r.ActiveRuleJSON != nil && *r.ActiveRuleJSON != "" {
		var rule RuleText
		if err := json.Unmarshal([]byte(*r.ActiveRuleJSON), &rule); err != nil {
			return nil, fmt.Errorf("unmarshal active rule: %w", err)
		}
		snap.ActiveRule = &rule
	}
	if snap.PointsToWin == 0 {
		snap.PointsToWin = DefaultPointsToWin
	}
	return snap, nil
}
