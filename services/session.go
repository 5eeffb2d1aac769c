package services

import (
	"fmt"
	"slices"
	"sync"

	"league-night-system/models"
)

// Session is the commissioner's working state for one league night. It is
// passed explicitly into every operation.
type Session struct {
	Mode        models.GameMode  `json:"mode"`
	TeamSize    int              `json:"team_size"`
	PointsToWin int              `json:"points_to_win"`
	Roster      []models.Player  `json:"roster"`
	Teams       []models.Team    `json:"teams"`
	Excluded    []models.Player  `json:"excluded"`
	ActiveRule  *models.RuleText `json:"active_rule"`

	ledger *Ledger
}

func NewSession(mode models.GameMode, teamSize, pointsToWin int) *Session {
	if pointsToWin <= 0 {
		pointsToWin = models.DefaultPointsToWin
	}
	return &Session{
		Mode:        mode,
		TeamSize:    teamSize,
		PointsToWin: pointsToWin,
		Roster:      []models.Player{},
		Teams:       []models.Team{},
		Excluded:    []models.Player{},
		ledger:      NewLedger(nil),
	}
}

// Ledger returns the result ledger of the current schedule.
func (s *Session) Ledger() *Ledger {
	if s.ledger == nil {
		s.ledger = NewLedger(nil)
	}
	return s.ledger
}

// SetSchedule replaces the ledger with a freshly generated schedule.
func (s *Session) SetSchedule(matches []models.Match) {
	s.ledger = NewLedger(matches)
}

// SwapPlayers exchanges two players between teams.
func (s *Session) SwapPlayers(teamA int, playerA string, teamB int, playerB string) error {
	if err := s.checkTeam(teamA); err != nil {
		return err
	}
	if err := s.checkTeam(teamB); err != nil {
		return err
	}
	ia := s.Teams[teamA].IndexOf(playerA)
	ib := s.Teams[teamB].IndexOf(playerB)
	if ia < 0 || ib < 0 {
		return fmt.Errorf("%w: players %s/%s not on teams %d/%d", ErrPlayerNotFound, playerA, playerB, teamA, teamB)
	}
	s.Teams[teamA].Players[ia], s.Teams[teamB].Players[ib] = s.Teams[teamB].Players[ib], s.Teams[teamA].Players[ia]
	return nil
}

// MovePlayer takes a player off whatever team holds them and appends them to
// the target team.
func (s *Session) MovePlayer(playerID string, toTeam int) error {
	if err := s.checkTeam(toTeam); err != nil {
		return err
	}
	for t := range s.Teams {
		i := s.Teams[t].IndexOf(playerID)
		if i < 0 {
			continue
		}
		if t == toTeam {
			return nil
		}
		p := s.Teams[t].Players[i]
		s.Teams[t].Players = append(s.Teams[t].Players[:i], s.Teams[t].Players[i+1:]...)
		s.Teams[toTeam].Players = append(s.Teams[toTeam].Players, p)
		return nil
	}
	return fmt.Errorf("%w: %s is not on any team", ErrPlayerNotFound, playerID)
}

// Clone returns a copy that shares no slices with s. The ledger is shared.
func (s *Session) Clone() *Session {
	out := *s
	out.Roster = slices.Clone(s.Roster)
	out.Teams = CloneTeams(s.Teams)
	out.Excluded = slices.Clone(s.Excluded)
	if s.ActiveRule != nil {
		rule := *s.ActiveRule
		out.ActiveRule = &rule
	}
	return &out
}

// CloneTeams deep-copies team rosters.
func CloneTeams(teams []models.Team) []models.Team {
	out := make([]models.Team, len(teams))
	for i, t := range teams {
		out[i] = t
		out[i].Players = slices.Clone(t.Players)
	}
	return out
}

func (s *Session) checkTeam(i int) error {
	if i < 0 || i >= len(s.Teams) {
		return fmt.Errorf("%w: team index %d out of range (have %d teams)", ErrValidation, i, len(s.Teams))
	}
	return nil
}

// SessionHolder serializes access to the single in-process session.
type SessionHolder struct {
	mu      sync.Mutex
	session *Session
}

func NewSessionHolder(s *Session) *SessionHolder {
	return &SessionHolder{session: s}
}

// With runs fn while holding the session.
func (h *SessionHolder) With(fn func(*Session) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.session)
}
