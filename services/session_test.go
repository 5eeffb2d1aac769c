package services

import (
	"errors"
	"sync"
	"testing"

	"league-night-system/models"
)

func sessionWithTeams() *Session {
	s := NewSession(models.GameMode{Format: models.FormatRoundRobin}, 2, 0)
	a := models.NewTeam("Aces")
	a.Players = []models.Player{{ID: "p1", Name: "One"}, {ID: "p2", Name: "Two"}}
	b := models.NewTeam("Blocks")
	b.Players = []models.Player{{ID: "p3", Name: "Three"}, {ID: "p4", Name: "Four"}}
	s.Teams = []models.Team{a, b}
	return s
}

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession(models.GameMode{Format: models.FormatPoolPlay}, 3, 0)
	if s.PointsToWin != models.DefaultPointsToWin {
		t.Errorf("points to win = %d, want %d", s.PointsToWin, models.DefaultPointsToWin)
	}
	if summary := s.Ledger().Save(); summary.Total != 0 {
		t.Errorf("new session ledger = %+v, want empty", summary)
	}
}

func TestSession_SwapPlayers(t *testing.T) {
	s := sessionWithTeams()
	if err := s.SwapPlayers(0, "p1", 1, "p4"); err != nil {
		t.Fatalf("SwapPlayers() error = %v", err)
	}
	if s.Teams[0].IndexOf("p4") != 0 || s.Teams[1].IndexOf("p1") != 1 {
		t.Errorf("teams after swap = %+v", s.Teams)
	}

	if err := s.SwapPlayers(0, "p3", 1, "p2"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("swap with players on wrong teams error = %v, want ErrPlayerNotFound", err)
	}
	if err := s.SwapPlayers(0, "p4", 5, "p1"); !errors.Is(err, ErrValidation) {
		t.Errorf("swap with bad team index error = %v, want ErrValidation", err)
	}
}

func TestSession_MovePlayer(t *testing.T) {
	s := sessionWithTeams()
	if err := s.MovePlayer("p2", 1); err != nil {
		t.Fatalf("MovePlayer() error = %v", err)
	}
	if len(s.Teams[0].Players) != 1 || len(s.Teams[1].Players) != 3 || s.Teams[1].IndexOf("p2") != 2 {
		t.Errorf("teams after move = %+v", s.Teams)
	}

	if err := s.MovePlayer("p2", 1); err != nil {
		t.Errorf("moving to current team error = %v, want nil", err)
	}
	if err := s.MovePlayer("ghost", 0); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("move unknown player error = %v, want ErrPlayerNotFound", err)
	}
	if err := s.MovePlayer("p1", -1); !errors.Is(err, ErrValidation) {
		t.Errorf("move to bad index error = %v, want ErrValidation", err)
	}
}

func TestSessionHolder_SerializesAccess(t *testing.T) {
	holder := NewSessionHolder(NewSession(models.GameMode{Format: models.FormatRoundRobin}, 2, 0))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			holder.With(func(s *Session) error {
				s.PointsToWin++
				return nil
			})
		}()
	}
	wg.Wait()

	holder.With(func(s *Session) error {
		if s.PointsToWin != models.DefaultPointsToWin+50 {
			t.Errorf("points to win = %d, want %d", s.PointsToWin, models.DefaultPointsToWin+50)
		}
		return nil
	})
}
