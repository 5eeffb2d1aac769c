package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/jonboulle/clockwork"

	"league-night-system/models"
)

func newTestLeague(t *testing.T, rules RuleGenerator) (*LeagueService, *Session) {
	t.Helper()
	store := newBoltStore(t)
	roster := NewRosterService(store)
	publication := NewPublicationService(store, clockwork.NewFakeClock())
	league := NewLeagueService(roster, publication, rules, LeagueOptions{
		Rand: func() *rand.Rand { return NewRand(17) },
	})

	ctx := context.Background()
	for _, p := range scenarioPlayers() {
		added, err := roster.Add(ctx, p.Name, p.Gender, p.Skill)
		if err != nil {
			t.Fatalf("Add(%s) error = %v", p.Name, err)
		}
		if err := roster.SetPresence(ctx, nil, added.ID, true); err != nil {
			t.Fatalf("SetPresence(%s) error = %v", p.Name, err)
		}
	}

	session := NewSession(models.GameMode{Format: models.FormatRoundRobin, Variant: models.VariantStandard}, 4, 0)
	if err := league.LoadRoster(ctx, session); err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	return league, session
}

func TestLeagueService_NightFlow(t *testing.T) {
	ctx := context.Background()
	league, session := newTestLeague(t, nil)

	teams, err := league.GenerateTeams(session, "")
	if err != nil {
		t.Fatalf("GenerateTeams() error = %v", err)
	}
	if len(teams) != 2 || len(teams[0].Players) != 4 || len(teams[1].Players) != 4 {
		t.Fatalf("teams = %+v, want two teams of four", teams)
	}

	result, err := league.GenerateSchedule(session)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("round robin of 2 teams = %d matches, want 1", len(result.Matches))
	}

	matchID := result.Matches[0].ID
	session.Ledger().SetResult(matchID, models.SideA, intPtr(15))
	session.Ledger().SetResult(matchID, models.SideB, intPtr(13))
	if summary := session.Ledger().Save(); summary.Complete != 1 || summary.Pending != 0 {
		t.Errorf("summary = %+v", summary)
	}

	ack, err := league.Publish(ctx, session)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if ack.Format != "round-robin" {
		t.Errorf("ack format = %q", ack.Format)
	}

	snap, err := league.Publication.FetchLatest(ctx)
	if err != nil {
		t.Fatalf("FetchLatest() error = %v", err)
	}
	if len(snap.Teams) != 2 || len(snap.Schedule) != 1 || !snap.Schedule[0].IsComplete() {
		t.Errorf("published snapshot = %+v", snap)
	}
}

func TestLeagueService_GenerateTeamsUsesPresentPlayersOnly(t *testing.T) {
	ctx := context.Background()
	league, session := newTestLeague(t, nil)

	if err := league.SetPresence(ctx, session, session.Roster[0].ID, false); err != nil {
		t.Fatalf("SetPresence() error = %v", err)
	}
	if _, err := league.GenerateTeams(session, StrategySnakeDraft); !errors.Is(err, ErrInsufficientPlayers) {
		t.Errorf("GenerateTeams() with 7 present error = %v, want ErrInsufficientPlayers", err)
	}

	if err := league.ResetPresence(ctx, session); err != nil {
		t.Fatalf("ResetPresence() error = %v", err)
	}
	if len(models.PresentPlayers(session.Roster)) != 0 {
		t.Error("presence not reset on the session roster")
	}
}

func TestLeagueService_BlindDrawReportsExcluded(t *testing.T) {
	league, session := newTestLeague(t, nil)
	session.Mode = models.GameMode{Format: models.FormatBlindDraw, Variant: models.VariantStandard}
	session.TeamSize = 3

	result, err := league.GenerateSchedule(session)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if len(result.Matches) != 1 || len(session.Excluded) != 2 {
		t.Errorf("matches = %d, excluded = %d; want 1 and 2", len(result.Matches), len(session.Excluded))
	}
}

func TestLeagueService_StrategyFor(t *testing.T) {
	league := NewLeagueService(nil, nil, nil, LeagueOptions{
		Strategies: map[models.Format]BalanceStrategy{models.FormatPoolPlay: StrategySnakeDraft},
	})

	tests := []struct {
		format models.Format
		want   BalanceStrategy
	}{
		{models.FormatRoundRobin, StrategyRoundDraft},
		{models.FormatPoolPlay, StrategySnakeDraft},
		{models.FormatBlindDraw, StrategyRoundDraft},
		{models.FormatKingOfTheCourt, StrategySnakeDraft},
	}
	for _, tt := range tests {
		if got := league.StrategyFor(tt.format); got != tt.want {
			t.Errorf("StrategyFor(%s) = %s, want %s", tt.format, got, tt.want)
		}
	}
}

func TestLeagueService_SuggestRule(t *testing.T) {
	ctx := context.Background()

	t.Run("Attaches pick for variant", func(t *testing.T) {
		rules := &stubRules{suggestions: []models.RuleText{{Name: "Crown Jewel", Description: "King serves underhand."}}}
		league, session := newTestLeague(t, rules)
		session.Mode = models.GameMode{Format: models.FormatKingOfTheCourt, Variant: models.VariantPowerUpRound}

		rule, err := league.SuggestRule(ctx, session, "")
		if err != nil {
			t.Fatalf("SuggestRule() error = %v", err)
		}
		if rule.Name != "Crown Jewel" || session.ActiveRule == nil || session.ActiveRule.Name != "Crown Jewel" {
			t.Errorf("rule = %+v, active = %+v", rule, session.ActiveRule)
		}
		if len(rules.kinds) != 1 || rules.kinds[0] != models.RuleKindPowerUp {
			t.Errorf("requested kinds = %v, want [power-up]", rules.kinds)
		}
	})

	t.Run("Failure leaves session unchanged", func(t *testing.T) {
		rules := &stubRules{err: ErrGeneration}
		league, session := newTestLeague(t, rules)
		session.Mode = models.GameMode{Format: models.FormatKingOfTheCourt, Variant: models.VariantMonarch}
		previous := &models.RuleText{Name: "Keep Me"}
		session.ActiveRule = previous

		if _, err := league.SuggestRule(ctx, session, ""); !errors.Is(err, ErrGeneration) {
			t.Fatalf("SuggestRule() error = %v, want ErrGeneration", err)
		}
		if session.ActiveRule != previous {
			t.Errorf("active rule changed on failure: %+v", session.ActiveRule)
		}
	})

	t.Run("Empty suggestions is a generation failure", func(t *testing.T) {
		league, session := newTestLeague(t, &stubRules{})
		session.Mode = models.GameMode{Format: models.FormatKingOfTheCourt, Variant: models.VariantKingsRansom}

		if _, err := league.SuggestRule(ctx, session, ""); !errors.Is(err, ErrGeneration) {
			t.Errorf("SuggestRule() error = %v, want ErrGeneration", err)
		}
		if session.ActiveRule != nil {
			t.Errorf("active rule = %+v, want nil", session.ActiveRule)
		}
	})

	t.Run("Standard mode has no rule", func(t *testing.T) {
		league, session := newTestLeague(t, &stubRules{})
		if _, err := league.SuggestRule(ctx, session, ""); !errors.Is(err, ErrValidation) {
			t.Errorf("SuggestRule() error = %v, want ErrValidation", err)
		}
	})
}
