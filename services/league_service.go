package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"league-night-system/models"
)

// NewRand returns a PCG-backed generator for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandSource yields a generator per generation call.
type RandSource func() *rand.Rand

// TimeSeededRand seeds from the wall clock.
func TimeSeededRand() *rand.Rand {
	return NewRand(uint64(time.Now().UnixNano()))
}

// LeagueService wires the roster, balancer, generator and publication
// gateway together around a Session.
type LeagueService struct {
	Roster      *RosterService
	Publication *PublicationService

	balancer   *Balancer
	generator  *ScheduleGenerator
	rules      RuleGenerator
	strategies map[models.Format]BalanceStrategy
	newRand    RandSource
	timeout    time.Duration
}

// LeagueOptions configures a LeagueService.
type LeagueOptions struct {
	TeamNames  []string
	CourtCount int
	Strategies map[models.Format]BalanceStrategy
	Rand       RandSource
	Timeout    time.Duration
}

func NewLeagueService(roster *RosterService, publication *PublicationService, rules RuleGenerator, opts LeagueOptions) *LeagueService {
	strategies := map[models.Format]BalanceStrategy{
		models.FormatRoundRobin:     StrategyRoundDraft,
		models.FormatPoolPlay:       StrategyRoundDraft,
		models.FormatBlindDraw:      StrategyRoundDraft,
		models.FormatKingOfTheCourt: StrategySnakeDraft,
	}
	for f, s := range opts.Strategies {
		strategies[f] = s
	}
	newRand := opts.Rand
	if newRand == nil {
		newRand = TimeSeededRand
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LeagueService{
		Roster:      roster,
		Publication: publication,
		balancer:    NewBalancer(opts.TeamNames),
		generator:   NewScheduleGenerator(opts.CourtCount),
		rules:       rules,
		strategies:  strategies,
		newRand:     newRand,
		timeout:     timeout,
	}
}

// StrategyFor returns the balancing strategy configured for a format.
func (l *LeagueService) StrategyFor(f models.Format) BalanceStrategy {
	if s, ok := l.strategies[f]; ok {
		return s
	}
	return StrategyRoundDraft
}

// LoadRoster refreshes the session's local copy of the roster.
func (l *LeagueService) LoadRoster(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	players, err := l.Roster.List(ctx, "", false)
	if err != nil {
		return err
	}
	s.Roster = players
	return nil
}

func (l *LeagueService) SetPresence(ctx context.Context, s *Session, playerID string, present bool) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.Roster.SetPresence(ctx, s.Roster, playerID, present)
}

func (l *LeagueService) ResetPresence(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.Roster.ResetAllPresence(ctx, s.Roster)
}

// GenerateTeams balances the present players. An empty strategy uses the
// one configured for the session's format.
func (l *LeagueService) GenerateTeams(s *Session, strategy BalanceStrategy) ([]models.Team, error) {
	if strategy == "" {
		strategy = l.StrategyFor(s.Mode.Format)
	}
	present := models.PresentPlayers(s.Roster)
	teams, err := l.balancer.Balance(present, s.TeamSize, strategy, l.newRand())
	if err != nil {
		return nil, err
	}
	s.Teams = teams
	log.Info().
		Str("component", "league").
		Str("strategy", string(strategy)).
		Int("players", len(present)).
		Int("teams", len(teams)).
		Msg("teams generated")
	return teams, nil
}

// GenerateSchedule builds the schedule for the session's format and resets
// the result ledger.
func (l *LeagueService) GenerateSchedule(s *Session) (*ScheduleResult, error) {
	in := ScheduleInput{
		TeamNames: models.TeamNames(s.Teams),
		Players:   models.PresentPlayers(s.Roster),
		TeamSize:  s.TeamSize,
	}
	result, err := l.generator.Generate(s.Mode.Format, in, l.newRand())
	if err != nil {
		return nil, err
	}
	s.SetSchedule(result.Matches)
	s.Excluded = result.Excluded
	if s.Excluded == nil {
		s.Excluded = []models.Player{}
	}
	log.Info().
		Str("component", "league").
		Str("format", string(s.Mode.Format)).
		Int("matches", len(result.Matches)).
		Int("excluded", len(result.Excluded)).
		Msg("schedule generated")
	return result, nil
}

// SuggestRule asks the generator for flavor text matching the session's
// variant and attaches one pick as the active rule. On failure the session
// is left untouched.
func (l *LeagueService) SuggestRule(ctx context.Context, s *Session, hint string) (*models.RuleText, error) {
	kind, ok := s.Mode.RuleKindFor()
	if !ok {
		return nil, fmt.Errorf("%w: mode %s has no rule text", ErrValidation, s.Mode.Encode())
	}
	if l.rules == nil {
		return nil, fmt.Errorf("%w: no rule generator configured", ErrGeneration)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	suggestions, err := l.rules.Generate(ctx, kind, hint)
	if err != nil {
		log.Warn().Err(err).Str("component", "league").Str("kind", string(kind)).Msg("rule generation failed")
		return nil, err
	}
	rule, err := PickRule(l.newRand(), suggestions)
	if err != nil {
		return nil, err
	}
	s.ActiveRule = rule
	return rule, nil
}

// Publish writes the session's current state as the live snapshot.
func (l *LeagueService) Publish(ctx context.Context, s *Session) (*PublishAck, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	return l.Publication.Publish(ctx, PublishRequest{
		Teams:       s.Teams,
		Mode:        s.Mode,
		Schedule:    s.Ledger().Matches(),
		ActiveRule:  s.ActiveRule,
		PointsToWin: s.PointsToWin,
	})
}
