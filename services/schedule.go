package services

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"league-night-system/models"
)

// DefaultCourtCount is the size of the rotating court set.
const DefaultCourtCount = 2

// ScheduleInput carries what the generators consume: team names for round
// robin, pool play and KOTC, the present players for blind draw.
type ScheduleInput struct {
	TeamNames []string
	Players   []models.Player
	TeamSize  int
}

// ScheduleResult is the generated schedule. Excluded lists blind-draw
// leftovers that did not fit into a full match.
type ScheduleResult struct {
	Matches  []models.Match  `json:"matches"`
	Excluded []models.Player `json:"excluded,omitempty"`
}

// ScheduleGenerator builds match lists for each format.
type ScheduleGenerator struct {
	courts []string
}

// NewScheduleGenerator labels courts "Court 1".."Court n". Counts below one
// fall back to DefaultCourtCount.
func NewScheduleGenerator(courtCount int) *ScheduleGenerator {
	if courtCount < 1 {
		courtCount = DefaultCourtCount
	}
	courts := make([]string, courtCount)
	for i := range courts {
		courts[i] = fmt.Sprintf("Court %d", i+1)
	}
	return &ScheduleGenerator{courts: courts}
}

// Generate dispatches on format. Pool play uses the round robin procedure.
func (g *ScheduleGenerator) Generate(format models.Format, in ScheduleInput, rng *rand.Rand) (*ScheduleResult, error) {
	switch format {
	case models.FormatRoundRobin, models.FormatPoolPlay:
		matches, err := g.RoundRobin(in.TeamNames, rng)
		if err != nil {
			return nil, err
		}
		return &ScheduleResult{Matches: matches}, nil
	case models.FormatBlindDraw:
		return g.BlindDraw(in.Players, in.TeamSize, rng)
	case models.FormatKingOfTheCourt:
		return &ScheduleResult{Matches: g.KingOfTheCourt(in.TeamNames, rng)}, nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", ErrValidation, format)
}

// RoundRobin pairs every team with every other team once, shuffles the
// pairings and rotates them across the courts.
func (g *ScheduleGenerator) RoundRobin(teamNames []string, rng *rand.Rand) ([]models.Match, error) {
	if len(teamNames) < 2 {
		return nil, fmt.Errorf("%w: round robin needs at least 2 teams, have %d", ErrInsufficientTeams, len(teamNames))
	}

	matches := make([]models.Match, 0, len(teamNames)*(len(teamNames)-1)/2)
	for i := 0; i < len(teamNames); i++ {
		for j := i + 1; j < len(teamNames); j++ {
			matches = append(matches, newMatch(teamNames[i], teamNames[j], ""))
		}
	}

	rng.Shuffle(len(matches), func(i, j int) { matches[i], matches[j] = matches[j], matches[i] })
	g.assignCourts(matches)
	return matches, nil
}

// BlindDraw shuffles individual players into ad-hoc sides of teamSize.
// Players left over once fewer than two sides remain are dropped from the
// schedule and reported in Excluded.
func (g *ScheduleGenerator) BlindDraw(players []models.Player, teamSize int, rng *rand.Rand) (*ScheduleResult, error) {
	if teamSize < 1 {
		return nil, fmt.Errorf("%w: team size must be at least 1, got %d", ErrValidation, teamSize)
	}
	perMatch := 2 * teamSize
	if len(players) < perMatch {
		return nil, fmt.Errorf("%w: blind draw needs at least %d players, have %d", ErrInsufficientPlayers, perMatch, len(players))
	}

	pool := make([]models.Player, len(players))
	copy(pool, players)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	var matches []models.Match
	for len(pool) >= perMatch {
		sideA, sideB := pool[:teamSize], pool[teamSize:perMatch]
		matches = append(matches, newMatch(joinNames(sideA), joinNames(sideB), ""))
		pool = pool[perMatch:]
	}
	g.assignCourts(matches)

	result := &ScheduleResult{Matches: matches}
	if len(pool) > 0 {
		result.Excluded = pool
	}
	return result, nil
}

// KingOfTheCourt builds the ladder: King Court, Challenger Court, then one
// placeholder match per waiting team. Fewer than two teams yields an empty
// schedule.
func (g *ScheduleGenerator) KingOfTheCourt(teamNames []string, rng *rand.Rand) []models.Match {
	if len(teamNames) < 2 {
		return []models.Match{}
	}

	queue := make([]string, len(teamNames))
	copy(queue, teamNames)
	rng.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })

	matches := []models.Match{newMatch(queue[0], queue[1], models.CourtKing)}
	queue = queue[2:]
	if len(queue) >= 2 {
		matches = append(matches, newMatch(queue[0], queue[1], models.CourtChallenger))
		queue = queue[2:]
	}
	for k, team := range queue {
		matches = append(matches, newMatch(team, fmt.Sprintf("Waiting #%d", k+1), models.CourtChallengerLine))
	}
	return matches
}

// assignCourts walks the list in court-sized chunks.
func (g *ScheduleGenerator) assignCourts(matches []models.Match) {
	for i := range matches {
		matches[i].Court = g.courts[i%len(g.courts)]
	}
}

func newMatch(teamA, teamB, court string) models.Match {
	return models.Match{
		ID:    uuid.NewString(),
		TeamA: teamA,
		TeamB: teamB,
		Court: court,
	}
}

func joinNames(players []models.Player) string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
