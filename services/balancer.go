package services

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"league-night-system/models"
)

// BalanceStrategy names one of the two team balancing algorithms.
type BalanceStrategy string

const (
	// StrategySnakeDraft buckets players into skill bands, shuffles each band
	// and deals them out in boustrophedon order.
	StrategySnakeDraft BalanceStrategy = "snake-draft"
	// StrategyRoundDraft drafts round by round from two gender queues under a
	// low-skill quota and a gender-balance rule.
	StrategyRoundDraft BalanceStrategy = "round-draft"
)

func ParseBalanceStrategy(s string) (BalanceStrategy, error) {
	switch BalanceStrategy(s) {
	case StrategySnakeDraft, StrategyRoundDraft:
		return BalanceStrategy(s), nil
	}
	return "", fmt.Errorf("%w: unknown balance strategy %q", ErrValidation, s)
}

// Gal skill offsets applied before comparison. The two strategies were tuned
// separately and intentionally use different values.
const (
	SnakeDraftGalOffset = 2.0
	RoundDraftGalOffset = 1.0
)

// LowSkillCeiling is the highest raw skill counted against the low-skill quota.
const LowSkillCeiling = 3

// DefaultTeamNames is the themed pool teams are named from.
var DefaultTeamNames = []string{
	"Net Ninjas",
	"Block Party",
	"Dig Dynasty",
	"Spike Force",
	"Ace Ventura",
	"Set Happens",
	"Side Out Squad",
	"Kill Shots",
	"Bump Kings",
	"Overpass",
	"Pancake House",
	"Floating Serves",
}

// Balancer partitions present players into teams.
type Balancer struct {
	names []string
}

// NewBalancer uses names as the team name pool, or DefaultTeamNames when empty.
func NewBalancer(names []string) *Balancer {
	if len(names) == 0 {
		names = DefaultTeamNames
	}
	return &Balancer{names: slices.Clone(names)}
}

// Balance splits players (all assumed present) into teams of roughly
// teamSize. Every player lands on exactly one team and team sizes differ by
// at most one.
func (b *Balancer) Balance(players []models.Player, teamSize int, strategy BalanceStrategy, rng *rand.Rand) ([]models.Team, error) {
	if teamSize < 1 {
		return nil, fmt.Errorf("%w: team size must be at least 1, got %d", ErrValidation, teamSize)
	}
	if len(players) < teamSize || len(players)/teamSize < 2 {
		return nil, fmt.Errorf("%w: %d players cannot form two teams of %d", ErrInsufficientPlayers, len(players), teamSize)
	}

	numTeams := len(players) / teamSize
	teams := b.namedTeams(numTeams, rng)

	switch strategy {
	case StrategySnakeDraft:
		snakeDraft(teams, players, rng)
	case StrategyRoundDraft:
		roundDraft(teams, players)
	default:
		return nil, fmt.Errorf("%w: unknown balance strategy %q", ErrValidation, strategy)
	}
	return teams, nil
}

// namedTeams shuffles the name pool and cycles through it when there are
// more teams than names.
func (b *Balancer) namedTeams(n int, rng *rand.Rand) []models.Team {
	pool := slices.Clone(b.names)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	teams := make([]models.Team, n)
	for i := range teams {
		teams[i] = models.NewTeam(pool[i%len(pool)])
	}
	return teams
}

func adjustedSkill(p models.Player, galOffset float64) float64 {
	if p.Gender == models.GenderGal {
		return float64(p.Skill) - galOffset
	}
	return float64(p.Skill)
}

// snakeOrder returns the team index visited at step i of a boustrophedon walk.
func snakeOrder(i, numTeams int) int {
	pass, pos := i/numTeams, i%numTeams
	if pass%2 == 1 {
		return numTeams - 1 - pos
	}
	return pos
}

func skillBand(adjusted float64) int {
	switch {
	case adjusted >= 8:
		return 0
	case adjusted >= 6:
		return 1
	case adjusted >= 4:
		return 2
	default:
		return 3
	}
}

func snakeDraft(teams []models.Team, players []models.Player, rng *rand.Rand) {
	var bands [4][]models.Player
	for _, p := range players {
		band := skillBand(adjustedSkill(p, SnakeDraftGalOffset))
		bands[band] = append(bands[band], p)
	}

	ordered := make([]models.Player, 0, len(players))
	for _, band := range bands {
		rng.Shuffle(len(band), func(i, j int) { band[i], band[j] = band[j], band[i] })
		ordered = append(ordered, band...)
	}

	for i, p := range ordered {
		t := snakeOrder(i, len(teams))
		teams[t].Players = append(teams[t].Players, p)
	}
}

// draftQueue is a gender queue sorted by adjusted skill, consumed from the head.
type draftQueue struct {
	gender  models.Gender
	players []models.Player
	next    int
}

func (q *draftQueue) head() (models.Player, bool) {
	if q.next >= len(q.players) {
		return models.Player{}, false
	}
	return q.players[q.next], true
}

func newDraftQueue(gender models.Gender, players []models.Player) *draftQueue {
	q := &draftQueue{gender: gender}
	for _, p := range players {
		if p.Gender == gender {
			q.players = append(q.players, p)
		}
	}
	slices.SortStableFunc(q.players, func(a, b models.Player) int {
		if c := cmp.Compare(adjustedSkill(b, RoundDraftGalOffset), adjustedSkill(a, RoundDraftGalOffset)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return q
}

type draftCandidate struct {
	queue  *draftQueue
	player models.Player
}

func roundDraft(teams []models.Team, players []models.Player) {
	numTeams := len(teams)
	baseSize, extra := len(players)/numTeams, len(players)%numTeams
	targets := make([]int, numTeams)
	for i := range targets {
		targets[i] = baseSize
		if i < extra {
			targets[i]++
		}
	}

	// Guy queue first so ties on adjusted skill resolve the same way every run.
	queues := []*draftQueue{
		newDraftQueue(models.GenderGuy, players),
		newDraftQueue(models.GenderGal, players),
	}
	lowSkill := make([]int, numTeams)
	guys := make([]int, numTeams)
	gals := make([]int, numTeams)

	remaining := len(players)
	for round := 0; remaining > 0; round++ {
		for step := 0; step < numTeams && remaining > 0; step++ {
			t := step
			if round%2 == 1 {
				t = numTeams - 1 - step
			}
			if len(teams[t].Players) >= targets[t] {
				continue
			}

			var candidates []draftCandidate
			for _, q := range queues {
				if p, ok := q.head(); ok {
					candidates = append(candidates, draftCandidate{queue: q, player: p})
				}
			}
			if len(candidates) == 0 {
				return
			}

			if lowSkill[t] >= 1 {
				candidates = preferCandidates(candidates, func(c draftCandidate) bool {
					return c.player.Skill > LowSkillCeiling
				})
			}
			switch {
			case guys[t] > gals[t]:
				candidates = preferCandidates(candidates, func(c draftCandidate) bool {
					return c.player.Gender == models.GenderGal
				})
			case gals[t] > guys[t]:
				candidates = preferCandidates(candidates, func(c draftCandidate) bool {
					return c.player.Gender == models.GenderGuy
				})
			}

			pick := candidates[0]
			for _, c := range candidates[1:] {
				if adjustedSkill(c.player, RoundDraftGalOffset) > adjustedSkill(pick.player, RoundDraftGalOffset) {
					pick = c
				}
			}

			pick.queue.next++
			remaining--
			teams[t].Players = append(teams[t].Players, pick.player)
			if pick.player.Skill <= LowSkillCeiling {
				lowSkill[t]++
			}
			if pick.player.Gender == models.GenderGal {
				gals[t]++
			} else {
				guys[t]++
			}
		}
	}
}

// preferCandidates narrows to the matching candidates when any exist.
func preferCandidates(candidates []draftCandidate, match func(draftCandidate) bool) []draftCandidate {
	var preferred []draftCandidate
	for _, c := range candidates {
		if match(c) {
			preferred = append(preferred, c)
		}
	}
	if len(preferred) == 0 {
		return candidates
	}
	return preferred
}
