package services

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"league-night-system/models"
)

func scenarioPlayers() []models.Player {
	return []models.Player{
		{ID: "g9", Name: "Guy Nine", Gender: models.GenderGuy, Skill: 9, Present: true},
		{ID: "g7", Name: "Guy Seven", Gender: models.GenderGuy, Skill: 7, Present: true},
		{ID: "g5", Name: "Guy Five", Gender: models.GenderGuy, Skill: 5, Present: true},
		{ID: "g3", Name: "Guy Three", Gender: models.GenderGuy, Skill: 3, Present: true},
		{ID: "f8", Name: "Gal Eight", Gender: models.GenderGal, Skill: 8, Present: true},
		{ID: "f6", Name: "Gal Six", Gender: models.GenderGal, Skill: 6, Present: true},
		{ID: "f4", Name: "Gal Four", Gender: models.GenderGal, Skill: 4, Present: true},
		{ID: "f2", Name: "Gal Two", Gender: models.GenderGal, Skill: 2, Present: true},
	}
}

// generatedPlayers builds n players with skills cycling 1..10 and genders
// alternating in runs so queues empty unevenly.
func generatedPlayers(n int) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		gender := models.GenderGuy
		if i%3 == 0 {
			gender = models.GenderGal
		}
		players[i] = models.Player{
			ID:      fmt.Sprintf("p%02d", i),
			Name:    fmt.Sprintf("Player %02d", i),
			Gender:  gender,
			Skill:   i%10 + 1,
			Present: true,
		}
	}
	return players
}

func assertPartition(t *testing.T, input []models.Player, teams []models.Team) {
	t.Helper()

	seen := map[string]int{}
	minSize, maxSize := len(input), 0
	for _, team := range teams {
		for _, p := range team.Players {
			seen[p.ID]++
		}
		if len(team.Players) < minSize {
			minSize = len(team.Players)
		}
		if len(team.Players) > maxSize {
			maxSize = len(team.Players)
		}
	}

	if len(seen) != len(input) {
		t.Fatalf("teams hold %d distinct players, want %d", len(seen), len(input))
	}
	for _, p := range input {
		if seen[p.ID] != 1 {
			t.Fatalf("player %s appears %d times, want 1", p.ID, seen[p.ID])
		}
	}
	if maxSize-minSize > 1 {
		t.Fatalf("team sizes range %d..%d, want skew <= 1", minSize, maxSize)
	}
}

func TestBalance_PartitionAndSizeSkew(t *testing.T) {
	b := NewBalancer(nil)
	strategies := []BalanceStrategy{StrategySnakeDraft, StrategyRoundDraft}

	for _, strategy := range strategies {
		for n := 4; n <= 31; n++ {
			for teamSize := 2; teamSize <= n/2; teamSize++ {
				for seed := uint64(1); seed <= 3; seed++ {
					name := fmt.Sprintf("%s/n=%d/size=%d/seed=%d", strategy, n, teamSize, seed)
					players := generatedPlayers(n)
					teams, err := b.Balance(players, teamSize, strategy, NewRand(seed))
					if err != nil {
						t.Fatalf("%s: Balance() error = %v", name, err)
					}
					if len(teams) != n/teamSize {
						t.Fatalf("%s: got %d teams, want %d", name, len(teams), n/teamSize)
					}
					t.Run(name, func(t *testing.T) {
						assertPartition(t, players, teams)
					})
				}
			}
		}
	}
}

func TestBalance_ScenarioEightPlayers(t *testing.T) {
	b := NewBalancer(nil)

	for _, strategy := range []BalanceStrategy{StrategySnakeDraft, StrategyRoundDraft} {
		t.Run(string(strategy), func(t *testing.T) {
			players := scenarioPlayers()
			teams, err := b.Balance(players, 4, strategy, NewRand(42))
			if err != nil {
				t.Fatalf("Balance() error = %v", err)
			}
			if len(teams) != 2 {
				t.Fatalf("got %d teams, want 2", len(teams))
			}
			for i, team := range teams {
				if len(team.Players) != 4 {
					t.Errorf("team %d has %d players, want 4", i, len(team.Players))
				}
			}
			assertPartition(t, players, teams)
		})
	}
}

func TestBalance_RoundDraftBalancesSkillAndGender(t *testing.T) {
	teams, err := NewBalancer(nil).Balance(scenarioPlayers(), 4, StrategyRoundDraft, NewRand(7))
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}

	for i, team := range teams {
		guys, gals := team.GenderCounts()
		if guys != 2 || gals != 2 {
			t.Errorf("team %d has %d guys / %d gals, want 2/2", i, guys, gals)
		}
		if team.SkillTotal() != 22 {
			t.Errorf("team %d skill total = %d, want 22", i, team.SkillTotal())
		}
	}
}

func TestBalance_RoundDraftLowSkillQuota(t *testing.T) {
	players := []models.Player{
		{ID: "a", Name: "A", Gender: models.GenderGuy, Skill: 3, Present: true},
		{ID: "b", Name: "B", Gender: models.GenderGuy, Skill: 3, Present: true},
		{ID: "c", Name: "C", Gender: models.GenderGuy, Skill: 2, Present: true},
		{ID: "d", Name: "D", Gender: models.GenderGuy, Skill: 2, Present: true},
		{ID: "e", Name: "E", Gender: models.GenderGal, Skill: 9, Present: true},
		{ID: "f", Name: "F", Gender: models.GenderGal, Skill: 9, Present: true},
	}

	teams, err := NewBalancer(nil).Balance(players, 3, StrategyRoundDraft, NewRand(1))
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	for i, team := range teams {
		strong := 0
		for _, p := range team.Players {
			if p.Skill > LowSkillCeiling {
				strong++
			}
		}
		if strong != 1 {
			t.Errorf("team %d has %d players above the low-skill ceiling, want 1", i, strong)
		}
	}
}

func TestBalance_SnakeDraftSpreadsTopBand(t *testing.T) {
	players := []models.Player{}
	for i := 0; i < 4; i++ {
		players = append(players, models.Player{ID: fmt.Sprintf("hi%d", i), Name: "Hi", Gender: models.GenderGuy, Skill: 10, Present: true})
		players = append(players, models.Player{ID: fmt.Sprintf("lo%d", i), Name: "Lo", Gender: models.GenderGuy, Skill: 1, Present: true})
	}

	for seed := uint64(1); seed <= 10; seed++ {
		teams, err := NewBalancer(nil).Balance(players, 2, StrategySnakeDraft, NewRand(seed))
		if err != nil {
			t.Fatalf("Balance() error = %v", err)
		}
		for i, team := range teams {
			if team.SkillTotal() != 11 {
				t.Fatalf("seed %d: team %d skill total = %d, want 11", seed, i, team.SkillTotal())
			}
		}
	}
}

func TestBalance_InsufficientPlayers(t *testing.T) {
	tests := []struct {
		name     string
		players  int
		teamSize int
	}{
		{name: "Fewer players than team size", players: 3, teamSize: 4},
		{name: "Only one team possible", players: 7, teamSize: 4},
		{name: "Empty pool", players: 0, teamSize: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBalancer(nil).Balance(generatedPlayers(tt.players), tt.teamSize, StrategySnakeDraft, NewRand(1))
			if !errors.Is(err, ErrInsufficientPlayers) {
				t.Errorf("Balance() error = %v, want ErrInsufficientPlayers", err)
			}
		})
	}

	if _, err := NewBalancer(nil).Balance(generatedPlayers(8), 0, StrategySnakeDraft, NewRand(1)); !errors.Is(err, ErrValidation) {
		t.Errorf("Balance() with team size 0 error = %v, want ErrValidation", err)
	}
}

func TestBalance_TeamNamesCycleWhenPoolExhausted(t *testing.T) {
	names := []string{"Aces", "Blocks"}
	teams, err := NewBalancer(names).Balance(generatedPlayers(12), 2, StrategySnakeDraft, NewRand(3))
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if len(teams) != 6 {
		t.Fatalf("got %d teams, want 6", len(teams))
	}

	counts := map[string]int{}
	for _, team := range teams {
		counts[team.Name]++
		if team.Slug == "" {
			t.Errorf("team %q has empty slug", team.Name)
		}
	}
	if counts["Aces"] != 3 || counts["Blocks"] != 3 {
		t.Errorf("name counts = %v, want 3 each", counts)
	}
}

func TestBalance_DeterministicForSeed(t *testing.T) {
	b := NewBalancer(nil)
	for _, strategy := range []BalanceStrategy{StrategySnakeDraft, StrategyRoundDraft} {
		first, _ := b.Balance(generatedPlayers(14), 3, strategy, NewRand(99))
		second, _ := b.Balance(generatedPlayers(14), 3, strategy, NewRand(99))

		if fmt.Sprint(teamIDs(first)) != fmt.Sprint(teamIDs(second)) {
			t.Errorf("%s: same seed produced different teams", strategy)
		}
	}
}

func teamIDs(teams []models.Team) [][]string {
	out := make([][]string, len(teams))
	for i, team := range teams {
		for _, p := range team.Players {
			out[i] = append(out[i], p.ID)
		}
		sort.Strings(out[i])
		out[i] = append([]string{team.Name}, out[i]...)
	}
	return out
}

func TestSnakeOrder(t *testing.T) {
	got := make([]int, 0, 9)
	for i := 0; i < 9; i++ {
		got = append(got, snakeOrder(i, 3))
	}
	want := []int{0, 1, 2, 2, 1, 0, 0, 1, 2}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("snake order = %v, want %v", got, want)
	}
}
