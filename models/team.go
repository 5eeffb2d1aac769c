package models

import "github.com/gosimple/slug"

// Team is a point-in-time partition of present players.
type Team struct {
	Name    string   `json:"name"`
	Slug    string   `json:"slug"`
	Players []Player `json:"players"`
}

func NewTeam(name string) Team {
	return Team{
		Name:    name,
		Slug:    slug.Make(name),
		Players: []Player{},
	}
}

// SkillTotal sums raw skill across the roster.
func (t Team) SkillTotal() int {
	total := 0
	for _, p := range t.Players {
		total += p.Skill
	}
	return total
}

// GenderCounts returns the number of Guys and Gals on the team.
func (t Team) GenderCounts() (guys, gals int) {
	for _, p := range t.Players {
		if p.Gender == GenderGal {
			gals++
		} else {
			guys++
		}
	}
	return guys, gals
}

// IndexOf returns the roster position of the player with id, or -1.
func (t Team) IndexOf(playerID string) int {
	for i, p := range t.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// TeamNames extracts the names used as schedule labels.
func TeamNames(teams []Team) []string {
	names := make([]string, len(teams))
	for i, t := range teams {
		names[i] = t.Name
	}
	return names
}
