package models

import (
	"fmt"
	"strings"
	"time"
)

// Gender is the binary grouping used by the balancer ("Guy"/"Gal" on league night).
type Gender string

const (
	GenderGuy Gender = "Guy"
	GenderGal Gender = "Gal"
)

const (
	MinSkill = 1
	MaxSkill = 10
)

// ParseGender accepts the league labels case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guy":
		return GenderGuy, nil
	case "gal":
		return GenderGal, nil
	}
	return "", fmt.Errorf("unknown gender %q (want Guy or Gal)", s)
}

// Player is a roster entry. The roster is the single source of truth for
// player attributes; teams hold copies taken at generation time.
type Player struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;index"`
	Gender    Gender    `json:"gender" gorm:"type:varchar(8);not null"`
	Skill     int       `json:"skill" gorm:"not null;check:skill >= 1 and skill <= 10"`
	Present   bool      `json:"present" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Validate checks the attribute ranges enforced on add, edit and import.
func (p Player) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.Gender != GenderGuy && p.Gender != GenderGal {
		return fmt.Errorf("gender must be %s or %s", GenderGuy, GenderGal)
	}
	if p.Skill < MinSkill || p.Skill > MaxSkill {
		return fmt.Errorf("skill must be between %d and %d, got %d", MinSkill, MaxSkill, p.Skill)
	}
	return nil
}

// PresentPlayers returns the checked-in subset of players, preserving order.
func PresentPlayers(players []Player) []Player {
	present := make([]Player, 0, len(players))
	for _, p := range players {
		if p.Present {
			present = append(present, p)
		}
	}
	return present
}
