package services

import (
	"fmt"

	"league-night-system/models"
)

// Ledger holds the live schedule and its entered results.
type Ledger struct {
	matches []models.Match
}

// LedgerSummary is returned by Save as the user-facing checkpoint.
type LedgerSummary struct {
	Total    int `json:"total"`
	Complete int `json:"complete"`
	Pending  int `json:"pending"`
}

func NewLedger(matches []models.Match) *Ledger {
	l := &Ledger{matches: make([]models.Match, len(matches))}
	copy(l.matches, matches)
	return l
}

// Matches returns a copy of the schedule in generation order.
func (l *Ledger) Matches() []models.Match {
	out := make([]models.Match, len(l.matches))
	copy(out, l.matches)
	return out
}

// SetResult sets or clears one side's result. No validation is applied to
// the value itself.
func (l *Ledger) SetResult(matchID string, side models.Side, value *int) (models.Match, error) {
	for i := range l.matches {
		if l.matches[i].ID != matchID {
			continue
		}
		var stored *int
		if value != nil {
			v := *value
			stored = &v
		}
		switch side {
		case models.SideA:
			l.matches[i].ResultA = stored
		case models.SideB:
			l.matches[i].ResultB = stored
		default:
			return models.Match{}, fmt.Errorf("%w: unknown side %q", ErrValidation, side)
		}
		return l.matches[i], nil
	}
	return models.Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
}

// Save confirms the current results. Results are already live, so this only
// reports where the ledger stands.
func (l *Ledger) Save() LedgerSummary {
	summary := LedgerSummary{Total: len(l.matches)}
	for _, m := range l.matches {
		if m.IsComplete() {
			summary.Complete++
		} else {
			summary.Pending++
		}
	}
	return summary
}
