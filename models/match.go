package models

// Court labels used by the generators.
const (
	CourtKing           = "King Court"
	CourtChallenger     = "Challenger Court"
	CourtChallengerLine = "Challenger Line"
)

// Match is one scheduled game. TeamA/TeamB are free-text labels: team names,
// or comma-joined player names for blind draw. Results are independently
// nullable.
type Match struct {
	ID      string `json:"id"`
	TeamA   string `json:"team_a"`
	TeamB   string `json:"team_b"`
	ResultA *int   `json:"result_a"`
	ResultB *int   `json:"result_b"`
	Court   string `json:"court"`
}

// Side selects which result of a match is being entered.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// IsComplete reports whether both results have been entered.
func (m Match) IsComplete() bool {
	return m.ResultA != nil && m.ResultB != nil
}
