// internal/models/settings.go
package models

// Settings captures the lobby configuration of a room. Only the fields meaningful to the
// room's game are used; the rest stay at their zero value. Settings are mutable only while
// the room is waiting.
type Settings struct {
	// TargetScore ends trick-taking and judging games once reached.
	TargetScore int `json:"targetScore,omitempty"`

	// Teams holds two disjoint pairs of player ids for partnership games.
	Teams [][]string `json:"teams,omitempty"`

	// StickTheDealer forbids the dealer from passing in the second bidding round.
	StickTheDealer bool `json:"stickTheDealer,omitempty"`

	// TurnSeconds bounds each turn for timed games; 0 means no limit.
	TurnSeconds int `json:"turnSeconds,omitempty"`

	// Difficulty selects the minesweeper board preset.
	Difficulty string `json:"difficulty,omitempty"`
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	out := s
	if s.Teams != nil {
		out.Teams = make([][]string, len(s.Teams))
		for i, t := range s.Teams {
			out.Teams[i] = append([]string(nil), t...)
		}
	}
	return out
}

// TeamOf returns the team index holding playerID, or -1.
func (s Settings) TeamOf(playerID string) int {
	for i, t := range s.Teams {
		for _, id := range t {
			if id == playerID {
				return i
			}
		}
	}
	return -1
}
