// internal/game/cardjudge/state.go
package cardjudge

import (
	"time"

	"github.com/jason-s-yu/partyhall/internal/game"
)

// Phase of a card-judging round.
type Phase string

const (
	PhaseCzarReveal  Phase = "czar_reveal"
	PhaseSubmitting  Phase = "submitting"
	PhaseJudging     Phase = "judging"
	PhaseRoundResult Phase = "round_result"
	PhaseGameOver    Phase = "game_over"
)

// RoundResult records who won the last judged round.
type RoundResult struct {
	Round    int      `json:"round"`
	WinnerID string   `json:"winnerId,omitempty"`
	Cards    []string `json:"cards,omitempty"`
	Prompt   Prompt   `json:"prompt"`
	Voided   bool     `json:"voided,omitempty"`
	ByTimer  bool     `json:"byTimer,omitempty"`
}

// State is the full card-judging game.
type State struct {
	Phase     Phase    `json:"phase"`
	Seats     []string `json:"seats"`
	CzarIndex int      `json:"czarIndex"`
	Round     int      `json:"round"`

	BlackCard    Prompt   `json:"blackCard"`
	BlackDeck    []Prompt `json:"blackDeck"`
	BlackDiscard []Prompt `json:"blackDiscard"`
	WhiteDeck    []string `json:"whiteDeck"`
	WhiteDiscard []string `json:"whiteDiscard"`

	Hands       map[string][]string `json:"hands"`
	Submissions map[string][]string `json:"submissions"`
	RevealOrder []string            `json:"revealOrder"`

	Scores      map[string]int `json:"scores"`
	TargetScore int            `json:"targetScore"`
	LastRound   *RoundResult   `json:"lastRound,omitempty"`
	WinnerID    string         `json:"winnerId,omitempty"`

	PhaseEndsAt *time.Time `json:"phaseEndsAt,omitempty"`
	BotActionAt *time.Time `json:"botActionAt,omitempty"`
}

// Reveal is one anonymous submission as shown during judging.
type Reveal struct {
	Cards []string `json:"cards"`
	// PlayerID is only filled once the round has been judged.
	PlayerID string `json:"playerId,omitempty"`
}

// View is what a single player may see.
type View struct {
	Phase       Phase          `json:"phase"`
	Seats       []string       `json:"seats"`
	CzarID      string         `json:"czarId"`
	Round       int            `json:"round"`
	BlackCard   *Prompt        `json:"blackCard,omitempty"`
	Hand        []string       `json:"hand"`
	Submitted   []string       `json:"submitted"`
	MySubmitted []string       `json:"mySubmission,omitempty"`
	Reveals     []Reveal       `json:"reveals,omitempty"`
	Scores      map[string]int `json:"scores"`
	TargetScore int            `json:"targetScore"`
	LastRound   *RoundResult   `json:"lastRound,omitempty"`
	WinnerID    string         `json:"winnerId,omitempty"`
	PhaseEndsAt *time.Time     `json:"phaseEndsAt,omitempty"`
}

func (s *State) czar() string {
	return s.Seats[s.CzarIndex]
}

// pending lists the non-czar seats that still owe a submission, in seat order.
func (s *State) pending() []string {
	var out []string
	for _, id := range s.Seats {
		if id == s.czar() {
			continue
		}
		if _, ok := s.Submissions[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *State) pendingBot(env game.Env) string {
	for _, id := range s.pending() {
		if env.IsBot(id) {
			return id
		}
	}
	return ""
}

// schedule points BotActionAt at whichever bot must act next in the current phase.
func (s *State) schedule(env game.Env) {
	s.BotActionAt = nil
	switch s.Phase {
	case PhaseSubmitting:
		if id := s.pendingBot(env); id != "" {
			s.BotActionAt = env.BotActionAt(id)
		}
	case PhaseJudging:
		s.BotActionAt = env.BotActionAt(s.czar())
	}
}

func (s *State) view(playerID string) View {
	v := View{
		Phase:       s.Phase,
		Seats:       append([]string(nil), s.Seats...),
		CzarID:      s.czar(),
		Round:       s.Round,
		Hand:        append([]string(nil), s.Hands[playerID]...),
		Submitted:   []string{},
		Scores:      s.Scores,
		TargetScore: s.TargetScore,
		LastRound:   s.LastRound,
		WinnerID:    s.WinnerID,
		PhaseEndsAt: s.PhaseEndsAt,
	}
	if s.Phase != PhaseGameOver {
		bc := s.BlackCard
		v.BlackCard = &bc
	}
	for _, id := range s.Seats {
		if _, ok := s.Submissions[id]; ok {
			v.Submitted = append(v.Submitted, id)
		}
	}
	if mine, ok := s.Submissions[playerID]; ok {
		v.MySubmitted = append([]string(nil), mine...)
	}
	if s.Phase == PhaseJudging || s.Phase == PhaseRoundResult {
		for _, id := range s.RevealOrder {
			r := Reveal{Cards: append([]string(nil), s.Submissions[id]...)}
			if s.Phase == PhaseRoundResult {
				r.PlayerID = id
			}
			v.Reveals = append(v.Reveals, r)
		}
	}
	return v
}
