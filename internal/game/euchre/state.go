// internal/game/euchre/state.go
package euchre

import (
	"time"

	"github.com/jason-s-yu/partyhall/internal/game"
)

// Phase is the bidding/play stage of a euchre round.
type Phase string

const (
	PhaseRound1        Phase = "round1"
	PhaseRound2        Phase = "round2"
	PhaseDealerDiscard Phase = "dealer_discard"
	PhasePlaying       Phase = "playing"
	PhaseRoundOver     Phase = "round_over"
	PhaseGameOver      Phase = "game_over"
)

const (
	numSeats      = 4
	handSize      = 5
	tricksPerHand = 5
)

// Play is one card contributed to a trick.
type Play struct {
	Seat     int       `json:"seat"`
	PlayerID string    `json:"playerId"`
	Card     game.Card `json:"card"`
}

// RoundResult summarises a scored round.
type RoundResult struct {
	Round       int    `json:"round"`
	CallingTeam int    `json:"callingTeam"`
	TricksWon   [2]int `json:"tricksWon"`
	Points      int    `json:"points"`
	ScoringTeam int    `json:"scoringTeam"`
	Euchred     bool   `json:"euchred"`
	March       bool   `json:"march"`
	GoingAlone  bool   `json:"goingAlone"`
}

// State is the full euchre game. Seat s belongs to team s%2; partners sit opposite.
type State struct {
	Phase Phase    `json:"phase"`
	Seats []string `json:"seats"`
	Round int      `json:"round"`

	Hands      [][]game.Card `json:"hands"`
	Kitty      []game.Card   `json:"kitty"`
	TurnedCard game.Card     `json:"turnedCard"`

	DealerSeat           int `json:"dealerSeat"`
	CurrentTurnSeatIndex int `json:"currentTurnSeatIndex"`

	TrumpSuit    string `json:"trumpSuit,omitempty"`
	CallingTeam  int    `json:"callingTeam"`
	CallerSeat   int    `json:"callerSeat"`
	GoingAlone   bool   `json:"goingAlone"`
	InactiveSeat int    `json:"inactiveSeat"`

	CurrentTrick []Play `json:"currentTrick"`
	LastTrick    []Play `json:"lastTrick,omitempty"`
	TrickNumber  int    `json:"trickNumber"`
	TricksWon    [2]int `json:"tricksWon"`

	Scores         [2]int       `json:"scores"`
	TargetScore    int          `json:"targetScore"`
	StickTheDealer bool         `json:"stickTheDealer"`
	LastRound      *RoundResult `json:"lastRound,omitempty"`
	WinningTeam    int          `json:"winningTeam"`

	PhaseEndsAt *time.Time `json:"phaseEndsAt,omitempty"`
	BotActionAt *time.Time `json:"botActionAt,omitempty"`
}

// View is the per-player projection of State. Other hands and the kitty are hidden.
type View struct {
	Phase                Phase        `json:"phase"`
	Seats                []string     `json:"seats"`
	Round                int          `json:"round"`
	Hand                 []game.Card  `json:"hand"`
	HandCounts           []int        `json:"handCounts"`
	TurnedCard           *game.Card   `json:"turnedCard,omitempty"`
	TurnedDownSuit       string       `json:"turnedDownSuit,omitempty"`
	DealerSeat           int          `json:"dealerSeat"`
	CurrentTurnSeatIndex int          `json:"currentTurnSeatIndex"`
	TrumpSuit            string       `json:"trumpSuit,omitempty"`
	CallingTeam          int          `json:"callingTeam"`
	GoingAlone           bool         `json:"goingAlone"`
	InactiveSeat         int          `json:"inactiveSeat"`
	CurrentTrick         []Play       `json:"currentTrick"`
	LastTrick            []Play       `json:"lastTrick,omitempty"`
	TricksWon            [2]int       `json:"tricksWon"`
	Scores               [2]int       `json:"scores"`
	TargetScore          int          `json:"targetScore"`
	LastRound            *RoundResult `json:"lastRound,omitempty"`
	WinningTeam          int          `json:"winningTeam"`
	PhaseEndsAt          *time.Time   `json:"phaseEndsAt,omitempty"`
}

func (s *State) seatOf(playerID string) int {
	return game.IndexOf(s.Seats, playerID)
}

func (s *State) current() string {
	return s.Seats[s.CurrentTurnSeatIndex]
}

func (s *State) isActive(seat int) bool {
	return seat != s.InactiveSeat
}

// nextActive returns the seat after seat, skipping a lone caller's partner.
func (s *State) nextActive(seat int) int {
	next := (seat + 1) % numSeats
	if !s.isActive(next) {
		next = (next + 1) % numSeats
	}
	return next
}

func (s *State) activeSeats() int {
	if s.InactiveSeat >= 0 {
		return numSeats - 1
	}
	return numSeats
}

func (s *State) biddingOrPlaying() bool {
	switch s.Phase {
	case PhaseRound1, PhaseRound2, PhaseDealerDiscard, PhasePlaying:
		return true
	}
	return false
}

// schedule recomputes the bot deadline for whoever must act next.
func (s *State) schedule(env game.Env) {
	s.BotActionAt = nil
	if s.biddingOrPlaying() {
		s.BotActionAt = env.BotActionAt(s.current())
	}
}

func (s *State) view(playerID string) View {
	v := View{
		Phase:                s.Phase,
		Seats:                append([]string(nil), s.Seats...),
		Round:                s.Round,
		HandCounts:           make([]int, len(s.Hands)),
		DealerSeat:           s.DealerSeat,
		CurrentTurnSeatIndex: s.CurrentTurnSeatIndex,
		TrumpSuit:            s.TrumpSuit,
		CallingTeam:          s.CallingTeam,
		GoingAlone:           s.GoingAlone,
		InactiveSeat:         s.InactiveSeat,
		CurrentTrick:         s.CurrentTrick,
		LastTrick:            s.LastTrick,
		TricksWon:            s.TricksWon,
		Scores:               s.Scores,
		TargetScore:          s.TargetScore,
		LastRound:            s.LastRound,
		WinningTeam:          s.WinningTeam,
		PhaseEndsAt:          s.PhaseEndsAt,
	}
	for i, h := range s.Hands {
		v.HandCounts[i] = len(h)
	}
	if seat := s.seatOf(playerID); seat >= 0 {
		v.Hand = append([]game.Card(nil), s.Hands[seat]...)
	}
	switch s.Phase {
	case PhaseRound1:
		tc := s.TurnedCard
		v.TurnedCard = &tc
	case PhaseRound2:
		v.TurnedDownSuit = s.TurnedCard.Suit
	}
	return v
}
