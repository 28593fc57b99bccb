// internal/game/euchre/euchre.go
package euchre

import (
	"time"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

// ID is the registry key of this game.
const ID = "euchre"

// Action types.
const (
	ActionPassTrump = "pass-trump"
	ActionCallTrump = "call-trump"
	ActionDiscard   = "discard"
	ActionPlayCard  = "play-card"
)

// RoundOverPause is how long the scored round stays on screen before the next deal.
const RoundOverPause = 5 * time.Second

// DefaultTargetScore is used when the room never chose one.
const DefaultTargetScore = 10

// AllowedTargetScores enumerates the target scores a room may select.
var AllowedTargetScores = []int{5, 7, 10, 11}

var ranks = []string{"9", "T", "J", "Q", "K", "A"}

// Euchre is the four-player partnership trick-taking game.
type Euchre struct{}

// New returns the euchre module.
func New() game.Module {
	return game.Wrap[State](Euchre{})
}

func (Euchre) Info() game.Info {
	return game.Info{ID: ID, Name: "Euchre", MinPlayers: numSeats, MaxPlayers: numSeats, BotFill: numSeats}
}

func (Euchre) DefaultSettings() models.Settings {
	return models.Settings{TargetScore: DefaultTargetScore}
}

// NormalizeSettings keeps the existing team assignment for players still seated and
// places everyone else into the team with room, team 0 first.
func (Euchre) NormalizeSettings(s models.Settings, players []models.Player) models.Settings {
	if s.TargetScore == 0 {
		s.TargetScore = DefaultTargetScore
	}
	seated := make(map[string]bool, len(players))
	for _, p := range players {
		seated[p.ID] = true
	}
	teams := [][]string{{}, {}}
	assigned := make(map[string]bool)
	for i := 0; i < len(s.Teams) && i < 2; i++ {
		for _, id := range s.Teams[i] {
			if seated[id] && !assigned[id] && len(teams[i]) < 2 {
				teams[i] = append(teams[i], id)
				assigned[id] = true
			}
		}
	}
	for _, p := range players {
		if assigned[p.ID] {
			continue
		}
		t := 0
		if len(teams[0]) > len(teams[1]) || len(teams[0]) == 2 {
			t = 1
		}
		if len(teams[t]) < 2 {
			teams[t] = append(teams[t], p.ID)
			assigned[p.ID] = true
		}
	}
	s.Teams = teams
	return s
}

func (Euchre) ValidateSettings(s models.Settings) error {
	if game.IndexOf(AllowedTargetScores, s.TargetScore) < 0 {
		return game.ErrInvalidSetting("target score must be one of %v", AllowedTargetScores)
	}
	if len(s.Teams) == 0 {
		return nil
	}
	if len(s.Teams) != 2 {
		return game.ErrInvalidSetting("exactly two teams are required")
	}
	seen := make(map[string]bool)
	for _, t := range s.Teams {
		if len(t) > 2 {
			return game.ErrInvalidSetting("teams hold at most two players")
		}
		for _, id := range t {
			if seen[id] {
				return game.ErrInvalidSetting("player %s is on both teams", id)
			}
			seen[id] = true
		}
	}
	return nil
}

func (e Euchre) Initialize(players []models.Player, settings models.Settings, env game.Env) (*State, []game.Event, error) {
	if len(players) != numSeats {
		return nil, nil, game.ErrInvalidRequest("euchre needs exactly %d players", numSeats)
	}
	settings = e.NormalizeSettings(settings.Clone(), players)
	if err := e.ValidateSettings(settings); err != nil {
		return nil, nil, err
	}
	t := settings.Teams
	s := &State{
		Seats:          []string{t[0][0], t[1][0], t[0][1], t[1][1]},
		TargetScore:    settings.TargetScore,
		StickTheDealer: settings.StickTheDealer,
		DealerSeat:     0,
		WinningTeam:    -1,
	}
	events := s.deal(env, false)
	return s, events, nil
}

// deal shuffles, deals five cards to each seat and turns up the top of the kitty.
func (s *State) deal(env game.Env, redeal bool) []game.Event {
	deck := game.Shuffle(env.Rand, game.NewDeck(ranks))
	hands, kitty, _ := game.Deal(deck, numSeats, handSize)
	s.Round++
	s.Hands = hands
	s.Kitty = kitty
	s.TurnedCard = kitty[0]
	s.Phase = PhaseRound1
	s.TrumpSuit = ""
	s.CallingTeam = -1
	s.CallerSeat = -1
	s.GoingAlone = false
	s.InactiveSeat = -1
	s.CurrentTrick = []Play{}
	s.LastTrick = nil
	s.TrickNumber = 0
	s.TricksWon = [2]int{}
	s.PhaseEndsAt = nil
	s.CurrentTurnSeatIndex = (s.DealerSeat + 1) % numSeats
	s.schedule(env)

	events := []game.Event{game.Public(game.EventNewRound, map[string]any{
		"round":      s.Round,
		"dealerId":   s.Seats[s.DealerSeat],
		"turnedCard": s.TurnedCard,
		"redeal":     redeal,
	})}
	return append(events, s.handEvents()...)
}

func (s *State) handEvents() []game.Event {
	events := make([]game.Event, 0, numSeats)
	for seat, id := range s.Seats {
		events = append(events, s.handEvent(seat, id))
	}
	return events
}

func (s *State) handEvent(seat int, id string) game.Event {
	return game.PrivateTo(id, game.EventHandUpdated, map[string]any{
		"hand": append([]game.Card(nil), s.Hands[seat]...),
	})
}

type callPayload struct {
	Suit    string `json:"suit"`
	GoAlone bool   `json:"goAlone"`
}

type cardPayload struct {
	Card game.Card `json:"card"`
}

func (e Euchre) Apply(s *State, playerID string, a models.GameAction, env game.Env) (game.Step, error) {
	seat := s.seatOf(playerID)
	if seat < 0 {
		return game.Unchanged, game.NewError(game.CodeUnauthorized, "not seated in this game")
	}
	switch a.Type {
	case ActionPassTrump:
		if err := s.requireTurn(seat, PhaseRound1, PhaseRound2); err != nil {
			return game.Unchanged, err
		}
		return s.pass(seat, env)
	case ActionCallTrump:
		if err := s.requireTurn(seat, PhaseRound1, PhaseRound2); err != nil {
			return game.Unchanged, err
		}
		var p callPayload
		if err := a.Decode(&p); err != nil {
			return game.Unchanged, game.ErrInvalidRequest("invalid call payload")
		}
		return s.call(seat, p, env)
	case ActionDiscard:
		if err := s.requireTurn(seat, PhaseDealerDiscard); err != nil {
			return game.Unchanged, err
		}
		var p cardPayload
		if err := a.Decode(&p); err != nil {
			return game.Unchanged, game.ErrInvalidRequest("invalid discard payload")
		}
		return s.discard(seat, p.Card, env)
	case ActionPlayCard:
		if err := s.requireTurn(seat, PhasePlaying); err != nil {
			return game.Unchanged, err
		}
		var p cardPayload
		if err := a.Decode(&p); err != nil {
			return game.Unchanged, game.ErrInvalidRequest("invalid card payload")
		}
		return s.play(seat, p.Card, env)
	}
	return game.Unchanged, game.ErrUnknownAction(a.Type)
}

func (s *State) requireTurn(seat int, phases ...Phase) error {
	ok := false
	for _, p := range phases {
		if s.Phase == p {
			ok = true
		}
	}
	if !ok {
		return game.ErrInvalidPhase("action not allowed during %s", s.Phase)
	}
	if seat != s.CurrentTurnSeatIndex {
		return game.ErrNotYourTurn()
	}
	return nil
}

func (s *State) pass(seat int, env game.Env) (game.Step, error) {
	if s.Phase == PhaseRound2 && seat == s.DealerSeat && s.StickTheDealer {
		return game.Unchanged, game.ErrInvalidAction("stick the dealer: the dealer must name trump")
	}
	events := []game.Event{game.Public(game.EventTrumpAction, map[string]any{
		"playerId": s.Seats[seat],
		"seat":     seat,
		"action":   "pass",
		"round":    s.Phase,
	})}

	if seat != s.DealerSeat {
		s.CurrentTurnSeatIndex = (seat + 1) % numSeats
		s.schedule(env)
		return game.Updated(events...), nil
	}

	if s.Phase == PhaseRound1 {
		s.Phase = PhaseRound2
		s.CurrentTurnSeatIndex = (s.DealerSeat + 1) % numSeats
		s.schedule(env)
		return game.Updated(events...), nil
	}

	// Everyone passed twice: throw the hand in and deal again from the next dealer.
	s.DealerSeat = (s.DealerSeat + 1) % numSeats
	s.Round--
	events = append(events, s.deal(env, true)...)
	return game.Updated(events...), nil
}

func (s *State) call(seat int, p callPayload, env game.Env) (game.Step, error) {
	var suit string
	if s.Phase == PhaseRound1 {
		suit = s.TurnedCard.Suit
	} else {
		if game.IndexOf(game.Suits, p.Suit) < 0 {
			return game.Unchanged, game.ErrInvalidAction("unknown suit %q", p.Suit)
		}
		if p.Suit == s.TurnedCard.Suit {
			return game.Unchanged, game.ErrInvalidAction("cannot name the turned-down suit")
		}
		suit = p.Suit
	}

	round := s.Phase
	s.TrumpSuit = suit
	s.CallerSeat = seat
	s.CallingTeam = seat % 2
	s.GoingAlone = p.GoAlone
	s.InactiveSeat = -1
	if p.GoAlone {
		s.InactiveSeat = (seat + 2) % numSeats
	}

	events := []game.Event{
		game.Public(game.EventTrumpAction, map[string]any{
			"playerId": s.Seats[seat],
			"seat":     seat,
			"action":   "call",
			"round":    round,
			"suit":     suit,
			"goAlone":  p.GoAlone,
		}),
		game.Public(game.EventTrumpConfirmed, map[string]any{
			"trumpSuit":   suit,
			"callerId":    s.Seats[seat],
			"callingTeam": s.CallingTeam,
			"goingAlone":  s.GoingAlone,
			"round":       round,
		}),
	}

	if round == PhaseRound1 && s.isActive(s.DealerSeat) {
		// The dealer picks up the turned card and must discard back down to five.
		s.Hands[s.DealerSeat] = append(s.Hands[s.DealerSeat], s.TurnedCard)
		s.Kitty = game.RemoveAt(s.Kitty, 0)
		s.Phase = PhaseDealerDiscard
		s.CurrentTurnSeatIndex = s.DealerSeat
		s.schedule(env)
		events = append(events, s.handEvent(s.DealerSeat, s.Seats[s.DealerSeat]))
		return game.Updated(events...), nil
	}

	// After a round-2 call the caller's left opponent leads.
	lead := s.nextActive(s.DealerSeat)
	if round == PhaseRound2 {
		lead = s.nextActive(seat)
	}
	events = append(events, s.startPlay(lead, env)...)
	return game.Updated(events...), nil
}

func (s *State) discard(seat int, card game.Card, env game.Env) (game.Step, error) {
	idx := game.IndexOf(s.Hands[seat], card)
	if idx < 0 {
		return game.Unchanged, game.ErrInvalidAction("card %s is not in your hand", card)
	}
	s.Hands[seat] = game.RemoveAt(s.Hands[seat], idx)
	s.Kitty = append(s.Kitty, card)
	events := []game.Event{
		game.Public(game.EventDealerDiscarded, map[string]any{"dealerId": s.Seats[seat]}),
		s.handEvent(seat, s.Seats[seat]),
	}
	events = append(events, s.startPlay(s.nextActive(s.DealerSeat), env)...)
	return game.Updated(events...), nil
}

// startPlay moves to trick play with lead opening the first trick.
func (s *State) startPlay(lead int, env game.Env) []game.Event {
	s.Phase = PhasePlaying
	s.TrickNumber = 1
	s.CurrentTrick = []Play{}
	s.CurrentTurnSeatIndex = lead
	s.schedule(env)
	return []game.Event{game.Public(game.EventTrickStarted, map[string]any{
		"trickNumber": s.TrickNumber,
		"leaderId":    s.current(),
	})}
}

func (s *State) play(seat int, card game.Card, env game.Env) (game.Step, error) {
	hand := s.Hands[seat]
	idx := game.IndexOf(hand, card)
	if idx < 0 {
		return game.Unchanged, game.ErrInvalidAction("card %s is not in your hand", card)
	}
	if len(s.CurrentTrick) > 0 {
		led := effectiveSuit(s.CurrentTrick[0].Card, s.TrumpSuit)
		if effectiveSuit(card, s.TrumpSuit) != led && hasSuit(hand, led, s.TrumpSuit) {
			return game.Unchanged, game.ErrInvalidAction("you must follow suit")
		}
	}

	s.Hands[seat] = game.RemoveAt(hand, idx)
	s.CurrentTrick = append(s.CurrentTrick, Play{Seat: seat, PlayerID: s.Seats[seat], Card: card})
	events := []game.Event{
		game.Public(game.EventCardPlayed, map[string]any{
			"playerId":    s.Seats[seat],
			"seat":        seat,
			"card":        card,
			"trickNumber": s.TrickNumber,
		}),
		s.handEvent(seat, s.Seats[seat]),
	}

	if len(s.CurrentTrick) < s.activeSeats() {
		s.CurrentTurnSeatIndex = s.nextActive(seat)
		s.schedule(env)
		return game.Updated(events...), nil
	}

	events = append(events, s.completeTrick(env)...)
	return game.Updated(events...), nil
}

func (s *State) completeTrick(env game.Env) []game.Event {
	winner := trickWinner(s.CurrentTrick, s.TrumpSuit)
	s.TricksWon[winner%2]++
	s.LastTrick = s.CurrentTrick
	s.CurrentTrick = []Play{}

	events := []game.Event{game.Public(game.EventTrickWon, map[string]any{
		"winnerId":    s.Seats[winner],
		"winnerSeat":  winner,
		"trickNumber": s.TrickNumber,
		"trick":       s.LastTrick,
		"tricksWon":   s.TricksWon,
	})}

	if s.TrickNumber == tricksPerHand {
		return append(events, s.scoreRound(env)...)
	}
	s.TrickNumber++
	s.CurrentTurnSeatIndex = winner
	s.schedule(env)
	return append(events, game.Public(game.EventTrickStarted, map[string]any{
		"trickNumber": s.TrickNumber,
		"leaderId":    s.Seats[winner],
	}))
}

func (s *State) scoreRound(env game.Env) []game.Event {
	res := scoreHand(s.CallingTeam, s.TricksWon, s.GoingAlone)
	res.Round = s.Round
	s.Scores[res.ScoringTeam] += res.Points
	s.LastRound = &res
	s.BotActionAt = nil

	events := []game.Event{game.Public(game.EventRoundOver, map[string]any{
		"result": res,
		"scores": s.Scores,
	})}

	for team, score := range s.Scores {
		if score >= s.TargetScore {
			s.Phase = PhaseGameOver
			s.WinningTeam = team
			s.PhaseEndsAt = nil
			return append(events, game.Public(game.EventGameOver, map[string]any{
				"winningTeam": team,
				"winners":     []string{s.Seats[team], s.Seats[team+2]},
				"scores":      s.Scores,
			}))
		}
	}

	s.Phase = PhaseRoundOver
	s.PhaseEndsAt = env.After(RoundOverPause)
	return events
}

// scoreHand applies the point table: 1 for three or four tricks, 2 for a march, 4 for a
// lone march, and 2 to the defenders for a euchre.
func scoreHand(callingTeam int, tricks [2]int, alone bool) RoundResult {
	res := RoundResult{CallingTeam: callingTeam, TricksWon: tricks, GoingAlone: alone}
	made := tricks[callingTeam]
	switch {
	case made == tricksPerHand:
		res.March = true
		res.ScoringTeam = callingTeam
		res.Points = 2
		if alone {
			res.Points = 4
		}
	case made >= 3:
		res.ScoringTeam = callingTeam
		res.Points = 1
	default:
		res.Euchred = true
		res.ScoringTeam = 1 - callingTeam
		res.Points = 2
	}
	return res
}

func (Euchre) Sanitize(s *State, playerID string) any {
	return s.view(playerID)
}

// ReplacePlayer hands a seat to a new identity. Hands, tricks and team membership are
// seat-indexed, so only the id references move.
func (Euchre) ReplacePlayer(s *State, oldID, newID string, env game.Env) game.Step {
	seat := s.seatOf(oldID)
	if seat < 0 {
		return game.Unchanged
	}
	game.ReplaceID(s.Seats, oldID, newID)
	for i := range s.CurrentTrick {
		if s.CurrentTrick[i].PlayerID == oldID {
			s.CurrentTrick[i].PlayerID = newID
		}
	}
	for i := range s.LastTrick {
		if s.LastTrick[i].PlayerID == oldID {
			s.LastTrick[i].PlayerID = newID
		}
	}
	// Only the seat on turn has a pending bot deadline worth recomputing.
	if seat == s.CurrentTurnSeatIndex {
		s.schedule(env)
	}
	return game.Updated()
}

func (Euchre) ShouldAdvancePhase(s *State, now time.Time) bool {
	return s.Phase == PhaseRoundOver && game.Passed(s.PhaseEndsAt, now)
}

func (Euchre) AdvancePhase(s *State, env game.Env) (game.Step, error) {
	s.DealerSeat = (s.DealerSeat + 1) % numSeats
	return game.Updated(s.deal(env, false)...), nil
}

func (Euchre) ShouldExecuteBotAction(s *State, env game.Env) bool {
	return s.biddingOrPlaying() && env.IsBot(s.current()) && game.Passed(s.BotActionAt, env.Now)
}

// PlayerScores mirrors each team's score onto both partners.
func (Euchre) PlayerScores(s *State) map[string]int {
	out := make(map[string]int, len(s.Seats))
	for seat, id := range s.Seats {
		out[id] = s.Scores[seat%2]
	}
	return out
}

func (Euchre) GameOver(s *State) bool {
	return s.Phase == PhaseGameOver
}
