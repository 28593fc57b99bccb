// internal/game/cardjudge/cardjudge.go
package cardjudge

import (
	"time"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

// ID is the registry key of this game.
const ID = "cardjudge"

const (
	ActionSubmit = "submit"
	ActionJudge  = "judge"
)

// Phase durations.
const (
	CzarRevealDuration  = 3 * time.Second
	SubmittingDuration  = 60 * time.Second
	JudgingDuration     = 45 * time.Second
	RoundResultDuration = 6 * time.Second
)

const (
	HandSize           = 7
	DefaultTargetScore = 5
	minPlayers         = 3
	maxPlayers         = 8
	botFill            = 4
)

// AllowedTargetScores enumerates the target scores a room may select.
var AllowedTargetScores = []int{3, 5, 7, 10}

// CardJudge is the party game where a rotating czar picks the best answer to a prompt.
type CardJudge struct{}

// New returns the card-judging module.
func New() game.Module {
	return game.Wrap[State](CardJudge{})
}

func (CardJudge) Info() game.Info {
	return game.Info{ID: ID, Name: "Card Judge", MinPlayers: minPlayers, MaxPlayers: maxPlayers, BotFill: botFill}
}

func (CardJudge) DefaultSettings() models.Settings {
	return models.Settings{TargetScore: DefaultTargetScore}
}

func (CardJudge) NormalizeSettings(s models.Settings, _ []models.Player) models.Settings {
	if s.TargetScore == 0 {
		s.TargetScore = DefaultTargetScore
	}
	s.Teams = nil
	return s
}

func (CardJudge) ValidateSettings(s models.Settings) error {
	if game.IndexOf(AllowedTargetScores, s.TargetScore) < 0 {
		return game.ErrInvalidSetting("target score must be one of %v", AllowedTargetScores)
	}
	return nil
}

func (c CardJudge) Initialize(players []models.Player, settings models.Settings, env game.Env) (*State, []game.Event, error) {
	if len(players) < minPlayers || len(players) > maxPlayers {
		return nil, nil, game.ErrInvalidRequest("card judge needs %d to %d players", minPlayers, maxPlayers)
	}
	settings = c.NormalizeSettings(settings, players)
	if err := c.ValidateSettings(settings); err != nil {
		return nil, nil, err
	}
	s := &State{
		Seats:        make([]string, len(players)),
		BlackDeck:    game.Shuffle(env.Rand, blackCards),
		BlackDiscard: []Prompt{},
		WhiteDeck:    game.Shuffle(env.Rand, whiteCards),
		WhiteDiscard: []string{},
		Hands:        make(map[string][]string, len(players)),
		Submissions:  map[string][]string{},
		Scores:       make(map[string]int, len(players)),
		TargetScore:  settings.TargetScore,
	}
	for i, p := range players {
		s.Seats[i] = p.ID
		s.Hands[p.ID] = []string{}
		s.Scores[p.ID] = 0
	}
	return s, s.startRound(env), nil
}

func (s *State) drawWhite(env game.Env) (string, bool) {
	if len(s.WhiteDeck) == 0 {
		if len(s.WhiteDiscard) == 0 {
			return "", false
		}
		s.WhiteDeck = game.Shuffle(env.Rand, s.WhiteDiscard)
		s.WhiteDiscard = []string{}
	}
	card := s.WhiteDeck[0]
	s.WhiteDeck = s.WhiteDeck[1:]
	return card, true
}

func (s *State) drawBlack(env game.Env) Prompt {
	if len(s.BlackDeck) == 0 {
		s.BlackDeck = game.Shuffle(env.Rand, s.BlackDiscard)
		s.BlackDiscard = []Prompt{}
	}
	p := s.BlackDeck[0]
	s.BlackDeck = s.BlackDeck[1:]
	return p
}

// startRound clears the previous round, refills every hand and reveals a new prompt.
func (s *State) startRound(env game.Env) []game.Event {
	for _, id := range s.Seats {
		s.WhiteDiscard = append(s.WhiteDiscard, s.Submissions[id]...)
	}
	if s.Round > 0 {
		s.BlackDiscard = append(s.BlackDiscard, s.BlackCard)
	}
	s.Submissions = map[string][]string{}
	s.RevealOrder = []string{}

	var events []game.Event
	for _, id := range s.Seats {
		for len(s.Hands[id]) < HandSize {
			card, ok := s.drawWhite(env)
			if !ok {
				break
			}
			s.Hands[id] = append(s.Hands[id], card)
		}
		events = append(events, s.handEvent(id))
	}

	s.Round++
	s.BlackCard = s.drawBlack(env)
	s.Phase = PhaseCzarReveal
	s.PhaseEndsAt = env.After(CzarRevealDuration)
	s.BotActionAt = nil
	return append([]game.Event{s.phaseEvent()}, events...)
}

func (s *State) handEvent(id string) game.Event {
	return game.PrivateTo(id, game.EventHandUpdated, map[string]any{
		"hand": append([]string(nil), s.Hands[id]...),
	})
}

func (s *State) phaseEvent() game.Event {
	return game.Public(game.EventPhaseChanged, map[string]any{
		"phase":       s.Phase,
		"round":       s.Round,
		"czarId":      s.czar(),
		"blackCard":   s.BlackCard,
		"phaseEndsAt": s.PhaseEndsAt,
	})
}

type submitPayload struct {
	Cards []string `json:"cards"`
}

type judgePayload struct {
	WinnerID string `json:"winnerId"`
}

func (CardJudge) Apply(s *State, playerID string, a models.GameAction, env game.Env) (game.Step, error) {
	if game.IndexOf(s.Seats, playerID) < 0 {
		return game.Unchanged, game.NewError(game.CodeUnauthorized, "not seated in this game")
	}
	switch a.Type {
	case ActionSubmit:
		var p submitPayload
		if err := a.Decode(&p); err != nil {
			return game.Unchanged, game.ErrInvalidRequest("invalid submit payload")
		}
		return s.submit(playerID, p.Cards, env)
	case ActionJudge:
		var p judgePayload
		if err := a.Decode(&p); err != nil {
			return game.Unchanged, game.ErrInvalidRequest("invalid judge payload")
		}
		return s.judge(playerID, p.WinnerID, env)
	}
	return game.Unchanged, game.ErrUnknownAction(a.Type)
}

func (s *State) submit(playerID string, cards []string, env game.Env) (game.Step, error) {
	if s.Phase != PhaseSubmitting {
		return game.Unchanged, game.ErrInvalidPhase("submissions are closed")
	}
	if playerID == s.czar() {
		return game.Unchanged, game.ErrInvalidAction("the czar does not submit")
	}
	if _, ok := s.Submissions[playerID]; ok {
		return game.Unchanged, game.NewError(game.CodeAlreadySubmitted, "already submitted this round")
	}
	if len(cards) != s.BlackCard.Pick {
		return game.Unchanged, game.NewError(game.CodeInvalidSubmission, "this prompt needs %d card(s)", s.BlackCard.Pick)
	}
	hand := s.Hands[playerID]
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if seen[c] || game.IndexOf(hand, c) < 0 {
			return game.Unchanged, game.NewError(game.CodeInvalidSubmission, "card %q is not in your hand", c)
		}
		seen[c] = true
	}
	for _, c := range cards {
		hand = game.RemoveAt(hand, game.IndexOf(hand, c))
	}
	s.Hands[playerID] = hand
	s.Submissions[playerID] = append([]string(nil), cards...)

	events := []game.Event{
		game.Public(game.EventPlayerSubmitted, map[string]any{
			"playerId":  playerID,
			"submitted": len(s.Submissions),
			"expected":  len(s.Seats) - 1,
		}),
		s.handEvent(playerID),
	}
	if len(s.pending()) == 0 {
		return game.Updated(append(events, s.beginJudging(env)...)...), nil
	}
	if env.IsBot(playerID) || s.BotActionAt == nil {
		s.schedule(env)
	}
	return game.Updated(events...), nil
}

// beginJudging reveals the submissions in a shuffled order that hides who wrote what.
func (s *State) beginJudging(env game.Env) []game.Event {
	var submitted []string
	for _, id := range s.Seats {
		if _, ok := s.Submissions[id]; ok {
			submitted = append(submitted, id)
		}
	}
	s.RevealOrder = game.Shuffle(env.Rand, submitted)
	s.Phase = PhaseJudging
	s.PhaseEndsAt = env.After(JudgingDuration)
	s.schedule(env)

	reveals := make([][]string, len(s.RevealOrder))
	for i, id := range s.RevealOrder {
		reveals[i] = s.Submissions[id]
	}
	return []game.Event{
		s.phaseEvent(),
		game.Public(game.EventSubmissionsRevealed, map[string]any{
			"blackCard":   s.BlackCard,
			"submissions": reveals,
		}),
	}
}

func (s *State) judge(playerID, winnerID string, env game.Env) (game.Step, error) {
	if s.Phase != PhaseJudging {
		return game.Unchanged, game.ErrInvalidPhase("nothing to judge right now")
	}
	if playerID != s.czar() {
		return game.Unchanged, game.ErrNotYourTurn()
	}
	if _, ok := s.Submissions[winnerID]; !ok {
		return game.Unchanged, game.ErrInvalidAction("%q has no submission this round", winnerID)
	}
	return game.Updated(s.award(winnerID, false, env)...), nil
}

func (s *State) award(winnerID string, byTimer bool, env game.Env) []game.Event {
	s.Scores[winnerID]++
	s.LastRound = &RoundResult{
		Round:    s.Round,
		WinnerID: winnerID,
		Cards:    s.Submissions[winnerID],
		Prompt:   s.BlackCard,
		ByTimer:  byTimer,
	}
	s.BotActionAt = nil
	events := []game.Event{game.Public(game.EventRoundResult, map[string]any{
		"result": s.LastRound,
		"scores": s.Scores,
	})}

	if s.Scores[winnerID] >= s.TargetScore {
		s.Phase = PhaseGameOver
		s.WinnerID = winnerID
		s.PhaseEndsAt = nil
		return append(events, game.Public(game.EventGameOver, map[string]any{
			"winnerId": winnerID,
			"scores":   s.Scores,
		}))
	}
	s.Phase = PhaseRoundResult
	s.PhaseEndsAt = env.After(RoundResultDuration)
	return append(events, s.phaseEvent())
}

func (s *State) nextRound(env game.Env) []game.Event {
	s.CzarIndex = (s.CzarIndex + 1) % len(s.Seats)
	return s.startRound(env)
}

func (CardJudge) Sanitize(s *State, playerID string) any {
	return s.view(playerID)
}

func (CardJudge) ReplacePlayer(s *State, oldID, newID string, env game.Env) game.Step {
	if game.IndexOf(s.Seats, oldID) < 0 {
		return game.Unchanged
	}
	game.ReplaceID(s.Seats, oldID, newID)
	game.ReplaceID(s.RevealOrder, oldID, newID)
	game.RekeyMap(s.Hands, oldID, newID)
	game.RekeyMap(s.Submissions, oldID, newID)
	game.RekeyMap(s.Scores, oldID, newID)
	if s.LastRound != nil && s.LastRound.WinnerID == oldID {
		s.LastRound.WinnerID = newID
	}
	if s.WinnerID == oldID {
		s.WinnerID = newID
	}
	if s.BotActionAt == nil {
		s.schedule(env)
	}
	return game.Updated()
}

func (CardJudge) ShouldAdvancePhase(s *State, now time.Time) bool {
	return s.Phase != PhaseGameOver && game.Passed(s.PhaseEndsAt, now)
}

func (CardJudge) AdvancePhase(s *State, env game.Env) (game.Step, error) {
	switch s.Phase {
	case PhaseCzarReveal:
		s.Phase = PhaseSubmitting
		s.PhaseEndsAt = env.After(SubmittingDuration)
		s.schedule(env)
		return game.Updated(s.phaseEvent()), nil

	case PhaseSubmitting:
		if len(s.Submissions) == 0 {
			s.LastRound = &RoundResult{Round: s.Round, Prompt: s.BlackCard, Voided: true}
			events := []game.Event{game.Public(game.EventRoundResult, map[string]any{
				"result": s.LastRound,
				"scores": s.Scores,
			})}
			return game.Updated(append(events, s.nextRound(env)...)...), nil
		}
		return game.Updated(s.beginJudging(env)...), nil

	case PhaseJudging:
		winner := s.RevealOrder[env.Rand.Intn(len(s.RevealOrder))]
		return game.Updated(s.award(winner, true, env)...), nil

	case PhaseRoundResult:
		return game.Updated(s.nextRound(env)...), nil
	}
	return game.Unchanged, nil
}

func (CardJudge) ShouldExecuteBotAction(s *State, env game.Env) bool {
	if !game.Passed(s.BotActionAt, env.Now) {
		return false
	}
	switch s.Phase {
	case PhaseSubmitting:
		return s.pendingBot(env) != ""
	case PhaseJudging:
		return env.IsBot(s.czar())
	}
	return false
}

func (CardJudge) PlayerScores(s *State) map[string]int {
	out := make(map[string]int, len(s.Scores))
	for id, v := range s.Scores {
		out[id] = v
	}
	return out
}

func (CardJudge) GameOver(s *State) bool {
	return s.Phase == PhaseGameOver
}
