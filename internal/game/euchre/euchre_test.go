// internal/game/euchre/euchre_test.go
package euchre

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEnv(bots ...string) game.Env {
	set := make(map[string]bool)
	for _, b := range bots {
		set[b] = true
	}
	return game.Env{Now: testNow, Rand: rand.New(rand.NewSource(7)), Bots: set}
}

func testPlayers() []models.Player {
	return []models.Player{{ID: "p0"}, {ID: "p1"}, {ID: "p2"}, {ID: "p3"}}
}

// newGame deals a fresh game whose seats follow the default team split p0/p2 vs p1/p3.
func newGame(t *testing.T, settings models.Settings) *State {
	t.Helper()
	s, events, err := Euchre{}.Initialize(testPlayers(), settings, testEnv())
	require.NoError(t, err)
	require.NotEmpty(t, events)
	return s
}

func snapshot(t *testing.T, s *State) string {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}

func act(actionType string, payload any) models.GameAction {
	return models.NewGameAction(actionType, payload)
}

func card(s string) game.Card {
	c, _ := game.ParseCard(s)
	return c
}

func cards(ss ...string) []game.Card {
	out := make([]game.Card, len(ss))
	for i, s := range ss {
		out[i] = card(s)
	}
	return out
}

// playingState builds a hand already in trick play with seat 0 leading.
func playingState(trump string, callingTeam int, hands ...[]game.Card) *State {
	return &State{
		Phase:                PhasePlaying,
		Seats:                []string{"p0", "p1", "p2", "p3"},
		Round:                1,
		Hands:                hands,
		DealerSeat:           3,
		CurrentTurnSeatIndex: 0,
		TrumpSuit:            trump,
		CallingTeam:          callingTeam,
		CallerSeat:           callingTeam,
		InactiveSeat:         -1,
		CurrentTrick:         []Play{},
		TrickNumber:          1,
		TargetScore:          10,
		WinningTeam:          -1,
	}
}

func playTrick(t *testing.T, s *State, plays ...string) {
	t.Helper()
	for _, c := range plays {
		id := s.current()
		_, err := Euchre{}.Apply(s, id, act(ActionPlayCard, cardPayload{Card: card(c)}), testEnv())
		require.NoError(t, err, "seat %s playing %s", id, c)
	}
}

func TestInitializeDeal(t *testing.T) {
	s := newGame(t, models.Settings{})

	assert.Equal(t, PhaseRound1, s.Phase)
	assert.Equal(t, []string{"p0", "p1", "p2", "p3"}, s.Seats)
	assert.Equal(t, 1, s.CurrentTurnSeatIndex, "left of the dealer bids first")
	assert.Len(t, s.Kitty, 4)
	assert.Equal(t, s.Kitty[0], s.TurnedCard)

	seen := make(map[game.Card]bool)
	for _, h := range s.Hands {
		require.Len(t, h, handSize)
		for _, c := range h {
			assert.False(t, seen[c], "duplicate card %s", c)
			seen[c] = true
		}
	}
	for _, c := range s.Kitty {
		assert.False(t, seen[c])
	}
}

func TestSeatsFollowTeams(t *testing.T) {
	settings := models.Settings{TargetScore: 10, Teams: [][]string{{"p0", "p1"}, {"p2", "p3"}}}
	s := newGame(t, settings)
	assert.Equal(t, []string{"p0", "p2", "p1", "p3"}, s.Seats, "partners sit opposite")
}

func TestOutOfTurnLeavesStateUntouched(t *testing.T) {
	s := newGame(t, models.Settings{})
	before := snapshot(t, s)

	_, err := Euchre{}.Apply(s, "p2", act(ActionPassTrump, nil), testEnv())
	ge, ok := game.AsError(err)
	require.True(t, ok)
	assert.Equal(t, game.CodeNotYourTurn, ge.Code)
	assert.Equal(t, before, snapshot(t, s))

	_, err = Euchre{}.Apply(s, "p1", act(ActionPlayCard, cardPayload{Card: s.Hands[1][0]}), testEnv())
	ge, ok = game.AsError(err)
	require.True(t, ok)
	assert.Equal(t, game.CodeInvalidPhase, ge.Code)
	assert.Equal(t, before, snapshot(t, s))
}

func TestModuleRejectsWithoutChangingEncodedState(t *testing.T) {
	m := New()
	out, err := m.Initialize(testPlayers(), models.Settings{}, testEnv())
	require.NoError(t, err)

	_, err = m.ProcessAction(out.State, "p3", act(ActionPassTrump, nil), testEnv())
	require.Error(t, err)

	next, err := m.ProcessAction(out.State, "p1", act(ActionPassTrump, nil), testEnv())
	require.NoError(t, err)
	assert.True(t, next.Changed)
	assert.NotEqual(t, string(out.State), string(next.State))
	for _, ev := range next.Events {
		assert.Equal(t, ID, ev.GameID)
	}
}

func TestAllPassRound1MovesToRound2(t *testing.T) {
	s := newGame(t, models.Settings{})
	for _, id := range []string{"p1", "p2", "p3", "p0"} {
		_, err := Euchre{}.Apply(s, id, act(ActionPassTrump, nil), testEnv())
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseRound2, s.Phase)
	assert.Equal(t, 1, s.CurrentTurnSeatIndex)

	_, err := Euchre{}.Apply(s, "p1", act(ActionCallTrump, callPayload{Suit: s.TurnedCard.Suit}), testEnv())
	ge, ok := game.AsError(err)
	require.True(t, ok)
	assert.Equal(t, game.CodeInvalidAction, ge.Code, "turned-down suit cannot be named")
}

func TestAllPassRound2Redeals(t *testing.T) {
	s := newGame(t, models.Settings{})
	for i := 0; i < 8; i++ {
		_, err := Euchre{}.Apply(s, s.current(), act(ActionPassTrump, nil), testEnv())
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseRound1, s.Phase)
	assert.Equal(t, 1, s.DealerSeat, "deal passes to the left")
	assert.Equal(t, 1, s.Round, "a thrown-in hand is not a new round")
	assert.Equal(t, 2, s.CurrentTurnSeatIndex)
}

func TestStickTheDealerForbidsFinalPass(t *testing.T) {
	s := newGame(t, models.Settings{TargetScore: 10, StickTheDealer: true})
	for i := 0; i < 7; i++ {
		_, err := Euchre{}.Apply(s, s.current(), act(ActionPassTrump, nil), testEnv())
		require.NoError(t, err)
	}
	require.Equal(t, PhaseRound2, s.Phase)
	require.Equal(t, s.DealerSeat, s.CurrentTurnSeatIndex)

	before := snapshot(t, s)
	_, err := Euchre{}.Apply(s, s.current(), act(ActionPassTrump, nil), testEnv())
	ge, ok := game.AsError(err)
	require.True(t, ok)
	assert.Equal(t, game.CodeInvalidAction, ge.Code)
	assert.Equal(t, before, snapshot(t, s))

	suit := game.Spades
	if s.TurnedCard.Suit == game.Spades {
		suit = game.Hearts
	}
	_, err = Euchre{}.Apply(s, s.current(), act(ActionCallTrump, callPayload{Suit: suit}), testEnv())
	require.NoError(t, err)
	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Equal(t, suit, s.TrumpSuit)
}

func TestOrderUpAndDealerDiscard(t *testing.T) {
	s := newGame(t, models.Settings{})
	turned := s.TurnedCard

	_, err := Euchre{}.Apply(s, "p1", act(ActionCallTrump, callPayload{}), testEnv())
	require.NoError(t, err)
	assert.Equal(t, PhaseDealerDiscard, s.Phase)
	assert.Equal(t, turned.Suit, s.TrumpSuit)
	assert.Equal(t, 1, s.CallingTeam)
	assert.Equal(t, 0, s.CurrentTurnSeatIndex, "dealer discards")
	require.Len(t, s.Hands[0], 6)
	assert.Contains(t, s.Hands[0], turned)

	_, err = Euchre{}.Apply(s, "p0", act(ActionDiscard, cardPayload{Card: card("XX")}), testEnv())
	require.Error(t, err)

	_, err = Euchre{}.Apply(s, "p0", act(ActionDiscard, cardPayload{Card: s.Hands[0][0]}), testEnv())
	require.NoError(t, err)
	assert.Len(t, s.Hands[0], 5)
	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Equal(t, 1, s.CurrentTurnSeatIndex, "left of dealer leads")
}

func TestGoingAloneSkipsPartner(t *testing.T) {
	s := newGame(t, models.Settings{})
	_, err := Euchre{}.Apply(s, "p1", act(ActionPassTrump, nil), testEnv())
	require.NoError(t, err)
	// p2 goes alone: p0, the dealer, sits out and does not pick up.
	_, err = Euchre{}.Apply(s, "p2", act(ActionCallTrump, callPayload{GoAlone: true}), testEnv())
	require.NoError(t, err)

	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Equal(t, 0, s.InactiveSeat)
	assert.Len(t, s.Hands[0], 5)
	assert.Equal(t, 1, s.CurrentTurnSeatIndex)

	for i := 0; i < 3; i++ {
		seat := s.CurrentTurnSeatIndex
		assert.NotEqual(t, 0, seat, "inactive partner never plays")
		legal := legalCards(s.Hands[seat], s.CurrentTrick, s.TrumpSuit)
		_, err := Euchre{}.Apply(s, s.current(), act(ActionPlayCard, cardPayload{Card: legal[0]}), testEnv())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.TrickNumber, "three cards complete a lone trick")
	assert.Len(t, s.LastTrick, 3)
}

// toRound2Call passes every seat in round 1 and the first two in round 2, leaving seat 3
// to name a suit other than the turned-down one.
func toRound2Call(t *testing.T) (*State, string) {
	t.Helper()
	s := newGame(t, models.Settings{})
	for i := 0; i < 6; i++ {
		_, err := Euchre{}.Apply(s, s.current(), act(ActionPassTrump, nil), testEnv())
		require.NoError(t, err)
	}
	require.Equal(t, PhaseRound2, s.Phase)
	require.Equal(t, 3, s.CurrentTurnSeatIndex)
	suit := game.Spades
	if s.TurnedCard.Suit == game.Spades {
		suit = game.Hearts
	}
	return s, suit
}

func TestRound2CallerLeftOpponentLeads(t *testing.T) {
	s, suit := toRound2Call(t)
	_, err := Euchre{}.Apply(s, "p3", act(ActionCallTrump, callPayload{Suit: suit}), testEnv())
	require.NoError(t, err)

	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Equal(t, 0, s.DealerSeat)
	assert.Equal(t, 0, s.CurrentTurnSeatIndex, "the caller's left opponent leads")
	assert.Len(t, s.Hands[0], 5, "no pick-up after a round-2 call")
}

func TestRound2AloneCallSkipsPartnerAfterLead(t *testing.T) {
	s, suit := toRound2Call(t)
	_, err := Euchre{}.Apply(s, "p3", act(ActionCallTrump, callPayload{Suit: suit, GoAlone: true}), testEnv())
	require.NoError(t, err)

	assert.Equal(t, 1, s.InactiveSeat)
	assert.Equal(t, 0, s.CurrentTurnSeatIndex)

	var order []int
	for i := 0; i < 3; i++ {
		seat := s.CurrentTurnSeatIndex
		order = append(order, seat)
		legal := legalCards(s.Hands[seat], s.CurrentTrick, s.TrumpSuit)
		_, err := Euchre{}.Apply(s, s.current(), act(ActionPlayCard, cardPayload{Card: legal[0]}), testEnv())
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 2, 3}, order, "the lone caller's partner never plays")
	assert.Equal(t, 2, s.TrickNumber)
}

func TestMustFollowSuitCountingLeftBower(t *testing.T) {
	s := playingState(game.Hearts, 0,
		cards("AC", "AS", "9D", "TD", "QD"),
		cards("9C", "9S", "JH", "JD", "AH"),
		cards("TC", "TS", "KD", "JC", "JS"),
		cards("QC", "QS", "AD", "KC", "KS"),
	)
	playTrick(t, s, "9D")

	// p1 holds no diamonds: the jack of diamonds is a heart while hearts are trump.
	_, err := Euchre{}.Apply(s, "p1", act(ActionPlayCard, cardPayload{Card: card("JH")}), testEnv())
	require.NoError(t, err)

	before := snapshot(t, s)
	_, err = Euchre{}.Apply(s, "p2", act(ActionPlayCard, cardPayload{Card: card("TC")}), testEnv())
	ge, ok := game.AsError(err)
	require.True(t, ok, "p2 holds the king of diamonds")
	assert.Equal(t, game.CodeInvalidAction, ge.Code)
	assert.Equal(t, before, snapshot(t, s))
}

func TestMarchScoresTwo(t *testing.T) {
	s := playingState(game.Hearts, 0,
		cards("JH", "JD", "AH", "KH", "QH"),
		cards("9C", "TC", "QC", "KC", "AC"),
		cards("9S", "TS", "QS", "KS", "AS"),
		cards("9D", "TD", "QD", "KD", "AD"),
	)
	playTrick(t, s, "JH", "9C", "9S", "9D")
	playTrick(t, s, "JD", "TC", "TS", "TD")
	playTrick(t, s, "AH", "QC", "QS", "QD")
	playTrick(t, s, "KH", "KC", "KS", "KD")
	playTrick(t, s, "QH", "AC", "AS", "AD")

	require.NotNil(t, s.LastRound)
	assert.True(t, s.LastRound.March)
	assert.Equal(t, [2]int{5, 0}, s.TricksWon)
	assert.Equal(t, [2]int{2, 0}, s.Scores)
	assert.Equal(t, PhaseRoundOver, s.Phase)
	require.NotNil(t, s.PhaseEndsAt)
	assert.Equal(t, testNow.Add(RoundOverPause), *s.PhaseEndsAt)
}

func TestEuchreScoresDefenders(t *testing.T) {
	s := playingState(game.Hearts, 0,
		cards("AC", "AS", "9D", "TD", "QD"),
		cards("9C", "9S", "JH", "JD", "AH"),
		cards("TC", "TS", "KD", "JC", "JS"),
		cards("QC", "QS", "AD", "KC", "KS"),
	)
	playTrick(t, s, "AC", "9C", "TC", "QC")
	playTrick(t, s, "AS", "9S", "TS", "QS")
	playTrick(t, s, "9D", "JH", "KD", "AD")
	playTrick(t, s, "JD", "JC", "KC", "TD")
	playTrick(t, s, "AH", "JS", "KS", "QD")

	require.NotNil(t, s.LastRound)
	assert.True(t, s.LastRound.Euchred)
	assert.Equal(t, [2]int{2, 3}, s.TricksWon)
	assert.Equal(t, [2]int{0, 2}, s.Scores)
}

func TestScoreTable(t *testing.T) {
	cases := []struct {
		name    string
		tricks  [2]int
		alone   bool
		team    int
		points  int
		euchred bool
	}{
		{"three tricks", [2]int{3, 2}, false, 0, 1, false},
		{"four tricks", [2]int{4, 1}, false, 0, 1, false},
		{"march", [2]int{5, 0}, false, 0, 2, false},
		{"lone march", [2]int{5, 0}, true, 0, 4, false},
		{"lone three", [2]int{3, 2}, true, 0, 1, false},
		{"euchre", [2]int{2, 3}, false, 1, 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := scoreHand(0, tc.tricks, tc.alone)
			assert.Equal(t, tc.team, res.ScoringTeam)
			assert.Equal(t, tc.points, res.Points)
			assert.Equal(t, tc.euchred, res.Euchred)
		})
	}
}

func TestGameOverAtTargetScore(t *testing.T) {
	s := playingState(game.Hearts, 0,
		cards("JH", "JD", "AH", "KH", "QH"),
		cards("9C", "TC", "QC", "KC", "AC"),
		cards("9S", "TS", "QS", "KS", "AS"),
		cards("9D", "TD", "QD", "KD", "AD"),
	)
	s.Scores = [2]int{9, 4}
	playTrick(t, s, "JH", "9C", "9S", "9D")
	playTrick(t, s, "JD", "TC", "TS", "TD")
	playTrick(t, s, "AH", "QC", "QS", "QD")
	playTrick(t, s, "KH", "KC", "KS", "KD")
	playTrick(t, s, "QH", "AC", "AS", "AD")

	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.Equal(t, 0, s.WinningTeam)
	assert.Nil(t, s.PhaseEndsAt)
	assert.Equal(t, map[string]int{"p0": 11, "p1": 4, "p2": 11, "p3": 4}, Euchre{}.PlayerScores(s))
}

func TestRoundOverAdvancesAfterDeadline(t *testing.T) {
	s := newGame(t, models.Settings{})
	s.Phase = PhaseRoundOver
	s.PhaseEndsAt = ptr(testNow.Add(time.Second))

	assert.False(t, Euchre{}.ShouldAdvancePhase(s, testNow))
	assert.True(t, Euchre{}.ShouldAdvancePhase(s, testNow.Add(time.Second)))

	_, err := Euchre{}.AdvancePhase(s, testEnv())
	require.NoError(t, err)
	assert.Equal(t, PhaseRound1, s.Phase)
	assert.Equal(t, 2, s.Round)
	assert.Equal(t, 1, s.DealerSeat)
}

func TestReplacePlayerKeepsSeatAndHand(t *testing.T) {
	s := newGame(t, models.Settings{})
	hand := append([]game.Card(nil), s.Hands[1]...)

	step := Euchre{}.ReplacePlayer(s, "p1", "bot-1", testEnv("bot-1"))
	assert.True(t, step.Changed)
	assert.Equal(t, "bot-1", s.Seats[1])
	assert.Equal(t, hand, s.Hands[1])
	require.NotNil(t, s.BotActionAt, "the bot inherits the pending turn")
	assert.True(t, s.BotActionAt.After(testNow))
}

func TestReplacePlayerOffTurnKeepsBotDeadline(t *testing.T) {
	s := newGame(t, models.Settings{})
	require.Equal(t, 1, s.CurrentTurnSeatIndex)
	at := testNow.Add(2 * time.Second)
	s.BotActionAt = &at

	step := Euchre{}.ReplacePlayer(s, "p3", "bot-3", testEnv("p1", "bot-3"))
	assert.True(t, step.Changed)
	assert.Equal(t, "bot-3", s.Seats[3])
	require.NotNil(t, s.BotActionAt)
	assert.True(t, at.Equal(*s.BotActionAt), "another seat's pending deadline is untouched")
}

func TestBotsPlayToCompletion(t *testing.T) {
	m := New()
	bots := []string{"p0", "p1", "p2", "p3"}
	env := testEnv(bots...)
	out, err := m.Initialize(testPlayers(), models.Settings{TargetScore: 5}, env)
	require.NoError(t, err)
	state := out.State

	for i := 0; i < 5000; i++ {
		env.Now = env.Now.Add(3 * time.Second)
		due, err := m.Due(state, env)
		require.NoError(t, err)
		switch due {
		case game.DueAdvance:
			next, err := m.AdvancePhase(state, env)
			require.NoError(t, err)
			state = next.State
		case game.DueBot:
			pid, action, err := m.BotAction(state, env)
			require.NoError(t, err)
			next, err := m.ProcessAction(state, pid, action, env)
			require.NoError(t, err, "bot %s %s", pid, action.Type)
			state = next.State
		default:
			var s State
			require.NoError(t, json.Unmarshal(state, &s))
			if s.Phase != PhaseGameOver {
				require.Equal(t, PhaseRoundOver, s.Phase)
				continue
			}
			assert.GreaterOrEqual(t, s.Scores[s.WinningTeam], 5)
			return
		}
	}
	t.Fatal("bots never finished the game")
}

func ptr(t time.Time) *time.Time {
	return &t
}
