// internal/game/module_test.go
package game

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	Players []string       `json:"players"`
	Counts  map[string]int `json:"counts"`
	Limit   int            `json:"limit"`
}

// counterRules is a minimal game: "bump" adds one to the caller's count, "noop" does nothing.
type counterRules struct {
	NoTimers[counterState]
}

func (counterRules) Info() Info {
	return Info{ID: "counter", Name: "Counter", MinPlayers: 1, MaxPlayers: 4}
}

func (counterRules) DefaultSettings() models.Settings {
	return models.Settings{TargetScore: 2}
}

func (counterRules) NormalizeSettings(s models.Settings, _ []models.Player) models.Settings {
	if s.TargetScore == 0 {
		s.TargetScore = 2
	}
	return s
}

func (counterRules) ValidateSettings(s models.Settings) error {
	if s.TargetScore < 0 {
		return ErrInvalidSetting("targetScore must be positive")
	}
	return nil
}

func (counterRules) Initialize(players []models.Player, s models.Settings, _ Env) (*counterState, []Event, error) {
	st := &counterState{Counts: map[string]int{}, Limit: s.TargetScore}
	for _, p := range players {
		st.Players = append(st.Players, p.ID)
		st.Counts[p.ID] = 0
	}
	return st, []Event{Public(EventGameStarted, nil)}, nil
}

func (counterRules) Apply(s *counterState, playerID string, a models.GameAction, _ Env) (Step, error) {
	switch a.Type {
	case "bump":
		s.Counts[playerID]++
		return Updated(Public(EventMoveMade, map[string]any{"playerId": playerID})), nil
	case "noop":
		s.Counts[playerID] = 99
		return Unchanged, nil
	}
	return Unchanged, ErrUnknownAction(a.Type)
}

func (counterRules) Sanitize(s *counterState, _ string) any {
	return map[string]any{"counts": s.Counts}
}

func (counterRules) ReplacePlayer(s *counterState, oldID, newID string, _ Env) Step {
	if IndexOf(s.Players, oldID) < 0 {
		return Unchanged
	}
	ReplaceID(s.Players, oldID, newID)
	RekeyMap(s.Counts, oldID, newID)
	return Updated()
}

func (counterRules) GameOver(s *counterState) bool {
	for _, c := range s.Counts {
		if c >= s.Limit {
			return true
		}
	}
	return false
}

func (counterRules) PlayerScores(s *counterState) map[string]int {
	return s.Counts
}

func testEnv() Env {
	return Env{Now: time.Unix(1700000000, 0), Rand: rand.New(rand.NewSource(7))}
}

func TestWrapStampsEventsAndScores(t *testing.T) {
	m := Wrap[counterState](counterRules{})
	env := testEnv()
	players := []models.Player{{ID: "p1"}, {ID: "p2"}}

	out, err := m.Initialize(players, m.NormalizeSettings(models.Settings{}, players), env)
	require.NoError(t, err)
	assert.True(t, out.Changed)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "counter", out.Events[0].GameID)
	assert.Equal(t, map[string]int{"p1": 0, "p2": 0}, out.Scores)

	next, err := m.ProcessAction(out.State, "p1", models.GameAction{Type: "bump"}, env)
	require.NoError(t, err)
	assert.True(t, next.Changed)
	assert.Equal(t, EventMoveMade, next.Events[0].Name)
	assert.Equal(t, "counter", next.Events[0].GameID)
	assert.Equal(t, 1, next.Scores["p1"])

	done, err := m.Finished(next.State)
	require.NoError(t, err)
	assert.False(t, done)

	last, err := m.ProcessAction(next.State, "p1", models.GameAction{Type: "bump"}, env)
	require.NoError(t, err)
	done, err = m.Finished(last.State)
	require.NoError(t, err)
	assert.True(t, done)

	// The earlier snapshot is untouched by later transitions.
	view, err := m.Sanitize(next.State, "p2")
	require.NoError(t, err)
	assert.Equal(t, 1, view.(map[string]any)["counts"].(map[string]int)["p1"])
}

func TestWrapUnchangedKeepsState(t *testing.T) {
	m := Wrap[counterState](counterRules{})
	env := testEnv()
	out, err := m.Initialize([]models.Player{{ID: "p1"}}, models.Settings{TargetScore: 3}, env)
	require.NoError(t, err)

	same, err := m.ProcessAction(out.State, "p1", models.GameAction{Type: "noop"}, env)
	require.NoError(t, err)
	assert.False(t, same.Changed)
	assert.Empty(t, same.Events)
	assert.Nil(t, same.Scores)
	assert.JSONEq(t, string(out.State), string(same.State), "mutations on an unchanged step are discarded")

	_, err = m.ProcessAction(out.State, "p1", models.GameAction{Type: "explode"}, env)
	ge, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidAction, ge.Code)

	_, err = m.ProcessAction(nil, "p1", models.GameAction{Type: "bump"}, env)
	ge, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidPhase, ge.Code)

	_, err = m.ProcessAction(json.RawMessage(`{"players":7}`), "p1", models.GameAction{Type: "bump"}, env)
	require.Error(t, err)
	_, ok = AsError(err)
	assert.False(t, ok, "corrupt state is an infrastructure fault")
}

func TestWrapSchedulingWithoutTimers(t *testing.T) {
	m := Wrap[counterState](counterRules{})
	env := testEnv()
	out, err := m.Initialize([]models.Player{{ID: "p1"}}, models.Settings{TargetScore: 3}, env)
	require.NoError(t, err)

	due, err := m.Due(out.State, env)
	require.NoError(t, err)
	assert.Equal(t, DueNone, due)
	assert.Equal(t, "none", due.String())

	adv, err := m.AdvancePhase(out.State, env)
	require.NoError(t, err)
	assert.False(t, adv.Changed)

	_, _, err = m.BotAction(out.State, env)
	ge, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidPhase, ge.Code)
}

func TestWrapReplacePlayer(t *testing.T) {
	m := Wrap[counterState](counterRules{})
	env := testEnv()
	out, err := m.Initialize([]models.Player{{ID: "p1"}, {ID: "p2"}}, models.Settings{TargetScore: 5}, env)
	require.NoError(t, err)
	out, err = m.ProcessAction(out.State, "p2", models.GameAction{Type: "bump"}, env)
	require.NoError(t, err)

	swapped, err := m.ReplacePlayer(out.State, "p2", "bot-1", env)
	require.NoError(t, err)
	assert.True(t, swapped.Changed)
	assert.Equal(t, map[string]int{"p1": 0, "bot-1": 1}, swapped.Scores)

	missing, err := m.ReplacePlayer(out.State, "ghost", "bot-2", env)
	require.NoError(t, err)
	assert.False(t, missing.Changed)
}

func TestNormalizeSettingsWorksOnACopy(t *testing.T) {
	m := Wrap[counterState](counterRules{})
	in := models.Settings{Teams: [][]string{{"a", "b"}, {"c", "d"}}}
	out := m.NormalizeSettings(in, nil)
	out.Teams[0][0] = "z"
	assert.Equal(t, "a", in.Teams[0][0])
	assert.Equal(t, 2, out.TargetScore)
	assert.Error(t, m.ValidateSettings(models.Settings{TargetScore: -1}))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Wrap[counterState](counterRules{}))

	m, err := r.Lookup("counter")
	require.NoError(t, err)
	assert.Equal(t, "Counter", m.Info().Name)

	_, err = r.Lookup("chess")
	ge, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidGame, ge.Code)
	assert.Equal(t, http.StatusBadRequest, ge.Status)

	infos := r.List()
	require.Len(t, infos, 1)
	assert.Equal(t, "counter", infos[0].ID)
}

func TestErrorStatuses(t *testing.T) {
	cases := map[*Error]int{
		ErrInvalidRequest("bad"):                   http.StatusBadRequest,
		ErrNotYourTurn():                           http.StatusConflict,
		NewError(CodeNotOwner, "owner only"):       http.StatusForbidden,
		NewError(CodeRoomNotFound, "gone"):         http.StatusNotFound,
		NewError(CodeUnauthorized, "who are you"):  http.StatusUnauthorized,
		NewError(CodeRaceCondition, "try again"):   http.StatusConflict,
		NewError(ErrorCode("SOMETHING_NEW"), "hm"): http.StatusBadRequest,
	}
	for e, status := range cases {
		assert.Equal(t, status, e.Status, e.Code)
	}
	assert.Equal(t, "NOT_YOUR_TURN: it is not your turn", ErrNotYourTurn().Error())
}

func TestDeckHelpers(t *testing.T) {
	deck := NewDeck([]string{"9", "T", "J", "Q", "K", "A"})
	require.Len(t, deck, 24)
	assert.Equal(t, Card{Rank: "9", Suit: Hearts}, deck[0])
	assert.Equal(t, Card{Rank: "A", Suit: Spades}, deck[23])

	shuffled := Shuffle(rand.New(rand.NewSource(1)), deck)
	assert.ElementsMatch(t, deck, shuffled)
	assert.Equal(t, Card{Rank: "9", Suit: Hearts}, deck[0], "the input is not shuffled in place")

	hands, rest, err := Deal(deck, 4, 5)
	require.NoError(t, err)
	require.Len(t, hands, 4)
	assert.Len(t, hands[0], 5)
	assert.Equal(t, deck[0], hands[0][0])
	assert.Equal(t, deck[1], hands[1][0])
	assert.Equal(t, deck[4], hands[0][1])
	assert.Equal(t, deck[20:], rest)

	_, _, err = Deal(deck, 5, 5)
	assert.Error(t, err)

	jack := Card{Rank: "J", Suit: Clubs}
	i := IndexOf(deck, jack)
	require.GreaterOrEqual(t, i, 0)
	without := RemoveAt(deck, i)
	assert.Len(t, without, 23)
	assert.Equal(t, -1, IndexOf(without, jack))
	assert.Equal(t, jack, deck[i])

	c, err := ParseCard("JH")
	require.NoError(t, err)
	assert.True(t, c.IsRed())
	assert.Equal(t, "JH", c.String())
	assert.Equal(t, Diamonds, SameColor(Hearts))
	assert.Equal(t, Clubs, SameColor(Spades))
	_, err = ParseCard("10H")
	assert.Error(t, err)
}

func TestIDHelpers(t *testing.T) {
	ids := []string{"a", "b", "a"}
	ReplaceID(ids, "a", "z")
	assert.Equal(t, []string{"z", "b", "z"}, ids)

	m := map[string]int{"a": 1}
	RekeyMap(m, "a", "b")
	assert.Equal(t, map[string]int{"b": 1}, m)
	RekeyMap(m, "missing", "c")
	assert.Equal(t, map[string]int{"b": 1}, m)
	RekeyMap[int](nil, "a", "b")
}

func TestEnv(t *testing.T) {
	env := testEnv()
	env.Bots = map[string]bool{"bot-1": true}

	for i := 0; i < 100; i++ {
		d := env.BotDelay()
		assert.GreaterOrEqual(t, d, BotDelayMin)
		assert.Less(t, d, BotDelayMax)
	}

	assert.Nil(t, env.BotActionAt("p1"))
	at := env.BotActionAt("bot-1")
	require.NotNil(t, at)
	assert.True(t, at.After(env.Now))

	deadline := env.After(time.Second)
	assert.False(t, Passed(deadline, env.Now))
	assert.True(t, Passed(deadline, env.Now.Add(time.Second)))
	assert.False(t, Passed(nil, env.Now))
}
