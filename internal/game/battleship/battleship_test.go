// internal/game/battleship/battleship_test.go
package battleship

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

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func envWith(bots ...string) game.Env {
	set := make(map[string]bool)
	for _, b := range bots {
		set[b] = true
	}
	return game.Env{Now: start, Rand: rand.New(rand.NewSource(11)), Bots: set}
}

// stackedFleet lays every ship horizontally from column 0, one per row.
func stackedFleet() []Ship {
	ships := make([]Ship, len(Fleet))
	for i, spec := range Fleet {
		ships[i] = Ship{Name: spec.Name, Row: i, Col: 0, Horizontal: true}
	}
	return ships
}

func place(ships []Ship) models.GameAction {
	return models.NewGameAction(ActionPlaceShips, placePayload{Ships: ships})
}

func fire(row, col int) models.GameAction {
	return models.NewGameAction(ActionFire, map[string]int{"row": row, "col": col})
}

func requireCode(t *testing.T, err error, code game.ErrorCode) {
	t.Helper()
	ge, ok := game.AsError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	assert.Equal(t, code, ge.Code)
}

func playingState(t *testing.T) *State {
	t.Helper()
	players := []models.Player{{ID: "a"}, {ID: "b"}}
	s, _, err := Battleship{}.Initialize(players, models.Settings{}, envWith())
	require.NoError(t, err)
	for _, id := range []string{"a", "b"} {
		_, err := Battleship{}.Apply(s, id, place(stackedFleet()), envWith())
		require.NoError(t, err)
	}
	require.Equal(t, PhasePlaying, s.Phase)
	return s
}

func TestPlacementValidation(t *testing.T) {
	players := []models.Player{{ID: "a"}, {ID: "b"}}
	s, _, err := Battleship{}.Initialize(players, models.Settings{}, envWith())
	require.NoError(t, err)

	overlap := stackedFleet()
	overlap[1].Row = 0
	offBoard := stackedFleet()
	offBoard[0].Col = 7
	missing := stackedFleet()[:4]
	dup := stackedFleet()
	dup[4].Name = "carrier"

	for name, ships := range map[string][]Ship{"overlap": overlap, "off board": offBoard, "missing": missing, "duplicate": dup} {
		_, err := Battleship{}.Apply(s, "a", place(ships), envWith())
		requireCode(t, err, game.CodeInvalidAction)
		assert.False(t, s.Boards[0].Placed, name)
	}

	_, err = Battleship{}.Apply(s, "a", fire(0, 0), envWith())
	requireCode(t, err, game.CodeInvalidPhase)

	_, err = Battleship{}.Apply(s, "a", place(stackedFleet()), envWith())
	require.NoError(t, err)
	assert.Equal(t, PhaseSetup, s.Phase)
	_, err = Battleship{}.Apply(s, "a", place(stackedFleet()), envWith())
	requireCode(t, err, game.CodeAlreadySubmitted)
}

func TestBotsPlaceAutomatically(t *testing.T) {
	players := []models.Player{{ID: "a"}, {ID: "bot"}}
	s, events, err := Battleship{}.Initialize(players, models.Settings{}, envWith("bot"))
	require.NoError(t, err)
	assert.True(t, s.Boards[1].Placed)
	assert.Len(t, s.Boards[1].Ships, len(Fleet))
	_, err = validateFleet(s.Boards[1].Ships)
	assert.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, game.EventSetupReady, events[0].Name)
}

func TestFireHitMissAndSink(t *testing.T) {
	s := playingState(t)

	_, err := Battleship{}.Apply(s, "b", fire(0, 0), envWith())
	requireCode(t, err, game.CodeNotYourTurn)

	_, err = Battleship{}.Apply(s, "a", fire(9, 9), envWith())
	require.NoError(t, err)
	assert.False(t, s.LastShot.Hit)
	assert.Equal(t, Miss, s.Boards[1].Received[9][9])
	assert.Equal(t, 1, s.CurrentTurn)

	_, err = Battleship{}.Apply(s, "b", fire(4, 0), envWith())
	require.NoError(t, err)
	assert.True(t, s.LastShot.Hit)

	_, err = Battleship{}.Apply(s, "a", fire(9, 9), envWith())
	requireCode(t, err, game.CodeInvalidAction)

	_, err = Battleship{}.Apply(s, "a", fire(0, 0), envWith())
	require.NoError(t, err)
	step, err := Battleship{}.Apply(s, "b", fire(4, 1), envWith())
	require.NoError(t, err)
	assert.Equal(t, "destroyer", s.LastShot.Sunk)
	assert.True(t, s.Boards[0].Ships[4].Sunk)

	var names []game.EventName
	for _, ev := range step.Events {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []game.EventName{game.EventShotFired, game.EventShipSunk}, names)
	assert.Equal(t, map[string]int{"a": 0, "b": 1}, Battleship{}.PlayerScores(s))
}

func TestSinkingFleetEndsGame(t *testing.T) {
	s := playingState(t)
	var targets [][2]int
	for _, ship := range stackedFleet() {
		ship.Size = shipSize(ship.Name)
		targets = append(targets, ship.Cells()...)
	}
	misses := 0
	for i, cell := range targets {
		_, err := Battleship{}.Apply(s, "a", fire(cell[0], cell[1]), envWith())
		require.NoError(t, err)
		if i == len(targets)-1 {
			break
		}
		_, err = Battleship{}.Apply(s, "b", fire(Size-1-misses/Size, misses%Size), envWith())
		require.NoError(t, err)
		misses++
	}
	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.Equal(t, "a", s.WinnerID)
	assert.Nil(t, s.BotActionAt)
}

func TestSanitizeHidesUnsunkShips(t *testing.T) {
	s := playingState(t)
	_, err := Battleship{}.Apply(s, "a", fire(4, 0), envWith())
	require.NoError(t, err)
	_, err = Battleship{}.Apply(s, "b", fire(9, 9), envWith())
	require.NoError(t, err)
	_, err = Battleship{}.Apply(s, "a", fire(4, 1), envWith())
	require.NoError(t, err)

	v := Battleship{}.Sanitize(s, "a").(View)
	assert.Len(t, v.Boards[0].Ships, len(Fleet), "own fleet visible")
	require.Len(t, v.Boards[1].Ships, 1, "only the sunk enemy ship is visible")
	assert.Equal(t, "destroyer", v.Boards[1].Ships[0].Name)
	assert.Equal(t, Hit, v.Boards[1].Received[4][0])
}

func TestBotExtendsLongestRun(t *testing.T) {
	var g Grid
	g[4][4], g[4][5], g[4][6] = Hit, Hit, Hit
	g[4][3] = Miss
	g[7][7] = Hit
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		assert.Equal(t, [2]int{4, 7}, chooseTarget(g, nil, rng))
	}
}

func TestBotProbesAroundIsolatedHit(t *testing.T) {
	var g Grid
	g[2][2] = Hit
	rng := rand.New(rand.NewSource(1))
	allowed := [][2]int{{1, 2}, {3, 2}, {2, 1}, {2, 3}}
	for i := 0; i < 20; i++ {
		assert.Contains(t, allowed, chooseTarget(g, nil, rng))
	}
}

func TestBotIgnoresSunkShips(t *testing.T) {
	var g Grid
	g[0][0], g[0][1] = Hit, Hit
	sunk := map[[2]int]bool{{0, 0}: true, {0, 1}: true}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		cell := chooseTarget(g, sunk, rng)
		assert.Equal(t, 0, (cell[0]+cell[1])%2, "hunt mode keeps to parity")
		assert.Equal(t, Unknown, g[cell[0]][cell[1]])
	}
}

func TestBotsPlayToCompletion(t *testing.T) {
	m := New()
	env := envWith("x", "y")
	out, err := m.Initialize([]models.Player{{ID: "x"}, {ID: "y"}}, models.Settings{}, env)
	require.NoError(t, err)
	state := out.State

	for i := 0; i < 400; i++ {
		env.Now = env.Now.Add(3 * time.Second)
		due, err := m.Due(state, env)
		require.NoError(t, err)
		if due == game.DueNone {
			break
		}
		require.Equal(t, game.DueBot, due)
		pid, action, err := m.BotAction(state, env)
		require.NoError(t, err)
		next, err := m.ProcessAction(state, pid, action, env)
		require.NoError(t, err)
		state = next.State
	}
	var s State
	require.NoError(t, json.Unmarshal(state, &s))
	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.NotEmpty(t, s.WinnerID)
}
