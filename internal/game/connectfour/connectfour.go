// internal/game/connectfour/connectfour.go
package connectfour

import (
	"time"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

// ID is the registry key of this game.
const ID = "connectfour"

const ActionDrop = "drop"

// DefaultTurnSeconds is the per-turn clock; 0 disables it.
const DefaultTurnSeconds = 30

const maxTurnSeconds = 300

type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// Move is the last disc dropped.
type Move struct {
	PlayerID string `json:"playerId"`
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	Auto     bool   `json:"auto,omitempty"`
}

type State struct {
	Phase       Phase    `json:"phase"`
	Seats       []string `json:"seats"`
	Board       Board    `json:"board"`
	CurrentTurn int      `json:"currentTurn"`
	MoveCount   int      `json:"moveCount"`
	LastMove    *Move    `json:"lastMove,omitempty"`
	WinnerID    string   `json:"winnerId,omitempty"`
	Draw        bool     `json:"draw,omitempty"`
	WinningLine [][2]int `json:"winningLine,omitempty"`
	TurnSeconds int      `json:"turnSeconds"`

	PhaseEndsAt *time.Time `json:"phaseEndsAt,omitempty"`
	BotActionAt *time.Time `json:"botActionAt,omitempty"`
}

// View is the public board; nothing in connect four is hidden.
type View struct {
	Phase       Phase      `json:"phase"`
	Seats       []string   `json:"seats"`
	Board       Board      `json:"board"`
	CurrentTurn int        `json:"currentTurn"`
	LastMove    *Move      `json:"lastMove,omitempty"`
	WinnerID    string     `json:"winnerId,omitempty"`
	Draw        bool       `json:"draw,omitempty"`
	WinningLine [][2]int   `json:"winningLine,omitempty"`
	TurnEndsAt  *time.Time `json:"turnEndsAt,omitempty"`
}

type ConnectFour struct{}

func New() game.Module {
	return game.Wrap[State](ConnectFour{})
}

func (ConnectFour) Info() game.Info {
	return game.Info{ID: ID, Name: "Connect Four", MinPlayers: 2, MaxPlayers: 2, BotFill: 2}
}

func (ConnectFour) DefaultSettings() models.Settings {
	return models.Settings{TurnSeconds: DefaultTurnSeconds}
}

func (ConnectFour) NormalizeSettings(s models.Settings, _ []models.Player) models.Settings {
	s.Teams = nil
	s.TargetScore = 0
	return s
}

func (ConnectFour) ValidateSettings(s models.Settings) error {
	if s.TurnSeconds < 0 || s.TurnSeconds > maxTurnSeconds {
		return game.ErrInvalidSetting("turn seconds must be between 0 and %d", maxTurnSeconds)
	}
	return nil
}

func (c ConnectFour) Initialize(players []models.Player, settings models.Settings, env game.Env) (*State, []game.Event, error) {
	if len(players) != 2 {
		return nil, nil, game.ErrInvalidRequest("connect four needs exactly 2 players")
	}
	if err := c.ValidateSettings(settings); err != nil {
		return nil, nil, err
	}
	s := &State{
		Phase:       PhasePlaying,
		Seats:       []string{players[0].ID, players[1].ID},
		TurnSeconds: settings.TurnSeconds,
	}
	s.startTurn(env)
	return s, nil, nil
}

func (s *State) current() string {
	return s.Seats[s.CurrentTurn]
}

func (s *State) startTurn(env game.Env) {
	s.PhaseEndsAt = nil
	if s.TurnSeconds > 0 {
		s.PhaseEndsAt = env.After(time.Duration(s.TurnSeconds) * time.Second)
	}
	s.BotActionAt = env.BotActionAt(s.current())
}

type dropPayload struct {
	Column *int `json:"column"`
}

func (ConnectFour) Apply(s *State, playerID string, a models.GameAction, env game.Env) (game.Step, error) {
	seat := game.IndexOf(s.Seats, playerID)
	if seat < 0 {
		return game.Unchanged, game.NewError(game.CodeUnauthorized, "not seated in this game")
	}
	if a.Type != ActionDrop {
		return game.Unchanged, game.ErrUnknownAction(a.Type)
	}
	if s.Phase != PhasePlaying {
		return game.Unchanged, game.ErrInvalidPhase("the game is over")
	}
	if seat != s.CurrentTurn {
		return game.Unchanged, game.ErrNotYourTurn()
	}
	var p dropPayload
	if err := a.Decode(&p); err != nil || p.Column == nil {
		return game.Unchanged, game.ErrInvalidRequest("column is required")
	}
	if s.Board.drop(*p.Column) < 0 {
		return game.Unchanged, game.ErrInvalidAction("column %d is not playable", *p.Column)
	}
	return game.Updated(s.place(*p.Column, false, env)...), nil
}

// place drops the current player's disc into a column already known to be legal.
func (s *State) place(col int, auto bool, env game.Env) []game.Event {
	playerID := s.current()
	row := s.Board.drop(col)
	s.Board[row][col] = s.CurrentTurn + 1
	s.MoveCount++
	s.LastMove = &Move{PlayerID: playerID, Row: row, Column: col, Auto: auto}

	events := []game.Event{game.Public(game.EventMoveMade, s.LastMove)}

	if line := s.Board.line(row, col); line != nil {
		s.WinnerID = playerID
		s.WinningLine = line
		return append(events, s.finish())
	}
	if s.Board.full() {
		s.Draw = true
		return append(events, s.finish())
	}
	s.CurrentTurn = 1 - s.CurrentTurn
	s.startTurn(env)
	return events
}

func (s *State) finish() game.Event {
	s.Phase = PhaseGameOver
	s.PhaseEndsAt = nil
	s.BotActionAt = nil
	return game.Public(game.EventGameOver, map[string]any{
		"winnerId":    s.WinnerID,
		"draw":        s.Draw,
		"winningLine": s.WinningLine,
	})
}

func (ConnectFour) Sanitize(s *State, _ string) any {
	return View{
		Phase:       s.Phase,
		Seats:       s.Seats,
		Board:       s.Board,
		CurrentTurn: s.CurrentTurn,
		LastMove:    s.LastMove,
		WinnerID:    s.WinnerID,
		Draw:        s.Draw,
		WinningLine: s.WinningLine,
		TurnEndsAt:  s.PhaseEndsAt,
	}
}

func (ConnectFour) ReplacePlayer(s *State, oldID, newID string, env game.Env) game.Step {
	if game.IndexOf(s.Seats, oldID) < 0 {
		return game.Unchanged
	}
	game.ReplaceID(s.Seats, oldID, newID)
	if s.WinnerID == oldID {
		s.WinnerID = newID
	}
	if s.LastMove != nil && s.LastMove.PlayerID == oldID {
		s.LastMove.PlayerID = newID
	}
	if s.Phase == PhasePlaying && s.current() == newID {
		s.BotActionAt = env.BotActionAt(newID)
	}
	return game.Updated()
}

// ShouldAdvancePhase is true once the current player's turn clock has run out.
func (ConnectFour) ShouldAdvancePhase(s *State, now time.Time) bool {
	return s.Phase == PhasePlaying && game.Passed(s.PhaseEndsAt, now)
}

// AdvancePhase drops into a random legal column for the idle player.
func (ConnectFour) AdvancePhase(s *State, env game.Env) (game.Step, error) {
	cols := s.Board.legalColumns()
	if len(cols) == 0 {
		return game.Unchanged, nil
	}
	col := cols[env.Rand.Intn(len(cols))]
	return game.Updated(s.place(col, true, env)...), nil
}

func (ConnectFour) ShouldExecuteBotAction(s *State, env game.Env) bool {
	return s.Phase == PhasePlaying && env.IsBot(s.current()) && game.Passed(s.BotActionAt, env.Now)
}

// BotAction wins if it can, blocks an immediate loss, and otherwise plays randomly.
func (ConnectFour) BotAction(s *State, env game.Env) (string, models.GameAction, error) {
	if s.Phase != PhasePlaying {
		return "", models.GameAction{}, game.ErrInvalidPhase("the game is over")
	}
	col := chooseColumn(s.Board, s.CurrentTurn+1, env)
	return s.current(), models.NewGameAction(ActionDrop, map[string]int{"column": col}), nil
}

func chooseColumn(b Board, disc int, env game.Env) int {
	cols := b.legalColumns()
	for _, c := range cols {
		if b.wins(c, disc) {
			return c
		}
	}
	opponent := 3 - disc
	for _, c := range cols {
		if b.wins(c, opponent) {
			return c
		}
	}
	return cols[env.Rand.Intn(len(cols))]
}

// PlayerScores gives the winner one point.
func (ConnectFour) PlayerScores(s *State) map[string]int {
	out := make(map[string]int, len(s.Seats))
	for _, id := range s.Seats {
		out[id] = 0
	}
	if s.WinnerID != "" {
		out[s.WinnerID] = 1
	}
	return out
}

func (ConnectFour) GameOver(s *State) bool {
	return s.Phase == PhaseGameOver
}
