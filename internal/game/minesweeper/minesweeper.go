// internal/game/minesweeper/minesweeper.go
package minesweeper

import (
	"strconv"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

// ID is the registry key of this game.
const ID = "minesweeper"

const (
	ActionReveal = "reveal"
	ActionFlag   = "flag"
)

// Preset is a board size and mine count.
type Preset struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Mines int `json:"mines"`
}

const DefaultDifficulty = "beginner"

var Presets = map[string]Preset{
	"beginner":     {Rows: 9, Cols: 9, Mines: 10},
	"intermediate": {Rows: 16, Cols: 16, Mines: 40},
	"expert":       {Rows: 16, Cols: 30, Mines: 99},
}

type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// Cell glyphs in a sanitized board.
const (
	CellHidden   = ""
	CellFlag     = "F"
	CellMine     = "*"
	CellExploded = "X"
)

type State struct {
	Phase       Phase    `json:"phase"`
	Seats       []string `json:"seats"`
	Difficulty  string   `json:"difficulty"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	MineCount   int      `json:"mineCount"`
	MinesPlaced bool     `json:"minesPlaced"`
	Mines       [][]bool `json:"mines"`
	Revealed    [][]bool `json:"revealed"`
	Flagged     [][]bool `json:"flagged"`
	SafeLeft    int      `json:"safeLeft"`

	RevealedBy map[string]int `json:"revealedBy"`
	Won        bool           `json:"won"`
	Exploded   *[2]int        `json:"exploded,omitempty"`
	LoserID    string         `json:"loserId,omitempty"`
}

type View struct {
	Phase      Phase          `json:"phase"`
	Seats      []string       `json:"seats"`
	Difficulty string         `json:"difficulty"`
	Rows       int            `json:"rows"`
	Cols       int            `json:"cols"`
	MineCount  int            `json:"mineCount"`
	FlagsLeft  int            `json:"flagsLeft"`
	Board      [][]string     `json:"board"`
	RevealedBy map[string]int `json:"revealedBy"`
	Won        bool           `json:"won"`
	LoserID    string         `json:"loserId,omitempty"`
}

// Minesweeper is the cooperative mine-clearing game. There are no turns and no bots.
type Minesweeper struct {
	game.NoTimers[State]
}

func New() game.Module {
	return game.Wrap[State](Minesweeper{})
}

func (Minesweeper) Info() game.Info {
	return game.Info{ID: ID, Name: "Minesweeper", MinPlayers: 1, MaxPlayers: 4}
}

func (Minesweeper) DefaultSettings() models.Settings {
	return models.Settings{Difficulty: DefaultDifficulty}
}

func (Minesweeper) NormalizeSettings(s models.Settings, _ []models.Player) models.Settings {
	if s.Difficulty == "" {
		s.Difficulty = DefaultDifficulty
	}
	s.Teams = nil
	s.TargetScore = 0
	return s
}

func (Minesweeper) ValidateSettings(s models.Settings) error {
	if _, ok := Presets[s.Difficulty]; !ok {
		return game.ErrInvalidSetting("unknown difficulty %q", s.Difficulty)
	}
	return nil
}

func grid(rows, cols int) [][]bool {
	g := make([][]bool, rows)
	for i := range g {
		g[i] = make([]bool, cols)
	}
	return g
}

func (m Minesweeper) Initialize(players []models.Player, settings models.Settings, _ game.Env) (*State, []game.Event, error) {
	if len(players) < 1 || len(players) > 4 {
		return nil, nil, game.ErrInvalidRequest("minesweeper takes 1 to 4 players")
	}
	settings = m.NormalizeSettings(settings, players)
	if err := m.ValidateSettings(settings); err != nil {
		return nil, nil, err
	}
	p := Presets[settings.Difficulty]
	s := &State{
		Phase:      PhasePlaying,
		Seats:      make([]string, len(players)),
		Difficulty: settings.Difficulty,
		Rows:       p.Rows,
		Cols:       p.Cols,
		MineCount:  p.Mines,
		Mines:      grid(p.Rows, p.Cols),
		Revealed:   grid(p.Rows, p.Cols),
		Flagged:    grid(p.Rows, p.Cols),
		SafeLeft:   p.Rows*p.Cols - p.Mines,
		RevealedBy: make(map[string]int, len(players)),
	}
	for i, pl := range players {
		s.Seats[i] = pl.ID
		s.RevealedBy[pl.ID] = 0
	}
	return s, nil, nil
}

func (s *State) inBounds(r, c int) bool {
	return r >= 0 && r < s.Rows && c >= 0 && c < s.Cols
}

// neighbours returns the in-bounds cells around (r, c), excluding it.
func (s *State) neighbours(r, c int) [][2]int {
	var out [][2]int
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if (dr != 0 || dc != 0) && s.inBounds(r+dr, c+dc) {
				out = append(out, [2]int{r + dr, c + dc})
			}
		}
	}
	return out
}

func (s *State) adjacentMines(r, c int) int {
	n := 0
	for _, nb := range s.neighbours(r, c) {
		if s.Mines[nb[0]][nb[1]] {
			n++
		}
	}
	return n
}

// placeMines lays mines anywhere except the first revealed cell and its neighbours.
func (s *State) placeMines(r, c int, env game.Env) {
	safe := map[[2]int]bool{{r, c}: true}
	for _, nb := range s.neighbours(r, c) {
		safe[nb] = true
	}
	var candidates [][2]int
	for i := 0; i < s.Rows; i++ {
		for j := 0; j < s.Cols; j++ {
			if !safe[[2]int{i, j}] {
				candidates = append(candidates, [2]int{i, j})
			}
		}
	}
	candidates = game.Shuffle(env.Rand, candidates)
	n := s.MineCount
	if n > len(candidates) {
		n = len(candidates)
	}
	for _, cell := range candidates[:n] {
		s.Mines[cell[0]][cell[1]] = true
	}
	s.MineCount = n
	s.SafeLeft = s.Rows*s.Cols - n
	s.MinesPlaced = true
}

type cellPayload struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func (Minesweeper) Apply(s *State, playerID string, a models.GameAction, env game.Env) (game.Step, error) {
	if game.IndexOf(s.Seats, playerID) < 0 {
		return game.Unchanged, game.NewError(game.CodeUnauthorized, "not seated in this game")
	}
	if a.Type != ActionReveal && a.Type != ActionFlag {
		return game.Unchanged, game.ErrUnknownAction(a.Type)
	}
	if s.Phase != PhasePlaying {
		return game.Unchanged, game.ErrInvalidPhase("the game is over")
	}
	var p cellPayload
	if err := a.Decode(&p); err != nil || p.Row == nil || p.Col == nil {
		return game.Unchanged, game.ErrInvalidRequest("row and col are required")
	}
	r, c := *p.Row, *p.Col
	if !s.inBounds(r, c) {
		return game.Unchanged, game.ErrInvalidAction("(%d,%d) is off the board", r, c)
	}
	if a.Type == ActionFlag {
		return s.flag(playerID, r, c)
	}
	return s.reveal(playerID, r, c, env)
}

func (s *State) flag(playerID string, r, c int) (game.Step, error) {
	if s.Revealed[r][c] {
		return game.Unchanged, game.ErrInvalidAction("cell is already revealed")
	}
	s.Flagged[r][c] = !s.Flagged[r][c]
	return game.Updated(game.Public(game.EventMoveMade, map[string]any{
		"playerId": playerID,
		"action":   ActionFlag,
		"row":      r,
		"col":      c,
		"flagged":  s.Flagged[r][c],
	})), nil
}

func (s *State) reveal(playerID string, r, c int, env game.Env) (game.Step, error) {
	if s.Flagged[r][c] {
		return game.Unchanged, game.ErrInvalidAction("unflag the cell before revealing it")
	}
	if s.Revealed[r][c] {
		return game.Unchanged, nil
	}
	if !s.MinesPlaced {
		s.placeMines(r, c, env)
	}

	if s.Mines[r][c] {
		s.Revealed[r][c] = true
		s.Exploded = &[2]int{r, c}
		s.LoserID = playerID
		s.Phase = PhaseGameOver
		return game.Updated(
			game.Public(game.EventMoveMade, map[string]any{"playerId": playerID, "action": ActionReveal, "row": r, "col": c, "mine": true}),
			game.Public(game.EventGameOver, map[string]any{"won": false, "loserId": playerID}),
		), nil
	}

	opened := s.flood(r, c)
	s.RevealedBy[playerID] += len(opened)
	events := []game.Event{game.Public(game.EventMoveMade, map[string]any{
		"playerId": playerID,
		"action":   ActionReveal,
		"row":      r,
		"col":      c,
		"revealed": len(opened),
	})}
	if s.SafeLeft == 0 {
		s.Won = true
		s.Phase = PhaseGameOver
		events = append(events, game.Public(game.EventGameOver, map[string]any{
			"won":        true,
			"revealedBy": s.RevealedBy,
		}))
	}
	return game.Updated(events...), nil
}

// flood reveals (r, c) and, through zero cells, everything connected to it.
func (s *State) flood(r, c int) [][2]int {
	var opened [][2]int
	queue := [][2]int{{r, c}}
	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		i, j := cell[0], cell[1]
		if s.Revealed[i][j] || s.Flagged[i][j] || s.Mines[i][j] {
			continue
		}
		s.Revealed[i][j] = true
		s.SafeLeft--
		opened = append(opened, cell)
		if s.adjacentMines(i, j) == 0 {
			queue = append(queue, s.neighbours(i, j)...)
		}
	}
	return opened
}

func (Minesweeper) Sanitize(s *State, _ string) any {
	v := View{
		Phase:      s.Phase,
		Seats:      s.Seats,
		Difficulty: s.Difficulty,
		Rows:       s.Rows,
		Cols:       s.Cols,
		MineCount:  s.MineCount,
		FlagsLeft:  s.MineCount,
		Board:      make([][]string, s.Rows),
		RevealedBy: s.RevealedBy,
		Won:        s.Won,
		LoserID:    s.LoserID,
	}
	over := s.Phase == PhaseGameOver
	for i := 0; i < s.Rows; i++ {
		v.Board[i] = make([]string, s.Cols)
		for j := 0; j < s.Cols; j++ {
			switch {
			case s.Exploded != nil && s.Exploded[0] == i && s.Exploded[1] == j:
				v.Board[i][j] = CellExploded
			case over && s.Mines[i][j]:
				v.Board[i][j] = CellMine
			case s.Revealed[i][j]:
				v.Board[i][j] = strconv.Itoa(s.adjacentMines(i, j))
			case s.Flagged[i][j]:
				v.Board[i][j] = CellFlag
				v.FlagsLeft--
			default:
				v.Board[i][j] = CellHidden
			}
		}
	}
	return v
}

func (Minesweeper) ReplacePlayer(s *State, oldID, newID string, _ game.Env) game.Step {
	if game.IndexOf(s.Seats, oldID) < 0 {
		return game.Unchanged
	}
	game.ReplaceID(s.Seats, oldID, newID)
	game.RekeyMap(s.RevealedBy, oldID, newID)
	if s.LoserID == oldID {
		s.LoserID = newID
	}
	return game.Updated()
}

// PlayerScores is the number of safe cells each player uncovered.
func (Minesweeper) PlayerScores(s *State) map[string]int {
	out := make(map[string]int, len(s.RevealedBy))
	for id, n := range s.RevealedBy {
		out[id] = n
	}
	return out
}

func (Minesweeper) GameOver(s *State) bool {
	return s.Phase == PhaseGameOver
}
