// internal/game/battleship/battleship.go
package battleship

import (
	"time"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

// ID is the registry key of this game.
const ID = "battleship"

const (
	ActionPlaceShips = "place-ships"
	ActionFire       = "fire"
)

type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// Board is one player's ships and the shots fired at them.
type Board struct {
	Ships    []Ship `json:"ships"`
	Placed   bool   `json:"placed"`
	Received Grid   `json:"received"`
}

// Shot is the most recent shot resolved.
type Shot struct {
	PlayerID string `json:"playerId"`
	TargetID string `json:"targetId"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Hit      bool   `json:"hit"`
	Sunk     string `json:"sunk,omitempty"`
}

type State struct {
	Phase       Phase    `json:"phase"`
	Seats       []string `json:"seats"`
	Boards      []Board  `json:"boards"`
	CurrentTurn int      `json:"currentTurn"`
	LastShot    *Shot    `json:"lastShot,omitempty"`
	WinnerID    string   `json:"winnerId,omitempty"`

	BotActionAt *time.Time `json:"botActionAt,omitempty"`
}

// BoardView is a board as one viewer may see it.
type BoardView struct {
	PlayerID string `json:"playerId"`
	Ships    []Ship `json:"ships"`
	Placed   bool   `json:"placed"`
	Received Grid   `json:"received"`
}

type View struct {
	Phase       Phase       `json:"phase"`
	Seats       []string    `json:"seats"`
	Boards      []BoardView `json:"boards"`
	CurrentTurn int         `json:"currentTurn"`
	LastShot    *Shot       `json:"lastShot,omitempty"`
	WinnerID    string      `json:"winnerId,omitempty"`
}

type Battleship struct{}

func New() game.Module {
	return game.Wrap[State](Battleship{})
}

func (Battleship) Info() game.Info {
	return game.Info{ID: ID, Name: "Battleship", MinPlayers: 2, MaxPlayers: 2, BotFill: 2}
}

func (Battleship) DefaultSettings() models.Settings {
	return models.Settings{}
}

func (Battleship) NormalizeSettings(s models.Settings, _ []models.Player) models.Settings {
	return models.Settings{}
}

func (Battleship) ValidateSettings(models.Settings) error {
	return nil
}

func (Battleship) Initialize(players []models.Player, _ models.Settings, env game.Env) (*State, []game.Event, error) {
	if len(players) != 2 {
		return nil, nil, game.ErrInvalidRequest("battleship needs exactly 2 players")
	}
	s := &State{
		Phase:  PhaseSetup,
		Seats:  []string{players[0].ID, players[1].ID},
		Boards: make([]Board, 2),
	}
	var events []game.Event
	for seat, id := range s.Seats {
		if env.IsBot(id) {
			events = append(events, s.autoPlace(seat, env)...)
		}
	}
	return s, events, nil
}

// autoPlace gives a bot seat a random fleet.
func (s *State) autoPlace(seat int, env game.Env) []game.Event {
	s.Boards[seat].Ships = randomFleet(env.Rand)
	return s.markPlaced(seat, env)
}

func (s *State) markPlaced(seat int, env game.Env) []game.Event {
	s.Boards[seat].Placed = true
	events := []game.Event{game.Public(game.EventSetupReady, map[string]any{"playerId": s.Seats[seat]})}
	if !s.Boards[0].Placed || !s.Boards[1].Placed {
		return events
	}
	s.Phase = PhasePlaying
	s.CurrentTurn = 0
	s.BotActionAt = env.BotActionAt(s.current())
	return append(events, game.Public(game.EventPhaseChanged, map[string]any{
		"phase":     s.Phase,
		"currentId": s.current(),
	}))
}

func (s *State) current() string {
	return s.Seats[s.CurrentTurn]
}

type placePayload struct {
	Ships []Ship `json:"ships"`
}

type firePayload struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func (Battleship) Apply(s *State, playerID string, a models.GameAction, env game.Env) (game.Step, error) {
	seat := game.IndexOf(s.Seats, playerID)
	if seat < 0 {
		return game.Unchanged, game.NewError(game.CodeUnauthorized, "not seated in this game")
	}
	switch a.Type {
	case ActionPlaceShips:
		if s.Phase != PhaseSetup {
			return game.Unchanged, game.ErrInvalidPhase("ships can only be placed during setup")
		}
		if s.Boards[seat].Placed {
			return game.Unchanged, game.NewError(game.CodeAlreadySubmitted, "fleet already placed")
		}
		var p placePayload
		if err := a.Decode(&p); err != nil {
			return game.Unchanged, game.ErrInvalidRequest("invalid ships payload")
		}
		ships, err := validateFleet(p.Ships)
		if err != nil {
			return game.Unchanged, err
		}
		s.Boards[seat].Ships = ships
		return game.Updated(s.markPlaced(seat, env)...), nil

	case ActionFire:
		if s.Phase != PhasePlaying {
			return game.Unchanged, game.ErrInvalidPhase("not firing during %s", s.Phase)
		}
		if seat != s.CurrentTurn {
			return game.Unchanged, game.ErrNotYourTurn()
		}
		var p firePayload
		if err := a.Decode(&p); err != nil || p.Row == nil || p.Col == nil {
			return game.Unchanged, game.ErrInvalidRequest("row and col are required")
		}
		return s.fire(seat, *p.Row, *p.Col, env)
	}
	return game.Unchanged, game.ErrUnknownAction(a.Type)
}

func (s *State) fire(seat, row, col int, env game.Env) (game.Step, error) {
	if !inBounds(row, col) {
		return game.Unchanged, game.ErrInvalidAction("(%d,%d) is off the board", row, col)
	}
	target := &s.Boards[1-seat]
	if target.Received[row][col] != Unknown {
		return game.Unchanged, game.ErrInvalidAction("already fired at (%d,%d)", row, col)
	}

	shot := &Shot{PlayerID: s.Seats[seat], TargetID: s.Seats[1-seat], Row: row, Col: col}
	target.Received[row][col] = Miss
	var sunk *Ship
	for i := range target.Ships {
		ship := &target.Ships[i]
		if game.IndexOf(ship.Cells(), [2]int{row, col}) < 0 {
			continue
		}
		target.Received[row][col] = Hit
		shot.Hit = true
		if target.allHit(*ship) {
			ship.Sunk = true
			shot.Sunk = ship.Name
			sunk = ship
		}
		break
	}
	s.LastShot = shot

	events := []game.Event{game.Public(game.EventShotFired, shot)}
	if sunk != nil {
		events = append(events, game.Public(game.EventShipSunk, map[string]any{
			"playerId": shot.PlayerID,
			"targetId": shot.TargetID,
			"ship":     *sunk,
		}))
	}
	if target.fleetSunk() {
		s.Phase = PhaseGameOver
		s.WinnerID = s.Seats[seat]
		s.BotActionAt = nil
		return game.Updated(append(events, game.Public(game.EventGameOver, map[string]any{
			"winnerId": s.WinnerID,
		}))...), nil
	}
	s.CurrentTurn = 1 - seat
	s.BotActionAt = env.BotActionAt(s.current())
	return game.Updated(events...), nil
}

func (b *Board) allHit(ship Ship) bool {
	for _, c := range ship.Cells() {
		if b.Received[c[0]][c[1]] != Hit {
			return false
		}
	}
	return true
}

func (b *Board) fleetSunk() bool {
	for _, ship := range b.Ships {
		if !ship.Sunk {
			return false
		}
	}
	return len(b.Ships) > 0
}

// Sanitize hides the opponent's unsunk ships until the game is over.
func (Battleship) Sanitize(s *State, playerID string) any {
	v := View{
		Phase:       s.Phase,
		Seats:       s.Seats,
		CurrentTurn: s.CurrentTurn,
		LastShot:    s.LastShot,
		WinnerID:    s.WinnerID,
	}
	for seat, b := range s.Boards {
		bv := BoardView{PlayerID: s.Seats[seat], Placed: b.Placed, Received: b.Received, Ships: []Ship{}}
		for _, ship := range b.Ships {
			if s.Seats[seat] == playerID || ship.Sunk || s.Phase == PhaseGameOver {
				bv.Ships = append(bv.Ships, ship)
			}
		}
		v.Boards = append(v.Boards, bv)
	}
	return v
}

func (Battleship) ReplacePlayer(s *State, oldID, newID string, env game.Env) game.Step {
	seat := game.IndexOf(s.Seats, oldID)
	if seat < 0 {
		return game.Unchanged
	}
	s.Seats[seat] = newID
	if s.WinnerID == oldID {
		s.WinnerID = newID
	}
	if s.LastShot != nil {
		if s.LastShot.PlayerID == oldID {
			s.LastShot.PlayerID = newID
		}
		if s.LastShot.TargetID == oldID {
			s.LastShot.TargetID = newID
		}
	}
	switch {
	case s.Phase == PhaseSetup && env.IsBot(newID) && !s.Boards[seat].Placed:
		return game.Updated(s.autoPlace(seat, env)...)
	case s.Phase == PhasePlaying && s.CurrentTurn == seat:
		s.BotActionAt = env.BotActionAt(newID)
	}
	return game.Updated()
}

func (Battleship) ShouldAdvancePhase(*State, time.Time) bool {
	return false
}

func (Battleship) AdvancePhase(*State, game.Env) (game.Step, error) {
	return game.Unchanged, nil
}

func (Battleship) ShouldExecuteBotAction(s *State, env game.Env) bool {
	return s.Phase == PhasePlaying && env.IsBot(s.current()) && game.Passed(s.BotActionAt, env.Now)
}

// PlayerScores counts the enemy ships each player has sunk.
func (Battleship) PlayerScores(s *State) map[string]int {
	out := make(map[string]int, 2)
	for seat, id := range s.Seats {
		n := 0
		for _, ship := range s.Boards[1-seat].Ships {
			if ship.Sunk {
				n++
			}
		}
		out[id] = n
	}
	return out
}

func (Battleship) GameOver(s *State) bool {
	return s.Phase == PhaseGameOver
}
