// internal/game/wordguess/wordguess.go
package wordguess

import (
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
)

// ID is the registry key of this game.
const ID = "wordguess"

const ActionGuess = "guess"

const (
	WordLength = 5
	MaxGuesses = 6
)

// Mark is the colour of one evaluated letter.
type Mark string

const (
	Correct Mark = "correct"
	Present Mark = "present"
	Absent  Mark = "absent"
)

type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

var allowed = func() map[string]bool {
	m := make(map[string]bool, len(answers)+len(extraWords))
	for _, w := range answers {
		m[w] = true
	}
	for _, w := range extraWords {
		m[w] = true
	}
	return m
}()

// DailyWord picks the answer for the UTC calendar day of t.
func DailyWord(t time.Time) string {
	day := t.UTC().Format("2006-01-02")
	return answers[xxhash.Sum64String(day)%uint64(len(answers))]
}

// Evaluate colours guess against answer. Repeated letters are only marked present as many
// times as they remain unmatched in the answer.
func Evaluate(guess, answer string) []Mark {
	marks := make([]Mark, WordLength)
	remaining := make(map[byte]int)
	for i := 0; i < WordLength; i++ {
		if guess[i] == answer[i] {
			marks[i] = Correct
		} else {
			remaining[answer[i]]++
		}
	}
	for i := 0; i < WordLength; i++ {
		if marks[i] == Correct {
			continue
		}
		if remaining[guess[i]] > 0 {
			marks[i] = Present
			remaining[guess[i]]--
		} else {
			marks[i] = Absent
		}
	}
	return marks
}

func solved(marks []Mark) bool {
	for _, m := range marks {
		if m != Correct {
			return false
		}
	}
	return true
}

type Guess struct {
	Word  string `json:"word"`
	Marks []Mark `json:"marks"`
}

// Board is one player's private puzzle.
type Board struct {
	Guesses []Guess `json:"guesses"`
	Solved  bool    `json:"solved"`
	Done    bool    `json:"done"`
}

func (b *Board) score() int {
	if !b.Solved {
		return 0
	}
	return MaxGuesses + 1 - len(b.Guesses)
}

type State struct {
	Phase  Phase             `json:"phase"`
	Seats  []string          `json:"seats"`
	Day    string            `json:"day"`
	Answer string            `json:"answer"`
	Boards map[string]*Board `json:"boards"`

	BotActionAt *time.Time `json:"botActionAt,omitempty"`
}

// OpponentBoard shows colours without letters.
type OpponentBoard struct {
	PlayerID string   `json:"playerId"`
	Marks    [][]Mark `json:"marks"`
	Solved   bool     `json:"solved"`
	Done     bool     `json:"done"`
}

type View struct {
	Phase     Phase           `json:"phase"`
	Seats     []string        `json:"seats"`
	Day       string          `json:"day"`
	Board     *Board          `json:"board,omitempty"`
	Opponents []OpponentBoard `json:"opponents"`
	Answer    string          `json:"answer,omitempty"`
	Scores    map[string]int  `json:"scores"`
}

type WordGuess struct{}

func New() game.Module {
	return game.Wrap[State](WordGuess{})
}

func (WordGuess) Info() game.Info {
	return game.Info{ID: ID, Name: "Word Guess", MinPlayers: 1, MaxPlayers: 4}
}

func (WordGuess) DefaultSettings() models.Settings {
	return models.Settings{}
}

func (WordGuess) NormalizeSettings(models.Settings, []models.Player) models.Settings {
	return models.Settings{}
}

func (WordGuess) ValidateSettings(models.Settings) error {
	return nil
}

func (WordGuess) Initialize(players []models.Player, _ models.Settings, env game.Env) (*State, []game.Event, error) {
	if len(players) < 1 || len(players) > 4 {
		return nil, nil, game.ErrInvalidRequest("word guess takes 1 to 4 players")
	}
	s := &State{
		Phase:  PhasePlaying,
		Seats:  make([]string, len(players)),
		Day:    env.Now.UTC().Format("2006-01-02"),
		Answer: DailyWord(env.Now),
		Boards: make(map[string]*Board, len(players)),
	}
	for i, p := range players {
		s.Seats[i] = p.ID
		s.Boards[p.ID] = &Board{Guesses: []Guess{}}
	}
	s.schedule(env)
	return s, nil, nil
}

// nextBot is the first bot in seat order still guessing.
func (s *State) nextBot(env game.Env) string {
	for _, id := range s.Seats {
		if env.IsBot(id) && !s.Boards[id].Done {
			return id
		}
	}
	return ""
}

func (s *State) schedule(env game.Env) {
	s.BotActionAt = nil
	if s.Phase == PhasePlaying {
		if id := s.nextBot(env); id != "" {
			s.BotActionAt = env.BotActionAt(id)
		}
	}
}

type guessPayload struct {
	Word string `json:"word"`
}

func (WordGuess) Apply(s *State, playerID string, a models.GameAction, env game.Env) (game.Step, error) {
	board, ok := s.Boards[playerID]
	if !ok {
		return game.Unchanged, game.NewError(game.CodeUnauthorized, "not seated in this game")
	}
	if a.Type != ActionGuess {
		return game.Unchanged, game.ErrUnknownAction(a.Type)
	}
	if s.Phase != PhasePlaying {
		return game.Unchanged, game.ErrInvalidPhase("the game is over")
	}
	if board.Done {
		return game.Unchanged, game.ErrInvalidAction("your puzzle is finished")
	}
	var p guessPayload
	if err := a.Decode(&p); err != nil {
		return game.Unchanged, game.ErrInvalidRequest("invalid guess payload")
	}
	word := strings.ToLower(strings.TrimSpace(p.Word))
	if len(word) != WordLength || !allowed[word] {
		return game.Unchanged, game.ErrInvalidAction("%q is not in the word list", p.Word)
	}

	marks := Evaluate(word, s.Answer)
	board.Guesses = append(board.Guesses, Guess{Word: word, Marks: marks})
	board.Solved = solved(marks)
	board.Done = board.Solved || len(board.Guesses) >= MaxGuesses

	events := []game.Event{
		game.Public(game.EventMoveMade, map[string]any{
			"playerId": playerID,
			"guess":    len(board.Guesses),
			"marks":    marks,
			"solved":   board.Solved,
		}),
		game.PrivateTo(playerID, game.EventHandUpdated, map[string]any{"board": board}),
	}

	if s.allDone() {
		s.Phase = PhaseGameOver
		s.BotActionAt = nil
		return game.Updated(append(events, game.Public(game.EventGameOver, map[string]any{
			"answer": s.Answer,
			"scores": s.scores(),
		}))...), nil
	}
	if env.IsBot(playerID) || s.BotActionAt == nil {
		s.schedule(env)
	}
	return game.Updated(events...), nil
}

func (s *State) allDone() bool {
	for _, b := range s.Boards {
		if !b.Done {
			return false
		}
	}
	return true
}

func (s *State) scores() map[string]int {
	out := make(map[string]int, len(s.Boards))
	for id, b := range s.Boards {
		out[id] = b.score()
	}
	return out
}

// Sanitize reveals only the caller's letters; everyone else is colours only.
func (WordGuess) Sanitize(s *State, playerID string) any {
	v := View{
		Phase:     s.Phase,
		Seats:     s.Seats,
		Day:       s.Day,
		Opponents: []OpponentBoard{},
		Scores:    s.scores(),
	}
	if b, ok := s.Boards[playerID]; ok {
		v.Board = b
	}
	for _, id := range s.Seats {
		if id == playerID {
			continue
		}
		b := s.Boards[id]
		ob := OpponentBoard{PlayerID: id, Solved: b.Solved, Done: b.Done, Marks: [][]Mark{}}
		for _, g := range b.Guesses {
			ob.Marks = append(ob.Marks, g.Marks)
		}
		v.Opponents = append(v.Opponents, ob)
	}
	if s.Phase == PhaseGameOver {
		v.Answer = s.Answer
	}
	return v
}

func (WordGuess) ReplacePlayer(s *State, oldID, newID string, env game.Env) game.Step {
	if _, ok := s.Boards[oldID]; !ok {
		return game.Unchanged
	}
	game.ReplaceID(s.Seats, oldID, newID)
	game.RekeyMap(s.Boards, oldID, newID)
	if s.BotActionAt == nil {
		s.schedule(env)
	}
	return game.Updated()
}

func (WordGuess) ShouldAdvancePhase(*State, time.Time) bool {
	return false
}

func (WordGuess) AdvancePhase(*State, game.Env) (game.Step, error) {
	return game.Unchanged, nil
}

func (WordGuess) ShouldExecuteBotAction(s *State, env game.Env) bool {
	return s.Phase == PhasePlaying && s.nextBot(env) != "" && game.Passed(s.BotActionAt, env.Now)
}

// BotAction guesses a random answer still consistent with the bot's own feedback.
func (WordGuess) BotAction(s *State, env game.Env) (string, models.GameAction, error) {
	id := s.nextBot(env)
	if s.Phase != PhasePlaying || id == "" {
		return "", models.GameAction{}, game.ErrInvalidPhase("no bot is guessing")
	}
	candidates := consistent(s.Boards[id].Guesses)
	if len(candidates) == 0 {
		candidates = answers
	}
	word := candidates[env.Rand.Intn(len(candidates))]
	return id, models.NewGameAction(ActionGuess, guessPayload{Word: word}), nil
}

func consistent(guesses []Guess) []string {
	var out []string
	for _, w := range answers {
		ok := true
		for _, g := range guesses {
			if w == g.Word || !sameMarks(Evaluate(g.Word, w), g.Marks) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, w)
		}
	}
	return out
}

func sameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (WordGuess) PlayerScores(s *State) map[string]int {
	return s.scores()
}

func (WordGuess) GameOver(s *State) bool {
	return s.Phase == PhaseGameOver
}
