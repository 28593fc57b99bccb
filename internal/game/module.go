// internal/game/module.go
package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/partyhall/internal/models"
)

// Info describes a registered game.
type Info struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MinPlayers int    `json:"minPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
	// BotFill is the seat count bots top a room up to when the game starts. 0 disables it.
	BotFill int `json:"botFill"`
}

// Due says which scheduled transition, if any, a state is waiting on.
type Due int

const (
	DueNone Due = iota
	DueAdvance
	DueBot
)

func (d Due) String() string {
	switch d {
	case DueAdvance:
		return "advance"
	case DueBot:
		return "bot"
	default:
		return "none"
	}
}

// Outcome is the result of a state transition on an encoded game state. When Changed is
// false nothing happened: callers must skip persistence and event emission.
type Outcome struct {
	State   json.RawMessage
	Changed bool
	Events  []Event
	// Scores, when non-nil, is the per-player score the room should mirror onto its seats.
	Scores map[string]int
}

// Module is the uniform capability surface the room service drives. Every method works
// on encoded state and decodes a private copy, so calling it again against a different
// snapshot never observes effects of an earlier call.
type Module interface {
	Info() Info
	DefaultSettings() models.Settings
	NormalizeSettings(s models.Settings, players []models.Player) models.Settings
	ValidateSettings(s models.Settings) error
	Initialize(players []models.Player, s models.Settings, env Env) (Outcome, error)
	ProcessAction(state json.RawMessage, playerID string, a models.GameAction, env Env) (Outcome, error)
	Sanitize(state json.RawMessage, playerID string) (any, error)
	Due(state json.RawMessage, env Env) (Due, error)
	AdvancePhase(state json.RawMessage, env Env) (Outcome, error)
	BotAction(state json.RawMessage, env Env) (string, models.GameAction, error)
	ReplacePlayer(state json.RawMessage, oldID, newID string, env Env) (Outcome, error)
	Finished(state json.RawMessage) (bool, error)
}

// Step is what a typed rule function reports after working on its private state copy.
type Step struct {
	Changed bool
	Events  []Event
}

// Unchanged is the no-op step.
var Unchanged = Step{}

// Updated reports a state change along with the events it implies.
func Updated(events ...Event) Step {
	return Step{Changed: true, Events: events}
}

// Rules is a game's typed state machine. Apply and AdvancePhase receive a freshly decoded
// state they may modify in place; on error the copy is discarded.
type Rules[S any] interface {
	Info() Info
	DefaultSettings() models.Settings
	NormalizeSettings(s models.Settings, players []models.Player) models.Settings
	ValidateSettings(s models.Settings) error
	Initialize(players []models.Player, s models.Settings, env Env) (*S, []Event, error)
	Apply(s *S, playerID string, a models.GameAction, env Env) (Step, error)
	Sanitize(s *S, playerID string) any
	ReplacePlayer(s *S, oldID, newID string, env Env) Step
	ShouldAdvancePhase(s *S, now time.Time) bool
	AdvancePhase(s *S, env Env) (Step, error)
	ShouldExecuteBotAction(s *S, env Env) bool
	BotAction(s *S, env Env) (string, models.GameAction, error)
	GameOver(s *S) bool
}

// ScoreKeeper is implemented by rules that expose per-player scores.
type ScoreKeeper[S any] interface {
	PlayerScores(s *S) map[string]int
}

// NoTimers provides the scheduling half of Rules for games without deadlines or bots.
type NoTimers[S any] struct{}

func (NoTimers[S]) ShouldAdvancePhase(*S, time.Time) bool { return false }

func (NoTimers[S]) AdvancePhase(*S, Env) (Step, error) { return Unchanged, nil }

func (NoTimers[S]) ShouldExecuteBotAction(*S, Env) bool { return false }

func (NoTimers[S]) BotAction(*S, Env) (string, models.GameAction, error) {
	return "", models.GameAction{}, ErrInvalidPhase("no bot action pending")
}

// Wrap adapts typed rules to the Module interface, handling JSON encoding and stamping
// every event with the game id.
func Wrap[S any](rules Rules[S]) Module {
	return &module[S]{rules: rules}
}

type module[S any] struct {
	rules Rules[S]
}

func (m *module[S]) Info() Info {
	return m.rules.Info()
}

func (m *module[S]) DefaultSettings() models.Settings {
	return m.rules.DefaultSettings()
}

func (m *module[S]) NormalizeSettings(s models.Settings, players []models.Player) models.Settings {
	return m.rules.NormalizeSettings(s.Clone(), players)
}

func (m *module[S]) ValidateSettings(s models.Settings) error {
	return m.rules.ValidateSettings(s)
}

func (m *module[S]) Initialize(players []models.Player, s models.Settings, env Env) (Outcome, error) {
	state, events, err := m.rules.Initialize(players, s, env)
	if err != nil {
		return Outcome{}, err
	}
	return m.encode(state, Updated(events...))
}

func (m *module[S]) ProcessAction(raw json.RawMessage, playerID string, a models.GameAction, env Env) (Outcome, error) {
	s, err := m.decode(raw)
	if err != nil {
		return Outcome{}, err
	}
	step, err := m.rules.Apply(s, playerID, a, env)
	if err != nil {
		return Outcome{}, err
	}
	return m.finish(raw, s, step)
}

func (m *module[S]) Sanitize(raw json.RawMessage, playerID string) (any, error) {
	s, err := m.decode(raw)
	if err != nil {
		return nil, err
	}
	return m.rules.Sanitize(s, playerID), nil
}

func (m *module[S]) Due(raw json.RawMessage, env Env) (Due, error) {
	s, err := m.decode(raw)
	if err != nil {
		return DueNone, err
	}
	if m.rules.ShouldAdvancePhase(s, env.Now) {
		return DueAdvance, nil
	}
	if m.rules.ShouldExecuteBotAction(s, env) {
		return DueBot, nil
	}
	return DueNone, nil
}

func (m *module[S]) AdvancePhase(raw json.RawMessage, env Env) (Outcome, error) {
	s, err := m.decode(raw)
	if err != nil {
		return Outcome{}, err
	}
	if !m.rules.ShouldAdvancePhase(s, env.Now) {
		return Outcome{State: raw}, nil
	}
	step, err := m.rules.AdvancePhase(s, env)
	if err != nil {
		return Outcome{}, err
	}
	return m.finish(raw, s, step)
}

func (m *module[S]) BotAction(raw json.RawMessage, env Env) (string, models.GameAction, error) {
	s, err := m.decode(raw)
	if err != nil {
		return "", models.GameAction{}, err
	}
	return m.rules.BotAction(s, env)
}

func (m *module[S]) ReplacePlayer(raw json.RawMessage, oldID, newID string, env Env) (Outcome, error) {
	s, err := m.decode(raw)
	if err != nil {
		return Outcome{}, err
	}
	return m.finish(raw, s, m.rules.ReplacePlayer(s, oldID, newID, env))
}

func (m *module[S]) Finished(raw json.RawMessage) (bool, error) {
	s, err := m.decode(raw)
	if err != nil {
		return false, err
	}
	return m.rules.GameOver(s), nil
}

func (m *module[S]) decode(raw json.RawMessage) (*S, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrInvalidPhase("no game in progress")
	}
	s := new(S)
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("decode %s state: %w", m.rules.Info().ID, err)
	}
	return s, nil
}

func (m *module[S]) finish(raw json.RawMessage, s *S, step Step) (Outcome, error) {
	if !step.Changed {
		return Outcome{State: raw}, nil
	}
	return m.encode(s, step)
}

func (m *module[S]) encode(s *S, step Step) (Outcome, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return Outcome{}, fmt.Errorf("encode %s state: %w", m.rules.Info().ID, err)
	}
	id := m.rules.Info().ID
	for i := range step.Events {
		step.Events[i].GameID = id
	}
	out := Outcome{State: data, Changed: true, Events: step.Events}
	if sk, ok := m.rules.(ScoreKeeper[S]); ok {
		out.Scores = sk.PlayerScores(s)
	}
	return out, nil
}
