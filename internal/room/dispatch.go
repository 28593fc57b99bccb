// internal/room/dispatch.go
package room

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/jason-s-yu/partyhall/internal/store"
	"github.com/sirupsen/logrus"
)

// Lobby actions handled by the room service itself. Every other action type is passed to
// the room's game engine.
const (
	ActionSwapTeams      = "swap-teams"
	ActionSetTargetScore = "set-target-score"
	ActionUpdateSettings = "update-settings"
	ActionPlayAgain      = "play-again"
)

// Dispatch applies one player action. A repeated action id is acknowledged without being
// processed again. Rule violations come back as *game.Error and leave the room untouched;
// a lost compare-and-swap comes back as RACE_CONDITION.
func (s *Service) Dispatch(ctx context.Context, code, playerID string, a models.GameAction) error {
	a.Type = strings.TrimSpace(a.Type)
	if a.Type == "" {
		return game.ErrInvalidRequest("action type is required")
	}
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return storeErr(err)
	}
	if room.Seat(playerID) < 0 {
		return errNotSeated
	}
	entry := s.log(code).WithFields(logrus.Fields{"player": playerID, "action": a.Type})

	if a.ActionID != "" {
		last, err := s.store.LastActionID(ctx, code, playerID)
		if err != nil {
			return err
		}
		if last == a.ActionID {
			entry.WithField("actionId", a.ActionID).Debug("duplicate action ignored")
			return nil
		}
	}

	var events []game.Event
	_, result, err := s.store.UpdateRoom(ctx, code, func(r *models.Room) (store.Result, error) {
		events = nil
		if r.Seat(playerID) < 0 {
			return store.Reject, errNotSeated
		}
		res, evs, err := s.apply(r, playerID, a)
		if err != nil {
			return store.Reject, err
		}
		events = evs
		return res, nil
	})
	if err != nil {
		err = storeErr(err)
		if _, ok := game.AsError(err); ok {
			entry.WithError(err).Debug("action rejected")
		}
		return err
	}

	if a.ActionID != "" {
		if err := s.store.SetActionID(ctx, code, playerID, a.ActionID); err != nil {
			entry.WithError(err).Warn("failed to record action id")
		}
	}
	if result == store.Unchanged {
		if err := s.store.RefreshRoomTTL(ctx, code); err != nil {
			entry.WithError(err).Warn("failed to refresh room ttl")
		}
	}
	s.emit(ctx, code, events)
	s.schedule(ctx, code)
	return nil
}

func (s *Service) apply(r *models.Room, playerID string, a models.GameAction) (store.Result, []game.Event, error) {
	switch a.Type {
	case ActionSwapTeams:
		return s.swapTeams(r, playerID, a)
	case ActionSetTargetScore:
		return s.setTargetScore(r, playerID, a)
	case ActionUpdateSettings:
		return s.updateSettings(r, playerID, a)
	case ActionPlayAgain:
		return s.playAgain(r, playerID)
	}

	if r.Status != models.RoomPlaying || r.Game == nil {
		return store.Reject, nil, game.ErrInvalidPhase("the game has not started")
	}
	mod, err := s.module(r)
	if err != nil {
		return store.Reject, nil, err
	}
	action := models.GameAction{Type: a.Type, Payload: a.Payload}
	out, err := mod.ProcessAction(r.Game, playerID, action, s.env(s.now(), r))
	if err != nil {
		return store.Reject, nil, err
	}
	if !out.Changed {
		return store.Unchanged, nil, nil
	}
	applyOutcome(r, out)
	return store.Updated, out.Events, nil
}

// lobbyModule checks the caller may change settings and returns the room's engine.
func (s *Service) lobbyModule(r *models.Room, playerID string) (game.Module, error) {
	if err := requireOwner(r, playerID); err != nil {
		return nil, err
	}
	if r.Status != models.RoomWaiting {
		return nil, game.ErrInvalidPhase("settings can only change before the game starts")
	}
	return s.module(r)
}

type swapPayload struct {
	PlayerA string `json:"playerA"`
	PlayerB string `json:"playerB"`
}

func (s *Service) swapTeams(r *models.Room, playerID string, a models.GameAction) (store.Result, []game.Event, error) {
	mod, err := s.lobbyModule(r, playerID)
	if err != nil {
		return store.Reject, nil, err
	}
	var p swapPayload
	if err := a.Decode(&p); err != nil || p.PlayerA == "" || p.PlayerB == "" {
		return store.Reject, nil, game.ErrInvalidRequest("playerA and playerB are required")
	}
	settings := mod.NormalizeSettings(r.Settings, r.Players)
	if len(settings.Teams) != 2 {
		return store.Reject, nil, game.ErrInvalidAction("this game has no teams")
	}
	ta, tb := settings.TeamOf(p.PlayerA), settings.TeamOf(p.PlayerB)
	if ta < 0 || tb < 0 {
		return store.Reject, nil, game.ErrInvalidAction("both players must be on a team")
	}
	if ta == tb {
		return store.Reject, nil, game.ErrInvalidAction("players are already on the same team")
	}
	game.ReplaceID(settings.Teams[ta], p.PlayerA, p.PlayerB)
	game.ReplaceID(settings.Teams[tb], p.PlayerB, p.PlayerA)
	if err := mod.ValidateSettings(settings); err != nil {
		return store.Reject, nil, err
	}
	r.Settings = settings
	return store.Updated, []game.Event{game.Public(game.EventTeamsUpdated, map[string]any{"teams": settings.Teams})}, nil
}

type targetPayload struct {
	TargetScore *int `json:"targetScore"`
}

func (s *Service) setTargetScore(r *models.Room, playerID string, a models.GameAction) (store.Result, []game.Event, error) {
	mod, err := s.lobbyModule(r, playerID)
	if err != nil {
		return store.Reject, nil, err
	}
	var p targetPayload
	if err := a.Decode(&p); err != nil || p.TargetScore == nil {
		return store.Reject, nil, game.ErrInvalidRequest("targetScore is required")
	}
	candidate := r.Settings.Clone()
	candidate.TargetScore = *p.TargetScore
	return s.commitSettings(r, mod, candidate)
}

// settingsPatch is a partial settings update; nil fields are left alone.
type settingsPatch struct {
	TargetScore    *int       `json:"targetScore"`
	Teams          [][]string `json:"teams"`
	StickTheDealer *bool      `json:"stickTheDealer"`
	TurnSeconds    *int       `json:"turnSeconds"`
	Difficulty     *string    `json:"difficulty"`
}

func (s *Service) updateSettings(r *models.Room, playerID string, a models.GameAction) (store.Result, []game.Event, error) {
	mod, err := s.lobbyModule(r, playerID)
	if err != nil {
		return store.Reject, nil, err
	}
	var p settingsPatch
	if err := a.Decode(&p); err != nil {
		return store.Reject, nil, game.ErrInvalidRequest("invalid settings payload")
	}
	candidate := r.Settings.Clone()
	if p.TargetScore != nil {
		candidate.TargetScore = *p.TargetScore
	}
	if p.Teams != nil {
		candidate.Teams = p.Teams
	}
	if p.StickTheDealer != nil {
		candidate.StickTheDealer = *p.StickTheDealer
	}
	if p.TurnSeconds != nil {
		candidate.TurnSeconds = *p.TurnSeconds
	}
	if p.Difficulty != nil {
		candidate.Difficulty = *p.Difficulty
	}
	return s.commitSettings(r, mod, candidate)
}

// commitSettings validates candidate and stores it if it differs from the current settings.
// Values the engine normalizes away are rejected rather than silently dropped.
func (s *Service) commitSettings(r *models.Room, mod game.Module, candidate models.Settings) (store.Result, []game.Event, error) {
	if err := mod.ValidateSettings(candidate); err != nil {
		return store.Reject, nil, err
	}
	settings := mod.NormalizeSettings(candidate, r.Players)
	if settings.TargetScore != candidate.TargetScore || settings.Difficulty != candidate.Difficulty {
		return store.Reject, nil, game.ErrInvalidSetting("setting not supported by %s", mod.Info().Name)
	}
	if err := mod.ValidateSettings(settings); err != nil {
		return store.Reject, nil, err
	}
	if sameSettings(r.Settings, settings) {
		return store.Unchanged, nil, nil
	}
	r.Settings = settings
	return store.Updated, []game.Event{game.Public(game.EventSettingsUpdated, map[string]any{"settings": settings})}, nil
}

func sameSettings(a, b models.Settings) bool {
	x, errX := json.Marshal(a)
	y, errY := json.Marshal(b)
	return errX == nil && errY == nil && string(x) == string(y)
}

func (s *Service) playAgain(r *models.Room, playerID string) (store.Result, []game.Event, error) {
	if err := requireOwner(r, playerID); err != nil {
		return store.Reject, nil, err
	}
	if r.Status != models.RoomPlaying || r.Game == nil {
		return store.Reject, nil, game.ErrInvalidPhase("no game has been played yet")
	}
	mod, err := s.module(r)
	if err != nil {
		return store.Reject, nil, err
	}
	over, err := mod.Finished(r.Game)
	if err != nil {
		return store.Reject, nil, err
	}
	if !over {
		return store.Reject, nil, game.ErrInvalidPhase("the game is not over yet")
	}
	events, err := s.initialize(r, mod, s.now())
	if err != nil {
		return store.Reject, nil, err
	}
	return store.Updated, events, nil
}
