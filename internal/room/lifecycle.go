// internal/room/lifecycle.go
package room

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/jason-s-yu/partyhall/internal/store"
)

// Joined is returned to a player who created or joined a room.
type Joined struct {
	PlayerID string         `json:"playerId"`
	Session  models.Session `json:"session"`
	Room     *View          `json:"room"`
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return "", game.ErrInvalidRequest("player name must be 1 to %d characters", maxNameLen)
	}
	return name, nil
}

// CreateRoom opens a waiting room owned by a new player.
func (s *Service) CreateRoom(ctx context.Context, playerName, gameID string) (*Joined, error) {
	name, err := validName(playerName)
	if err != nil {
		return nil, err
	}
	mod, err := s.games.Lookup(gameID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	player := models.Player{ID: s.newID(), Name: name, IsConnected: true, JoinedAt: now}
	room := &models.Room{
		Status:    models.RoomWaiting,
		OwnerID:   player.ID,
		GameID:    gameID,
		Players:   []models.Player{player},
		Settings:  mod.DefaultSettings(),
		CreatedAt: now,
	}

	created := false
	for i := 0; i < maxCodeTries && !created; i++ {
		room.RoomCode = s.newCode()
		err = s.store.CreateRoom(ctx, room)
		switch {
		case err == nil:
			created = true
		case errors.Is(err, store.ErrRoomExists):
			continue
		default:
			return nil, err
		}
	}
	if !created {
		return nil, errors.New("could not find a free room code")
	}

	joined, err := s.startSession(ctx, room, player)
	if err != nil {
		return nil, err
	}
	s.log(room.RoomCode).WithField("player", player.ID).Info("room created")
	s.emit(ctx, room.RoomCode, []game.Event{game.Public(game.EventRoomCreated, map[string]any{
		"roomCode": room.RoomCode,
		"gameId":   gameID,
		"ownerId":  player.ID,
	})})
	return joined, nil
}

func (s *Service) startSession(ctx context.Context, room *models.Room, player models.Player) (*Joined, error) {
	sess := models.Session{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		RoomCode:   room.RoomCode,
		JoinedAt:   player.JoinedAt,
	}
	if err := s.store.SetSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.store.SetHeartbeat(ctx, room.RoomCode, player.ID, player.JoinedAt); err != nil {
		s.log(room.RoomCode).WithError(err).Warn("failed to record initial heartbeat")
	}
	v, err := s.view(room, player.ID)
	if err != nil {
		return nil, err
	}
	return &Joined{PlayerID: player.ID, Session: sess, Room: v}, nil
}

// JoinRoom seats a new human. A waiting room gains a seat; a running game hands the
// first bot seat to the newcomer. The seat claim is retried once on conflict.
func (s *Service) JoinRoom(ctx context.Context, code, playerName string) (*Joined, error) {
	name, err := validName(playerName)
	if err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	player := models.Player{ID: s.newID(), Name: name, IsConnected: true}

	var (
		events  []game.Event
		room    *models.Room
		takenID string
	)
	claim := func(r *models.Room) (store.Result, error) {
		events, takenID = nil, ""
		mod, err := s.module(r)
		if err != nil {
			return store.Reject, err
		}
		now := s.now()
		player.JoinedAt = now

		if r.Status == models.RoomWaiting {
			if len(r.Players) >= mod.Info().MaxPlayers {
				return store.Reject, game.NewError(game.CodeRoomFull, "the room is full")
			}
			r.Players = append(r.Players, player)
			return store.Updated, nil
		}

		seat := -1
		for i, p := range r.Players {
			if p.IsBot {
				seat = i
				break
			}
		}
		if seat < 0 {
			return store.Reject, game.NewError(game.CodeRoomFull, "the room is full")
		}
		bot := r.Players[seat]
		takenID = bot.ID
		seated := player
		seated.Score = bot.Score
		r.Players[seat] = seated
		replaceInTeams(r.Settings.Teams, bot.ID, player.ID)

		out, err := mod.ReplacePlayer(r.Game, bot.ID, player.ID, s.env(now, r))
		if err != nil {
			return store.Reject, err
		}
		applyOutcome(r, out)
		events = out.Events
		return store.Updated, nil
	}

	room, _, err = s.store.UpdateRoom(ctx, code, claim)
	if errors.Is(err, store.ErrConflict) {
		room, _, err = s.store.UpdateRoom(ctx, code, claim)
	}
	if err != nil {
		return nil, storeErr(err)
	}

	joined, err := s.startSession(ctx, room, room.Players[room.Seat(player.ID)])
	if err != nil {
		return nil, err
	}
	s.log(code).WithField("player", player.ID).Info("player joined")

	payload := map[string]any{"player": room.Players[room.Seat(player.ID)], "seat": room.Seat(player.ID)}
	if takenID != "" {
		payload["replacedBotId"] = takenID
	}
	s.emit(ctx, code, append([]game.Event{game.Public(game.EventPlayerJoined, payload)}, events...))
	if room.Status == models.RoomPlaying {
		s.schedule(ctx, code)
	}
	return joined, nil
}

// LeaveRoom removes a human. While waiting the seat disappears; during a game a bot takes
// it over. The room is destroyed once no human is left.
func (s *Service) LeaveRoom(ctx context.Context, code, playerID string) error {
	var (
		events []game.Event
		left   departure
	)
	room, result, err := s.store.UpdateRoom(ctx, code, func(r *models.Room) (store.Result, error) {
		events = nil
		seat := r.Seat(playerID)
		if seat < 0 || r.Players[seat].IsBot {
			return store.Reject, errNotSeated
		}
		var err error
		left, events, err = s.depart(r, seat, s.now())
		if err != nil {
			return store.Reject, err
		}
		if len(r.Humans()) == 0 {
			return store.Delete, nil
		}
		return store.Updated, nil
	})
	if err != nil {
		return storeErr(err)
	}

	s.cleanup(ctx, code, playerID)
	s.log(code).WithField("player", playerID).Info("player left")
	if result == store.Delete {
		s.emit(ctx, code, []game.Event{game.Public(game.EventRoomDestroyed, map[string]any{"roomCode": code})})
		return nil
	}
	s.emit(ctx, code, append([]game.Event{left.event()}, events...))
	if room.Status == models.RoomPlaying {
		s.schedule(ctx, code)
	}
	return nil
}

func (s *Service) cleanup(ctx context.Context, code, playerID string) {
	if err := s.store.DeleteSession(ctx, playerID); err != nil {
		s.log(code).WithError(err).Warn("failed to delete session")
	}
	if err := s.store.DeleteHeartbeat(ctx, code, playerID); err != nil {
		s.log(code).WithError(err).Warn("failed to delete heartbeat")
	}
}

// StartGame fills bots, fixes the settings and initializes the game.
func (s *Service) StartGame(ctx context.Context, code, playerID string) error {
	var events []game.Event
	_, _, err := s.store.UpdateRoom(ctx, code, func(r *models.Room) (store.Result, error) {
		events = nil
		if err := requireOwner(r, playerID); err != nil {
			return store.Reject, err
		}
		if r.Status != models.RoomWaiting {
			return store.Reject, game.ErrInvalidPhase("the game has already started")
		}
		mod, err := s.module(r)
		if err != nil {
			return store.Reject, err
		}
		info := mod.Info()
		now := s.now()
		env := s.newEnv(now, nil)
		for len(r.Players) < info.BotFill && len(r.Players) < info.MaxPlayers {
			r.Players = append(r.Players, s.newBot(env, r, now))
		}
		if len(r.Players) < info.MinPlayers {
			return store.Reject, game.ErrInvalidRequest("%s needs at least %d players", info.Name, info.MinPlayers)
		}
		events, err = s.initialize(r, mod, now)
		if err != nil {
			return store.Reject, err
		}
		return store.Updated, nil
	})
	if err != nil {
		return storeErr(err)
	}
	s.log(code).Info("game started")
	s.emit(ctx, code, events)
	s.schedule(ctx, code)
	return nil
}

// initialize (re)starts the game on r with its current seats and settings.
func (s *Service) initialize(r *models.Room, mod game.Module, now time.Time) ([]game.Event, error) {
	settings := mod.NormalizeSettings(r.Settings, r.Players)
	if err := mod.ValidateSettings(settings); err != nil {
		return nil, err
	}
	out, err := mod.Initialize(r.Players, settings, s.env(now, r))
	if err != nil {
		return nil, err
	}
	r.Status = models.RoomPlaying
	r.Settings = settings
	for i := range r.Players {
		r.Players[i].Score = 0
	}
	applyOutcome(r, out)
	started := game.Public(game.EventGameStarted, map[string]any{
		"gameId":   r.GameID,
		"players":  r.Players,
		"settings": r.Settings,
	})
	return append([]game.Event{started}, out.Events...), nil
}

func requireOwner(r *models.Room, playerID string) error {
	if r.Seat(playerID) < 0 {
		return errNotSeated
	}
	if r.OwnerID != playerID {
		return errNotOwner
	}
	return nil
}
