// internal/room/presence.go
package room

import (
	"context"
	"errors"
	"time"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/jason-s-yu/partyhall/internal/store"
)

var botNames = []string{
	"Ada", "Basil", "Clover", "Dash", "Echo", "Fig", "Gizmo", "Hazel",
	"Iggy", "Juno", "Kiwi", "Loki", "Mango", "Nova", "Olive", "Pip",
}

func (s *Service) newBot(env game.Env, r *models.Room, now time.Time) models.Player {
	used := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		used[p.Name] = true
	}
	var free []string
	for _, n := range botNames {
		if !used["Bot "+n] {
			free = append(free, "Bot "+n)
		}
	}
	name := "Bot"
	if len(free) > 0 {
		name = free[env.Rand.Intn(len(free))]
	}
	return models.Player{
		ID:          "bot-" + s.newID(),
		Name:        name,
		IsBot:       true,
		IsConnected: true,
		JoinedAt:    now,
	}
}

func replaceInTeams(teams [][]string, oldID, newID string) {
	for _, t := range teams {
		game.ReplaceID(t, oldID, newID)
	}
}

func removeFromTeams(teams [][]string, id string) {
	for i, t := range teams {
		if j := game.IndexOf(t, id); j >= 0 {
			teams[i] = game.RemoveAt(t, j)
		}
	}
}

// departure describes a human leaving a seat, voluntarily or by timeout.
type departure struct {
	PlayerID   string
	Seat       int
	BotID      string
	NewOwnerID string
}

func (d departure) event() game.Event {
	payload := map[string]any{"playerId": d.PlayerID, "seat": d.Seat}
	if d.BotID != "" {
		payload["botId"] = d.BotID
	}
	if d.NewOwnerID != "" {
		payload["newOwnerId"] = d.NewOwnerID
	}
	return game.Public(game.EventPlayerLeft, payload)
}

// depart vacates seat on r. While waiting the seat is removed; during a game a bot
// inherits it. Ownership moves to the earliest-joined remaining human.
func (s *Service) depart(r *models.Room, seat int, now time.Time) (departure, []game.Event, error) {
	old := r.Players[seat]
	d := departure{PlayerID: old.ID, Seat: seat}
	var events []game.Event

	if r.Status == models.RoomWaiting {
		r.Players = append(r.Players[:seat], r.Players[seat+1:]...)
		removeFromTeams(r.Settings.Teams, old.ID)
	} else {
		botID, evs, err := s.replaceWithBot(r, seat, now)
		if err != nil {
			return d, nil, err
		}
		d.BotID = botID
		events = evs
	}

	if r.OwnerID == old.ID {
		r.OwnerID = r.NextOwner(old.ID)
		d.NewOwnerID = r.OwnerID
	}
	return d, events, nil
}

// replaceWithBot swaps the human at seat for a fresh bot. The seat keeps its score, team
// and every piece of game state; the engine rewrites ids and schedules the bot if the
// seat is due to act.
func (s *Service) replaceWithBot(r *models.Room, seat int, now time.Time) (string, []game.Event, error) {
	old := r.Players[seat]
	bot := s.newBot(s.newEnv(now, nil), r, now)
	bot.Score = old.Score
	bot.JoinedAt = old.JoinedAt
	r.Players[seat] = bot
	replaceInTeams(r.Settings.Teams, old.ID, bot.ID)

	if r.Game == nil {
		return bot.ID, nil, nil
	}
	mod, err := s.module(r)
	if err != nil {
		return "", nil, err
	}
	out, err := mod.ReplacePlayer(r.Game, old.ID, bot.ID, s.env(now, r))
	if err != nil {
		return "", nil, err
	}
	applyOutcome(r, out)
	return bot.ID, out.Events, nil
}

// Heartbeat records that playerID is alive, reconnects them if they were marked away,
// sweeps idle players and then runs any due transitions.
func (s *Service) Heartbeat(ctx context.Context, code, playerID string) error {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return storeErr(err)
	}
	seat := room.Seat(playerID)
	if seat < 0 || room.Players[seat].IsBot {
		return errNotSeated
	}
	now := s.now()
	if err := s.store.SetHeartbeat(ctx, code, playerID, now); err != nil {
		s.log(code).WithError(err).WithField("player", playerID).Warn("failed to record heartbeat")
	}

	if !room.Players[seat].IsConnected {
		_, result, err := s.store.UpdateRoom(ctx, code, func(r *models.Room) (store.Result, error) {
			p := r.Player(playerID)
			if p == nil {
				return store.Reject, errNotSeated
			}
			if p.IsConnected {
				return store.Unchanged, nil
			}
			p.IsConnected = true
			return store.Updated, nil
		})
		switch {
		case errors.Is(err, store.ErrConflict):
			// The next heartbeat retries.
		case err != nil:
			return storeErr(err)
		case result == store.Updated:
			s.emit(ctx, code, []game.Event{game.Public(game.EventPlayerReconnected, map[string]any{"playerId": playerID})})
		}
	}

	if err := s.Sweep(ctx, code); err != nil {
		return err
	}
	s.schedule(ctx, code)
	return nil
}

// Sweep marks humans whose heartbeat is older than DisconnectAfter as disconnected and
// hands seats idle for ReplaceAfter to bots. A player without a heartbeat record is
// measured from the time they joined.
func (s *Service) Sweep(ctx context.Context, code string) error {
	room, err := s.store.GetRoom(ctx, code)
	if errors.Is(err, store.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var ids []string
	for _, p := range room.Humans() {
		ids = append(ids, p.ID)
	}
	beats, err := s.store.Heartbeats(ctx, code, ids)
	if err != nil {
		return err
	}
	now := s.now()

	var (
		events []game.Event
		gone   []string
	)
	_, result, err := s.store.UpdateRoom(ctx, code, func(r *models.Room) (store.Result, error) {
		events, gone = nil, nil
		changed := false
		for _, p := range r.Humans() {
			last, ok := beats[p.ID]
			if !ok || last.Before(p.JoinedAt) {
				last = p.JoinedAt
			}
			idle := now.Sub(last)
			switch {
			case idle >= s.opts.ReplaceAfter:
				d, evs, err := s.depart(r, r.Seat(p.ID), now)
				if err != nil {
					return store.Reject, err
				}
				events = append(events, d.event())
				events = append(events, evs...)
				gone = append(gone, p.ID)
			case idle >= s.opts.DisconnectAfter && p.IsConnected:
				r.Player(p.ID).IsConnected = false
				events = append(events, game.Public(game.EventPlayerDisconnected, map[string]any{"playerId": p.ID}))
			default:
				continue
			}
			changed = true
		}
		if !changed {
			return store.Unchanged, nil
		}
		if len(r.Humans()) == 0 {
			return store.Delete, nil
		}
		return store.Updated, nil
	})
	switch {
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrRoomNotFound):
		s.log(code).Debug("sweep lost a race, skipping")
		return nil
	case err != nil:
		return err
	}

	for _, id := range gone {
		s.cleanup(ctx, code, id)
		s.log(code).WithField("player", id).Info("idle player replaced")
	}
	if result == store.Delete {
		s.emit(ctx, code, []game.Event{game.Public(game.EventRoomDestroyed, map[string]any{"roomCode": code})})
		return nil
	}
	s.emit(ctx, code, events)
	return nil
}
