// internal/room/scheduler.go
package room

import (
	"context"
	"errors"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/jason-s-yu/partyhall/internal/store"
)

// schedule runs the scheduler on behalf of a request whose own work already committed,
// so failures are only logged.
func (s *Service) schedule(ctx context.Context, code string) {
	if _, err := s.RunScheduler(ctx, code); err != nil {
		s.log(code).WithError(err).Error("scheduler failed")
	}
}

// RunScheduler applies due phase advances and bot moves until the game is waiting on a
// human or on a future deadline, or MaxSteps transitions were applied. Deadlines live in
// the persisted game state, so any request can drive this. It returns the number of
// transitions committed.
func (s *Service) RunScheduler(ctx context.Context, code string) (int, error) {
	steps := 0
	for steps < s.opts.MaxSteps {
		room, err := s.store.GetRoom(ctx, code)
		if errors.Is(err, store.ErrRoomNotFound) {
			return steps, nil
		}
		if err != nil {
			return steps, err
		}
		if room.Status != models.RoomPlaying || room.Game == nil {
			return steps, nil
		}
		mod, err := s.module(room)
		if err != nil {
			return steps, err
		}
		now := s.now()
		due, err := mod.Due(room.Game, s.env(now, room))
		if err != nil {
			return steps, err
		}
		if due == game.DueNone {
			return steps, nil
		}

		var events []game.Event
		_, result, err := s.store.UpdateRoom(ctx, code, func(r *models.Room) (store.Result, error) {
			events = nil
			if r.Status != models.RoomPlaying || r.Game == nil {
				return store.Unchanged, nil
			}
			// Another request may have applied the transition since the read above.
			out, err := s.advance(mod, r, s.env(now, r))
			if err != nil {
				return store.Reject, err
			}
			if !out.Changed {
				return store.Unchanged, nil
			}
			applyOutcome(r, out)
			events = out.Events
			return store.Updated, nil
		})
		switch {
		case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrRoomNotFound):
			s.log(code).Debug("scheduler lost a race, stopping")
			return steps, nil
		case err != nil:
			return steps, err
		case result != store.Updated:
			return steps, nil
		}
		steps++
		s.log(code).WithField("due", due.String()).Debug("scheduled transition applied")
		s.emit(ctx, code, events)
	}
	return steps, nil
}

// advance re-derives what is due on r and applies it.
func (s *Service) advance(mod game.Module, r *models.Room, env game.Env) (game.Outcome, error) {
	due, err := mod.Due(r.Game, env)
	if err != nil {
		return game.Outcome{}, err
	}
	switch due {
	case game.DueAdvance:
		return mod.AdvancePhase(r.Game, env)
	case game.DueBot:
		playerID, action, err := mod.BotAction(r.Game, env)
		if err != nil {
			return game.Outcome{}, err
		}
		if p := r.Player(playerID); p == nil || !p.IsBot {
			return game.Outcome{State: r.Game}, nil
		}
		return mod.ProcessAction(r.Game, playerID, action, env)
	}
	return game.Outcome{State: r.Game}, nil
}
