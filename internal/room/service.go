// internal/room/service.go
package room

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partyhall/internal/bus"
	"github.com/jason-s-yu/partyhall/internal/cache"
	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/jason-s-yu/partyhall/internal/store"
	"github.com/sirupsen/logrus"
)

// HistorySink receives every committed event. Failures are logged and otherwise ignored.
type HistorySink interface {
	Record(ctx context.Context, record cache.RoomEventRecord) error
}

// Options tunes presence tracking and the scheduler.
type Options struct {
	DisconnectAfter time.Duration
	ReplaceAfter    time.Duration
	MaxSteps        int
}

func DefaultOptions() Options {
	return Options{
		DisconnectAfter: 15 * time.Second,
		ReplaceAfter:    60 * time.Second,
		MaxSteps:        64,
	}
}

// Service orchestrates rooms. It holds no room state of its own: every request reloads the
// room and every write goes through the store's compare-and-swap.
type Service struct {
	store   store.Store
	bus     bus.Publisher
	history HistorySink
	games   *game.Registry
	logger  *logrus.Logger
	opts    Options

	now     func() time.Time
	newEnv  func(now time.Time, bots map[string]bool) game.Env
	newID   func() string
	newCode func() string
}

func NewService(st store.Store, pub bus.Publisher, games *game.Registry, logger *logrus.Logger, opts Options) *Service {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultOptions().MaxSteps
	}
	return &Service{
		store:   st,
		bus:     pub,
		games:   games,
		logger:  logger,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
		newEnv:  game.NewEnv,
		newID:   func() string { return uuid.NewString() },
		newCode: randomCode,
	}
}

// WithHistory attaches a history sink and returns the service for chaining.
func (s *Service) WithHistory(h HistorySink) *Service {
	s.history = h
	return s
}

// Games lists the hostable games.
func (s *Service) Games() []game.Info {
	return s.games.List()
}

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 4
	maxCodeTries = 10
	maxNameLen   = 20
)

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}

var (
	errRoomNotFound = game.NewError(game.CodeRoomNotFound, "room not found")
	errRace         = game.NewError(game.CodeRaceCondition, "the room changed while processing, please retry")
	errNotSeated    = game.NewError(game.CodeUnauthorized, "you are not seated in this room")
	errNotOwner     = game.NewError(game.CodeNotOwner, "only the room owner can do that")
)

// storeErr maps store sentinels onto client-facing domain errors. Anything else is passed
// through untouched.
func storeErr(err error) error {
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		return errRoomNotFound
	case errors.Is(err, store.ErrConflict):
		return errRace
	}
	return err
}

func (s *Service) env(now time.Time, room *models.Room) game.Env {
	return s.newEnv(now, room.BotIDs())
}

func (s *Service) module(room *models.Room) (game.Module, error) {
	return s.games.Lookup(room.GameID)
}

func (s *Service) log(code string) *logrus.Entry {
	return s.logger.WithField("room", code)
}

// applyOutcome stores a changed game state on the room and mirrors scores onto seats.
func applyOutcome(room *models.Room, out game.Outcome) {
	if !out.Changed {
		return
	}
	room.Game = out.State
	for i := range room.Players {
		if score, ok := out.Scores[room.Players[i].ID]; ok {
			room.Players[i].Score = score
		}
	}
}

// emit publishes events and records them in history. Both legs are best-effort: the state
// they describe is already committed.
func (s *Service) emit(ctx context.Context, code string, events []game.Event) {
	if len(events) == 0 {
		return
	}
	if err := bus.PublishAll(ctx, s.bus, code, events); err != nil {
		s.log(code).WithError(err).Warn("failed to publish room events")
	}
	if s.history == nil {
		return
	}
	ts := s.now().UnixMilli()
	for _, ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			s.log(code).WithError(err).WithField("event", ev.Name).Warn("failed to encode event for history")
			continue
		}
		rec := cache.RoomEventRecord{
			ID:        uuid.New(),
			RoomCode:  code,
			GameID:    ev.GameID,
			Event:     string(ev.Name),
			Recipient: ev.To,
			Payload:   payload,
			Timestamp: ts,
		}
		if err := s.history.Record(ctx, rec); err != nil {
			s.log(code).WithError(err).WithField("event", ev.Name).Warn("failed to record event history")
		}
	}
}

// View is a room snapshot sanitized for one player.
type View struct {
	RoomCode  string            `json:"roomCode"`
	Status    models.RoomStatus `json:"status"`
	OwnerID   string            `json:"ownerId"`
	GameID    string            `json:"gameId"`
	Players   []models.Player   `json:"players"`
	Settings  models.Settings   `json:"settings"`
	Game      any               `json:"game"`
	PlayerID  string            `json:"playerId"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (s *Service) view(room *models.Room, playerID string) (*View, error) {
	v := &View{
		RoomCode:  room.RoomCode,
		Status:    room.Status,
		OwnerID:   room.OwnerID,
		GameID:    room.GameID,
		Players:   room.Players,
		Settings:  room.Settings,
		PlayerID:  playerID,
		CreatedAt: room.CreatedAt,
	}
	if room.Game == nil {
		return v, nil
	}
	mod, err := s.module(room)
	if err != nil {
		return nil, err
	}
	if v.Game, err = mod.Sanitize(room.Game, playerID); err != nil {
		return nil, err
	}
	return v, nil
}

// View returns the sanitized snapshot a reconnecting client should render.
func (s *Service) View(ctx context.Context, code, playerID string) (*View, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, storeErr(err)
	}
	if room.Seat(playerID) < 0 {
		return nil, errNotSeated
	}
	return s.view(room, playerID)
}

// Session looks up the session of a player, for reconnects and channel authorization.
func (s *Service) Session(ctx context.Context, playerID string) (*models.Session, error) {
	sess, err := s.store.GetSession(ctx, playerID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, game.NewError(game.CodeUnauthorized, "no active session")
	}
	return sess, err
}
