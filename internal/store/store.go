// internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jason-s-yu/partyhall/internal/models"
)

var (
	// ErrRoomNotFound means no room is stored under the code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomExists is returned by CreateRoom when the code is taken.
	ErrRoomExists = errors.New("room code already in use")
	// ErrConflict means the room changed between read and write, or the mutator rejected it.
	ErrConflict = errors.New("room was modified concurrently")
	// ErrSessionNotFound means no session is stored for the player.
	ErrSessionNotFound = errors.New("session not found")
)

// Result tells UpdateRoom what to do with the room a mutator was handed.
type Result int

const (
	// Reject aborts without writing and reports ErrConflict.
	Reject Result = iota
	// Unchanged commits nothing and reports success.
	Unchanged
	// Updated writes the mutated room back and refreshes its TTL.
	Updated
	// Delete removes the room along with the sessions and heartbeats of everyone in it.
	Delete
)

func (r Result) String() string {
	switch r {
	case Unchanged:
		return "unchanged"
	case Updated:
		return "updated"
	case Delete:
		return "delete"
	default:
		return "reject"
	}
}

// Mutator edits a freshly decoded copy of the room. A non-nil error aborts the update and
// is returned to the caller unchanged; the copy is discarded. Mutators may run against a
// snapshot that is stale by the time they return, so they must derive everything from
// the room they are handed.
type Mutator func(room *models.Room) (Result, error)

// Store is the only owner of durable room state. Every room write goes through
// UpdateRoom; sessions, heartbeats and action ids are independent keyed records.
type Store interface {
	GetRoom(ctx context.Context, code string) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, code string) error
	// UpdateRoom applies fn as a compare-and-swap. It returns the room as fn left it
	// together with the committed result.
	UpdateRoom(ctx context.Context, code string, fn Mutator) (*models.Room, Result, error)
	RefreshRoomTTL(ctx context.Context, code string) error

	SetSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, playerID string) (*models.Session, error)
	DeleteSession(ctx context.Context, playerID string) error

	SetHeartbeat(ctx context.Context, code, playerID string, at time.Time) error
	// Heartbeats returns the last-seen time of every listed player that has one.
	Heartbeats(ctx context.Context, code string, playerIDs []string) (map[string]time.Time, error)
	DeleteHeartbeat(ctx context.Context, code, playerID string) error

	// LastActionID returns the last recorded idempotency token, or "" when none is stored.
	LastActionID(ctx context.Context, code, playerID string) (string, error)
	SetActionID(ctx context.Context, code, playerID, actionID string) error
}

// Options holds the expiry of each keyed record.
type Options struct {
	RoomTTL      time.Duration
	SessionTTL   time.Duration
	HeartbeatTTL time.Duration
	ActionIDTTL  time.Duration
}

// DefaultOptions mirrors the service defaults.
func DefaultOptions() Options {
	return Options{
		RoomTTL:      2 * time.Hour,
		SessionTTL:   24 * time.Hour,
		HeartbeatTTL: 5 * time.Minute,
		ActionIDTTL:  time.Hour,
	}
}

func roomKey(code string) string {
	return "room:" + code
}

func sessionKey(playerID string) string {
	return "session:" + playerID
}

func heartbeatKey(code, playerID string) string {
	return "room:" + code + ":heartbeat:" + playerID
}

func actionKey(code, playerID string) string {
	return "room:" + code + ":action:" + playerID
}

// playerIDs collects every seat id of the given rooms, without repeats.
func playerIDs(rooms ...*models.Room) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rooms {
		if r == nil {
			continue
		}
		for _, p := range r.Players {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p.ID)
			}
		}
	}
	return out
}
