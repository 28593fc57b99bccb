// internal/models/room.go
package models

import (
	"encoding/json"
	"time"
)

// RoomStatus is the lifecycle flag of a room.
type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomPlaying RoomStatus = "playing"
)

// Room is the durable aggregate for one game session. Game is nil exactly when the room
// is waiting; its shape is owned by the rule engine selected by GameID.
type Room struct {
	RoomCode  string          `json:"roomCode"`
	Status    RoomStatus      `json:"status"`
	OwnerID   string          `json:"ownerId"`
	GameID    string          `json:"gameId"`
	Players   []Player        `json:"players"`
	Game      json.RawMessage `json:"game"`
	Settings  Settings        `json:"settings"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Seat returns the seat index of the given player id, or -1.
func (r *Room) Seat(playerID string) int {
	for i, p := range r.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Player returns a pointer into Players for the given id, or nil.
func (r *Room) Player(playerID string) *Player {
	if i := r.Seat(playerID); i >= 0 {
		return &r.Players[i]
	}
	return nil
}

// Humans returns the human players in seat order.
func (r *Room) Humans() []Player {
	var out []Player
	for _, p := range r.Players {
		if !p.IsBot {
			out = append(out, p)
		}
	}
	return out
}

// BotIDs returns the set of seated bot ids.
func (r *Room) BotIDs() map[string]bool {
	bots := make(map[string]bool)
	for _, p := range r.Players {
		if p.IsBot {
			bots[p.ID] = true
		}
	}
	return bots
}

// NextOwner picks the earliest-joined human other than exclude, breaking ties by seat.
// It returns "" when no such human exists.
func (r *Room) NextOwner(exclude string) string {
	best := -1
	for i, p := range r.Players {
		if p.IsBot || p.ID == exclude {
			continue
		}
		if best < 0 || p.JoinedAt.Before(r.Players[best].JoinedAt) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return r.Players[best].ID
}
