package models

import "time"

// Player occupies one seat of a room. Seat order is the order of Room.Players.
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsBot       bool      `json:"isBot"`
	IsConnected bool      `json:"isConnected"`
	JoinedAt    time.Time `json:"joinedAt"`
	Score       int       `json:"score"`
}

// Session binds a player id to the room they joined. It is used for reconnects and for
// authorizing bus channel subscriptions.
type Session struct {
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	RoomCode   string    `json:"roomCode"`
	JoinedAt   time.Time `json:"joinedAt"`
}
