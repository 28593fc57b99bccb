// internal/game/event.go
package game

// EventName is the wire name of an outbound event.
type EventName string

// Room lifecycle events.
const (
	EventRoomCreated        EventName = "room-created"
	EventPlayerJoined       EventName = "player-joined"
	EventPlayerLeft         EventName = "player-left"
	EventPlayerDisconnected EventName = "player-disconnected"
	EventPlayerReconnected  EventName = "player-reconnected"
	EventRoomDestroyed      EventName = "room-destroyed"
	EventGameStarted        EventName = "game-started"
	EventTeamsUpdated       EventName = "teams-updated"
	EventSettingsUpdated    EventName = "settings-updated"
)

// Game progress events.
const (
	EventTrumpAction         EventName = "trump-action"
	EventTrumpConfirmed      EventName = "trump-confirmed"
	EventDealerDiscarded     EventName = "dealer-discarded"
	EventTrickStarted        EventName = "trick-started"
	EventCardPlayed          EventName = "card-played"
	EventTrickWon            EventName = "trick-won"
	EventRoundOver           EventName = "round-over"
	EventNewRound            EventName = "new-round"
	EventGameOver            EventName = "game-over"
	EventPlayerSubmitted     EventName = "player-submitted"
	EventPhaseChanged        EventName = "phase-changed"
	EventSubmissionsRevealed EventName = "submissions-revealed"
	EventRoundResult         EventName = "round-result"
	EventMoveMade            EventName = "move-made"
	EventShotFired           EventName = "shot-fired"
	EventShipSunk            EventName = "ship-sunk"
	EventSetupReady          EventName = "setup-ready"
	EventHandUpdated         EventName = "hand-updated" // private only
)

// Event is a tagged outbound message. The GameID is stamped once when the event is
// created, so consumers never have to guess which game a payload belongs to.
type Event struct {
	Name    EventName `json:"event"`
	GameID  string    `json:"gameId,omitempty"`
	To      string    `json:"-"` // empty for the public room channel, else a player id
	Payload any       `json:"payload,omitempty"`
}

// Private reports whether the event must only reach Event.To.
func (e Event) Private() bool {
	return e.To != ""
}

// Public builds a room-wide event.
func Public(name EventName, payload any) Event {
	return Event{Name: name, Payload: payload}
}

// PrivateTo builds an event delivered only to playerID.
func PrivateTo(playerID string, name EventName, payload any) Event {
	return Event{Name: name, To: playerID, Payload: payload}
}
