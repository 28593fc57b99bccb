package models

import "encoding/json"

// GameAction captures a player's move or lobby command.
type GameAction struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	ActionID string          `json:"actionId,omitempty"`
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (a GameAction) Decode(v any) error {
	if len(a.Payload) == 0 || string(a.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(a.Payload, v)
}

// NewGameAction builds an action with a JSON-encoded payload. It is mostly used by bots,
// whose payloads are always encodable.
func NewGameAction(actionType string, payload any) GameAction {
	a := GameAction{Type: actionType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			a.Payload = data
		}
	}
	return a
}
