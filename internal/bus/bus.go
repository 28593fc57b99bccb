// internal/bus/bus.go
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jason-s-yu/partyhall/internal/game"
	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Channel prefixes. Room channels carry public events, private channels carry one
// player's hidden information, presence channels mirror room membership.
const (
	RoomPrefix     = "room-"
	PrivatePrefix  = "private-"
	PresencePrefix = "presence-room-"
)

func RoomChannel(code string) string {
	return RoomPrefix + code
}

func PrivateChannel(playerID string) string {
	return PrivatePrefix + playerID
}

func PresenceChannel(code string) string {
	return PresencePrefix + code
}

// Message is the envelope every subscriber receives. GameID is set for game progress
// events and empty for room lifecycle events.
type Message struct {
	Event    game.EventName `json:"event"`
	GameID   string         `json:"gameId,omitempty"`
	RoomCode string         `json:"roomCode"`
	Payload  any            `json:"payload,omitempty"`
}

// Publisher delivers one message to one channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, msg Message) error
}

// PublishAll sends public events to the room channel and private events to their
// recipients. Order is preserved per channel; different channels are published
// concurrently. The first error is returned after every channel was attempted.
func PublishAll(ctx context.Context, p Publisher, roomCode string, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	var order []string
	byChannel := make(map[string][]Message)
	for _, ev := range events {
		ch := RoomChannel(roomCode)
		if ev.Private() {
			ch = PrivateChannel(ev.To)
		}
		if _, ok := byChannel[ch]; !ok {
			order = append(order, ch)
		}
		byChannel[ch] = append(byChannel[ch], Message{
			Event:    ev.Name,
			GameID:   ev.GameID,
			RoomCode: roomCode,
			Payload:  ev.Payload,
		})
	}

	var g errgroup.Group
	for _, ch := range order {
		msgs := byChannel[ch]
		g.Go(func() error {
			var first error
			for _, msg := range msgs {
				if err := p.Publish(ctx, ch, msg); err != nil && first == nil {
					first = fmt.Errorf("publish %s to %s: %w", msg.Event, ch, err)
				}
			}
			return first
		})
	}
	return g.Wait()
}

// AuthorizeChannel decides whether the holder of sess may subscribe to channel.
func AuthorizeChannel(sess *models.Session, channel string) bool {
	if sess == nil {
		return false
	}
	switch {
	case strings.HasPrefix(channel, PresencePrefix):
		return strings.TrimPrefix(channel, PresencePrefix) == sess.RoomCode
	case strings.HasPrefix(channel, RoomPrefix):
		return strings.TrimPrefix(channel, RoomPrefix) == sess.RoomCode
	case strings.HasPrefix(channel, PrivatePrefix):
		return strings.TrimPrefix(channel, PrivatePrefix) == sess.PlayerID
	}
	return false
}

// RedisPublisher publishes JSON-encoded messages with Redis PUBLISH.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return p.rdb.Publish(ctx, channel, data).Err()
}

// Published is one message captured by a Recorder.
type Published struct {
	Channel string
	Message Message
}

// Recorder is an in-memory Publisher for tests. Setting Err makes every publish fail
// after being recorded.
type Recorder struct {
	mu   sync.Mutex
	msgs []Published
	Err  error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, channel string, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Published{Channel: channel, Message: msg})
	return r.Err
}

// Messages returns a copy of everything published so far.
func (r *Recorder) Messages() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.msgs...)
}

// Events lists the event names published on channel, in order.
func (r *Recorder) Events(channel string) []game.EventName {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []game.EventName
	for _, m := range r.msgs {
		if m.Channel == channel {
			out = append(out, m.Message.Event)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
