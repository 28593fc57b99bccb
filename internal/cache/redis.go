// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partyhall/internal/config"
	"github.com/redis/go-redis/v9"
)

// Rdb is the process-wide Redis client. Set it with ConnectRedis or SetClient, or let
// Client create it on first use.
var (
	Rdb   *redis.Client
	rdbMu sync.Mutex
)

// DefaultQueueName is the Redis list the historian drains.
const DefaultQueueName = "partyhall_events"

// RoomEventRecord is one committed event as the historian stores it.
type RoomEventRecord struct {
	ID        uuid.UUID       `json:"id"`
	RoomCode  string          `json:"room_code"`
	GameID    string          `json:"game_id"`
	Event     string          `json:"event"`
	Recipient string          `json:"recipient,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// ConnectRedis dials addr, pings it and installs the client as Rdb.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	SetClient(client)
	return client, nil
}

// SetClient replaces the process-wide client. Tests use it to point at miniredis.
func SetClient(client *redis.Client) {
	rdbMu.Lock()
	defer rdbMu.Unlock()
	Rdb = client
}

// Client returns the process-wide client, creating one from the environment when none
// was installed yet. The connection itself is established lazily by go-redis.
func Client() *redis.Client {
	rdbMu.Lock()
	defer rdbMu.Unlock()
	if Rdb == nil {
		cfg := config.Load()
		Rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	}
	return Rdb
}

// History pushes committed room events onto the historian queue.
type History struct {
	rdb   *redis.Client
	queue string
}

func NewHistory(rdb *redis.Client, queue string) *History {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &History{rdb: rdb, queue: queue}
}

// Record serializes the record to JSON and RPUSHes it onto the queue.
func (h *History) Record(ctx context.Context, record RoomEventRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal RoomEventRecord: %w", err)
	}
	if err := h.rdb.RPush(ctx, h.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", h.queue, err)
	}
	return nil
}
