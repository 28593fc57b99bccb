// internal/historian/historian_test.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jason-s-yu/partyhall/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	mu      sync.Mutex
	batches [][]cache.RoomEventRecord
	fail    error
}

func (s *sink) insert(_ context.Context, records []cache.RoomEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.batches = append(s.batches, records)
	return nil
}

func (s *sink) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, b := range s.batches {
		for _, r := range b {
			out = append(out, r.Event)
		}
	}
	return out
}

func record(event string) cache.RoomEventRecord {
	return cache.RoomEventRecord{
		ID:        uuid.New(),
		RoomCode:  "ABCD",
		GameID:    "euchre",
		Event:     event,
		Payload:   json.RawMessage(`{}`),
		Timestamp: time.Now().UnixMilli(),
	}
}

func TestHistorianDrainsQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	history := cache.NewHistory(rdb, "test_events")
	for _, ev := range []string{"game-started", "card-played", "trick-won"} {
		require.NoError(t, history.Record(ctx, record(ev)))
	}
	mr.Lpush("test_events", "{not json")

	logger, _ := test.NewNullLogger()
	out := &sink{}
	svc := NewService(rdb, out.insert, logger, Options{Queue: "test_events", BatchSize: 2, FlushDelay: 10 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return len(out.events()) == 3 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"game-started", "card-played", "trick-won"}, out.events())
	assert.Zero(t, svc.Pending())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("historian did not stop")
	}
}

func TestFlushKeepsRecordsOnFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	out := &sink{fail: errors.New("db down")}
	svc := NewService(nil, out.insert, logger, Options{BatchSize: 2, MaxPending: 3})
	ctx := context.Background()

	for _, ev := range []string{"a", "b", "c", "d", "e"} {
		svc.appendToBatch(ctx, record(ev))
	}
	assert.Equal(t, 3, svc.Pending(), "the backlog is capped")

	out.mu.Lock()
	out.fail = nil
	out.mu.Unlock()
	assert.Equal(t, 3, svc.Flush(ctx))
	assert.Equal(t, []string{"c", "d", "e"}, out.events())
	assert.Zero(t, svc.Flush(ctx))
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, cache.DefaultQueueName, o.Queue)
	assert.Equal(t, 100, o.BatchSize)
	assert.Equal(t, time.Second, o.PollTimeout)
	assert.Equal(t, 1000, o.MaxPending)
}
