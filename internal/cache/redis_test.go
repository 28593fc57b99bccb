// internal/cache/redis_test.go
package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAndRecordHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := ConnectRedis(ctx, mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		SetClient(nil)
		_ = client.Close()
	})
	assert.Same(t, client, Client())

	h := NewHistory(Client(), "")
	rec := RoomEventRecord{
		ID:        uuid.New(),
		RoomCode:  "ABCD",
		GameID:    "connectfour",
		Event:     "move-made",
		Payload:   json.RawMessage(`{"column":3}`),
		Timestamp: 1700000000000,
	}
	require.NoError(t, h.Record(ctx, rec))

	items, err := mr.List(DefaultQueueName)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got RoomEventRecord
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "move-made", got.Event)
	assert.JSONEq(t, `{"column":3}`, string(got.Payload))
}

func TestConnectFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), addr, 0)
	assert.Error(t, err)
}

func TestClientDialsLazilyFromEnv(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("REDIS_DB", "0")

	SetClient(nil)
	client := Client()
	t.Cleanup(func() {
		SetClient(nil)
		_ = client.Close()
	})
	require.NotNil(t, client)
	assert.Same(t, client, Client(), "later calls reuse the first client")

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())
	require.NoError(t, NewHistory(client, "lazy_events").Record(ctx, RoomEventRecord{ID: uuid.New(), Event: "room-created"}))
	items, err := mr.List("lazy_events")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
