// internal/database/room_events.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/partyhall/internal/cache"
)

// RoomEventsSchema creates the history table. It is safe to run on every start.
const RoomEventsSchema = `
	CREATE TABLE IF NOT EXISTS room_events (
		id          UUID PRIMARY KEY,
		room_code   TEXT        NOT NULL,
		game_id     TEXT        NOT NULL DEFAULT '',
		event       TEXT        NOT NULL,
		recipient   TEXT        NOT NULL DEFAULT '',
		payload     JSONB       NOT NULL DEFAULT 'null',
		occurred_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS room_events_room_idx ON room_events (room_code, occurred_at);
`

const insertRoomEventQ = `
	INSERT INTO room_events (id, room_code, game_id, event, recipient, payload, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
`

// EnsureSchema creates the tables the historian writes to.
func EnsureSchema(ctx context.Context, db TxBeginner) error {
	return BeginTxFunc(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, RoomEventsSchema); err != nil {
			return fmt.Errorf("create room_events: %w", err)
		}
		return nil
	})
}

// roomEventArgs maps a record onto the insert's positional parameters.
func roomEventArgs(rec cache.RoomEventRecord) []any {
	payload := []byte(rec.Payload)
	if len(payload) == 0 {
		payload = []byte("null")
	}
	return []any{
		rec.ID,
		rec.RoomCode,
		rec.GameID,
		rec.Event,
		rec.Recipient,
		payload,
		time.UnixMilli(rec.Timestamp).UTC(),
	}
}

// InsertRoomEvents writes records in one transaction, sent to the server as a single
// batch. Records already stored are skipped, so a retried flush is harmless.
func InsertRoomEvents(ctx context.Context, db TxBeginner, records []cache.RoomEventRecord) error {
	if len(records) == 0 {
		return nil
	}
	return BeginTxFunc(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(insertRoomEventQ, roomEventArgs(rec)...)
		}
		results := tx.SendBatch(ctx, batch)
		for range records {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert room event: %w", err)
			}
		}
		return results.Close()
	})
}
