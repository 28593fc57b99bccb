// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jason-s-yu/partyhall/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps rooms as JSON strings and uses WATCH/MULTI for compare-and-swap.
type RedisStore struct {
	rdb  *redis.Client
	opts Options
}

// NewRedisStore wraps an already connected client.
func NewRedisStore(rdb *redis.Client, opts Options) *RedisStore {
	return &RedisStore{rdb: rdb, opts: opts}
}

func decodeRoom(data []byte) (*models.Room, error) {
	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to decode room: %w", err)
	}
	return &room, nil
}

func (s *RedisStore) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	data, err := s.rdb.Get(ctx, roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to GET room %s: %w", code, err)
	}
	return decodeRoom(data)
}

func (s *RedisStore) CreateRoom(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, roomKey(room.RoomCode), data, s.opts.RoomTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to SETNX room %s: %w", room.RoomCode, err)
	}
	if !ok {
		return ErrRoomExists
	}
	return nil
}

func (s *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	_, _, err := s.UpdateRoom(ctx, code, func(*models.Room) (Result, error) {
		return Delete, nil
	})
	return err
}

// UpdateRoom watches the room key, runs fn on a decoded copy and commits inside MULTI.
// A concurrent write to the key makes EXEC fail, which is reported as ErrConflict.
func (s *RedisStore) UpdateRoom(ctx context.Context, code string, fn Mutator) (*models.Room, Result, error) {
	key := roomKey(code)
	var (
		out    *models.Room
		result Result
	)
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to GET room %s: %w", code, err)
		}
		before, err := decodeRoom(data)
		if err != nil {
			return err
		}
		room, err := decodeRoom(data)
		if err != nil {
			return err
		}

		result, err = fn(room)
		if err != nil {
			return err
		}
		out = room

		switch result {
		case Unchanged:
			return nil
		case Updated:
			next, err := json.Marshal(room)
			if err != nil {
				return fmt.Errorf("failed to encode room: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, next, s.opts.RoomTTL)
				return nil
			})
			return err
		case Delete:
			keys := []string{key}
			for _, id := range playerIDs(before, room) {
				keys = append(keys, sessionKey(id), heartbeatKey(code, id), actionKey(code, id))
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, keys...)
				return nil
			})
			return err
		default:
			return ErrConflict
		}
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, Reject, ErrConflict
	}
	if err != nil {
		return nil, Reject, err
	}
	return out, result, nil
}

func (s *RedisStore) RefreshRoomTTL(ctx context.Context, code string) error {
	ok, err := s.rdb.Expire(ctx, roomKey(code), s.opts.RoomTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to EXPIRE room %s: %w", code, err)
	}
	if !ok {
		return ErrRoomNotFound
	}
	return nil
}

func (s *RedisStore) SetSession(ctx context.Context, sess models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.PlayerID), data, s.opts.SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to SET session %s: %w", sess.PlayerID, err)
	}
	return nil
}

func (s *RedisStore) GetSession(ctx context.Context, playerID string) (*models.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to GET session %s: %w", playerID, err)
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, playerID string) error {
	return s.rdb.Del(ctx, sessionKey(playerID)).Err()
}

func (s *RedisStore) SetHeartbeat(ctx context.Context, code, playerID string, at time.Time) error {
	v := strconv.FormatInt(at.UnixMilli(), 10)
	return s.rdb.Set(ctx, heartbeatKey(code, playerID), v, s.opts.HeartbeatTTL).Err()
}

func (s *RedisStore) Heartbeats(ctx context.Context, code string, ids []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = heartbeatKey(code, id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to MGET heartbeats for %s: %w", code, err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		ms, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			continue
		}
		out[ids[i]] = time.UnixMilli(ms).UTC()
	}
	return out, nil
}

func (s *RedisStore) DeleteHeartbeat(ctx context.Context, code, playerID string) error {
	return s.rdb.Del(ctx, heartbeatKey(code, playerID)).Err()
}

func (s *RedisStore) LastActionID(ctx context.Context, code, playerID string) (string, error) {
	id, err := s.rdb.Get(ctx, actionKey(code, playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to GET action id: %w", err)
	}
	return id, nil
}

func (s *RedisStore) SetActionID(ctx context.Context, code, playerID, actionID string) error {
	return s.rdb.Set(ctx, actionKey(code, playerID), actionID, s.opts.ActionIDTTL).Err()
}
