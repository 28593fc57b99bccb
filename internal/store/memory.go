// internal/store/memory.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/partyhall/internal/models"
)

type memRoom struct {
	data    []byte
	version uint64
}

// MemoryStore is an in-process Store. Rooms are kept encoded with a version counter so
// UpdateRoom behaves like the Redis implementation: the mutator runs without the lock
// and the write is refused if another writer got in first. Records never expire.
type MemoryStore struct {
	mu         sync.Mutex
	rooms      map[string]*memRoom
	sessions   map[string]models.Session
	heartbeats map[string]time.Time
	actions    map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:      make(map[string]*memRoom),
		sessions:   make(map[string]models.Session),
		heartbeats: make(map[string]time.Time),
		actions:    make(map[string]string),
	}
}

func (s *MemoryStore) GetRoom(_ context.Context, code string) (*models.Room, error) {
	s.mu.Lock()
	r, ok := s.rooms[code]
	s.mu.Unlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return decodeRoom(r.data)
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.RoomCode]; ok {
		return ErrRoomExists
	}
	s.rooms[room.RoomCode] = &memRoom{data: data, version: 1}
	return nil
}

func (s *MemoryStore) DeleteRoom(ctx context.Context, code string) error {
	_, _, err := s.UpdateRoom(ctx, code, func(*models.Room) (Result, error) {
		return Delete, nil
	})
	return err
}

func (s *MemoryStore) UpdateRoom(_ context.Context, code string, fn Mutator) (*models.Room, Result, error) {
	s.mu.Lock()
	r, ok := s.rooms[code]
	s.mu.Unlock()
	if !ok {
		return nil, Reject, ErrRoomNotFound
	}
	version := r.version
	before, err := decodeRoom(r.data)
	if err != nil {
		return nil, Reject, err
	}
	room, err := decodeRoom(r.data)
	if err != nil {
		return nil, Reject, err
	}

	result, err := fn(room)
	if err != nil {
		return nil, Reject, err
	}
	if result == Reject {
		return nil, Reject, ErrConflict
	}
	if result == Unchanged {
		return room, Unchanged, nil
	}

	var next []byte
	if result == Updated {
		if next, err = json.Marshal(room); err != nil {
			return nil, Reject, fmt.Errorf("failed to encode room: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rooms[code]
	if !ok || cur.version != version {
		return nil, Reject, ErrConflict
	}
	if result == Delete {
		delete(s.rooms, code)
		for _, id := range playerIDs(before, room) {
			delete(s.sessions, id)
			delete(s.heartbeats, heartbeatKey(code, id))
			delete(s.actions, actionKey(code, id))
		}
		return room, Delete, nil
	}
	s.rooms[code] = &memRoom{data: next, version: version + 1}
	return room, Updated, nil
}

func (s *MemoryStore) RefreshRoomTTL(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; !ok {
		return ErrRoomNotFound
	}
	return nil
}

func (s *MemoryStore) SetSession(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.PlayerID] = sess
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, playerID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[playerID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, playerID)
	return nil
}

func (s *MemoryStore) SetHeartbeat(_ context.Context, code, playerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats[heartbeatKey(code, playerID)] = at
	return nil
}

func (s *MemoryStore) Heartbeats(_ context.Context, code string, ids []string) (map[string]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(ids))
	for _, id := range ids {
		if at, ok := s.heartbeats[heartbeatKey(code, id)]; ok {
			out[id] = at
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteHeartbeat(_ context.Context, code, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.heartbeats, heartbeatKey(code, playerID))
	return nil
}

func (s *MemoryStore) LastActionID(_ context.Context, code, playerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions[actionKey(code, playerID)], nil
}

func (s *MemoryStore) SetActionID(_ context.Context, code, playerID, actionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[actionKey(code, playerID)] = actionID
	return nil
}
