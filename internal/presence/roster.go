// Package presence tracks which identified users are currently online in
// each room. Connections write to it on join/leave; the only read is the
// snapshot taken when a new connection opens.
package presence

import (
	"context"
	"sort"
	"sync"
)

// Roster is the per-room set of online identified users. Add and Remove are
// idempotent. Implementations must be safe for concurrent use.
type Roster interface {
	Add(ctx context.Context, room, username string) error
	Remove(ctx context.Context, room, username string) error
	List(ctx context.Context, room string) ([]string, error)
}

type roomSet struct {
	mu    sync.Mutex
	users map[string]struct{}
}

// Memory is the in-process Roster used when no Redis is configured. Each
// room keeps its own lock so unrelated rooms never contend.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]*roomSet
}

// NewMemory creates an empty in-process roster.
func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]*roomSet)}
}

// Add marks username online in room.
func (m *Memory) Add(_ context.Context, room, username string) error {
	s := m.getOrCreate(room)
	s.mu.Lock()
	s.users[username] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Remove marks username offline in room. Removing an absent user is a no-op.
func (m *Memory) Remove(_ context.Context, room, username string) error {
	m.mu.RLock()
	s, ok := m.rooms[room]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	s.mu.Lock()
	delete(s.users, username)
	s.mu.Unlock()
	return nil
}

// List returns the usernames currently online in room, sorted for stable
// output.
func (m *Memory) List(_ context.Context, room string) ([]string, error) {
	m.mu.RLock()
	s, ok := m.rooms[room]
	m.mu.RUnlock()
	if !ok {
		return []string{}, nil
	}

	s.mu.Lock()
	users := make([]string, 0, len(s.users))
	for u := range s.users {
		users = append(users, u)
	}
	s.mu.Unlock()

	sort.Strings(users)
	return users, nil
}

func (m *Memory) getOrCreate(room string) *roomSet {
	m.mu.RLock()
	s, ok := m.rooms[room]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.rooms[room]; ok {
		return s
	}
	s = &roomSet{users: make(map[string]struct{})}
	m.rooms[room] = s
	return s
}
