package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a map-backed [Store] for tests and single-process
// deployments. Expiry is checked lazily on Get; there is no janitor.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, sess *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = memoryEntry{
		sess:      *sess,
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := m.now()
	expired := now.After(entry.expiresAt)
	if !expired && entry.sess.ExpiresAt > 0 {
		expired = now.Unix() > entry.sess.ExpiresAt
	}
	if expired {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	sess := entry.sess
	return &sess, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) DeleteAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	for id, entry := range m.sessions {
		if entry.sess.UserID == userID {
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
