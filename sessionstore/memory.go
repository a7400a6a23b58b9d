package sessionstore

import (
	"context"
	"sync"
	"time"

	"guesser/game"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps encoded sessions in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	codec   *Codec
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. A zero ttl keeps sessions until deleted.
func NewMemoryStore(codec *Codec, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		codec:   codec,
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, nil
	}
	return m.codec.Decode(entry.data)
}

func (m *MemoryStore) Put(ctx context.Context, id string, session game.Session) error {
	data, err := m.codec.Encode(session)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[id] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
