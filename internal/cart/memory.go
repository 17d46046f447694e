package cart

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryPersister garde les paniers en mémoire du processus. Utilisé quand Redis
// n'est pas configuré (développement local) et dans les tests.
type MemoryPersister struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	events  map[string][]string
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{
		entries: make(map[string]memoryEntry),
		events:  make(map[string][]string),
	}
}

func (m *MemoryPersister) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, nil
	}
	return append([]byte(nil), e.data...), nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryPersister) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryPersister) Publish(_ context.Context, channel, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[channel] = append(m.events[channel], message)
	return nil
}

// Has indique si une clé est présente.
func (m *MemoryPersister) Has(key string) bool {
	data, _ := m.Load(context.Background(), key)
	return data != nil
}

// Events retourne les messages publiés sur un canal.
func (m *MemoryPersister) Events(channel string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events[channel]...)
}
