package session

import (
	"context"
	"os"
	"sync"
)

// Store is the local session cache: one blob of auth/profile fields
// under a fixed key. Populated on login and profile fetches, cleared
// on logout. Merges are shallow and last-write-wins on top-level keys.
type Store interface {
	Load(ctx context.Context) (map[string]interface{}, error)
	Merge(ctx context.Context, fields map[string]interface{}) (map[string]interface{}, error)
	Clear(ctx context.Context) error
}

// NewStoreFromEnv picks the session backend: Momento when
// MOMENTO_AUTH_TOKEN is set, otherwise the in-process store.
func NewStoreFromEnv() (Store, error) {
	if os.Getenv("MOMENTO_AUTH_TOKEN") != "" {
		return NewMomentoStore()
	}
	return NewMemoryStore(), nil
}

// MemoryStore is an in-process Store, used in tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	current map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyFields(m.current), nil
}

func (m *MemoryStore) Merge(ctx context.Context, fields map[string]interface{}) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		m.current = map[string]interface{}{}
	}
	for k, v := range fields {
		m.current[k] = v
	}
	return copyFields(m.current), nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}

func copyFields(fields map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
