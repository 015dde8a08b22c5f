package snapshot

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps encoded snapshots in a map. Storing bytes rather than
// pointers keeps saved state independent of the live table.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, s *Snapshot) error {
	data, err := Encode(s, FormatJSON)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[s.Name()] = data
	return nil
}

func (m *MemoryStore) Load(_ context.Context, name string) (*Snapshot, bool, error) {
	m.mu.Lock()
	data, ok := m.items[name]
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	s, err := Decode(data, FormatJSON)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.items))
	for name := range m.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Close() error { return nil }
