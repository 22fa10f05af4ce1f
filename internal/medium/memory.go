package medium

import "sync"

// Memory is an in-process Medium backed by a map. Contents are lost when
// the process exits.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory creates an empty in-process medium.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// GetItem returns the value stored under id.
func (m *Memory) GetItem(id string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[id]
	return value, ok, nil
}

// SetItem stores value under id.
func (m *Memory) SetItem(id, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = value
	return nil
}

// RemoveItem deletes the item. Idempotent.
func (m *Memory) RemoveItem(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Keys returns all item identifiers.
func (m *Memory) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for id := range m.items {
		keys = append(keys, id)
	}
	return keys, nil
}

// Close is a no-op for the in-process medium.
func (m *Memory) Close() error {
	return nil
}
