package cart

import (
	"sync"
)

// Storage is the durable key-value capability the store persists into.
// A missing key is reported with ok == false, not an error.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MemorySessions hands out one MemoryStorage per session ID.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]*MemoryStorage
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]*MemoryStorage)}
}

func (m *MemorySessions) Session(sessionID string) *MemoryStorage {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		s = NewMemoryStorage()
		m.sessions[sessionID] = s
	}
	return s
}
