package client

import "sync"

// SnapshotStore is the key-value persistence behind the last-known-good
// welcome cache. It is injected so tests can fake it and so the backing store
// can be anything from sqlite to browser-local storage.
type SnapshotStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Clear(key string) error
}

// MemorySnapshotStore is the in-process default, also used by tests.
type MemorySnapshotStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{values: make(map[string]string)}
}

func (s *MemorySnapshotStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemorySnapshotStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemorySnapshotStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
