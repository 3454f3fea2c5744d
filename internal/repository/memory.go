package repository

import (
	"sort"
	"sync"
)

// MemoryStore keeps documents in memory. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(name string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(doc))
	copy(cp, doc)
	s.docs[name] = cp
	return nil
}

func (s *MemoryStore) Get(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)
	return cp, nil
}

func (s *MemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[name]; !ok {
		return &NotFoundError{Name: name}
	}
	delete(s.docs, name)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
