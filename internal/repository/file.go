package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore writes each document to <dir>/<name>.json.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path sanitizes name so it cannot escape the store directory.
func (s *FileStore) path(name string) string {
	safe := strings.ReplaceAll(name, string(os.PathSeparator), "_")
	safe = strings.ReplaceAll(safe, "..", "_")
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) Put(name string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(name), doc, 0o644); err != nil {
		return fmt.Errorf("write schema %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Get(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Name: name}
		}
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	return doc, nil
}

func (s *FileStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Name: name}
		}
		return fmt.Errorf("delete schema %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
