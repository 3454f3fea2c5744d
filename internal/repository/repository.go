// Package repository stores generated schema documents. Three backends are
// provided: an in-memory map, a directory of JSON files and a SQLite
// database.
package repository

import "fmt"

// Store persists schema documents keyed by type name.
type Store interface {
	Put(name string, doc []byte) error
	Get(name string) ([]byte, error)
	List() ([]string, error)
	Delete(name string) error
	Close() error
}

// NotFoundError is returned when a named document does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema not found: %s", e.Name)
}
