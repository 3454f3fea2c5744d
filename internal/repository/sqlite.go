package repository

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps documents in a single-table SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. Use ":memory:"
// for a transient store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS schemas (
		name TEXT PRIMARY KEY,
		doc  BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schemas table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(name string, doc []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO schemas (name, doc) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET doc = excluded.doc`,
		name, doc,
	)
	if err != nil {
		return fmt.Errorf("store schema %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Get(name string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRow(`SELECT doc FROM schemas WHERE name = ?`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return doc, nil
}

func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM schemas ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM schemas WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete schema %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Name: name}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
