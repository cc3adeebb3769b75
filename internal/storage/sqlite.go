package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	payload  BLOB NOT NULL,
	saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite implements Provider on a single-row SQLite table. Useful when the
// host already ships a SQLite file and wants the snapshot alongside it.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (or creates) the database and applies the schema.
func NewSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(sqliteSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Load reads the snapshot row.
func (s *SQLite) Load() ([]byte, error) {
	var payload []byte
	err := s.conn.QueryRow(`SELECT payload FROM snapshots WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("storage: select snapshot: %w", err)
	}
	return payload, nil
}

// Save upserts the snapshot row.
func (s *SQLite) Save(data []byte) error {
	_, err := s.conn.Exec(`
		INSERT INTO snapshots (id, payload, saved_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload  = excluded.payload,
			saved_at = excluded.saved_at
	`, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: upsert snapshot: %w", err)
	}
	return nil
}
