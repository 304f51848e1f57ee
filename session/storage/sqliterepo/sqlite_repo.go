// Package sqliterepo stores the session record in a SQLite database.
package sqliterepo

import (
	"database/sql"

	"github.com/jrsteele09/go-session-guard/session/storage"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// The slot table holds at most one row, keyed by a fixed id.
const schema = `
CREATE TABLE IF NOT EXISTS session_slot (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data BLOB NOT NULL
);`

// SQLiteRepo persists the session record in a single-row SQLite table.
type SQLiteRepo struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite-backed storage slot at the
// given path. Use ":memory:" for an ephemeral slot.
func Open(path string) (*SQLiteRepo, error) {
	if path == "" {
		return nil, errors.New("[sqliterepo.Open] path is required")
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "[sqliterepo.Open] failed to open database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqliterepo.Open] failed to ping database")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqliterepo.Open] failed to create schema")
	}

	return &SQLiteRepo{db: db}, nil
}

// Close closes the underlying database handle
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Load returns the stored record, or storage.ErrNoRecord if the slot is empty
func (r *SQLiteRepo) Load() ([]byte, error) {
	var data []byte
	err := r.db.QueryRow(`SELECT data FROM session_slot WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNoRecord
	}
	if err != nil {
		return nil, errors.Wrap(err, "[SQLiteRepo.Load] failed to read session record")
	}
	return data, nil
}

// Save writes the record, replacing any existing one
func (r *SQLiteRepo) Save(data []byte) error {
	_, err := r.db.Exec(`
		INSERT INTO session_slot (id, data) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data`, data)
	if err != nil {
		return errors.Wrap(err, "[SQLiteRepo.Save] failed to write session record")
	}
	return nil
}

// Clear empties the slot
func (r *SQLiteRepo) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM session_slot WHERE id = 1`); err != nil {
		return errors.Wrap(err, "[SQLiteRepo.Clear] failed to remove session record")
	}
	return nil
}
