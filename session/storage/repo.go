package storage

import "errors"

// ErrNoRecord is returned by Load when the slot is empty.
var ErrNoRecord = errors.New("no session record")

// Repo is the single-slot persisted session storage. Implementations hold
// exactly one serialized record; Save overwrites any prior entry and the
// last writer wins.
type Repo interface {
	// Load returns the stored record, or ErrNoRecord if the slot is empty
	Load() ([]byte, error)

	// Save writes the record, replacing any existing one
	Save(data []byte) error

	// Clear empties the slot. Clearing an already empty slot is not an error
	Clear() error
}
