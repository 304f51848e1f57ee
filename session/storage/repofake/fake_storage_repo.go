package repofake

import (
	"sync"

	"github.com/jrsteele09/go-session-guard/session/storage"
)

// FakeStorageRepo is a thread-safe in-memory implementation of the storage
// Repo interface, used in tests in place of the file or SQLite slots.
type FakeStorageRepo struct {
	mu     sync.RWMutex
	data   []byte
	exists bool
}

// NewFakeStorageRepo creates a new empty in-memory storage slot
func NewFakeStorageRepo() *FakeStorageRepo {
	return &FakeStorageRepo{}
}

// Load returns a copy of the stored record
func (r *FakeStorageRepo) Load() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.exists {
		return nil, storage.ErrNoRecord
	}

	// Copy to prevent external modifications
	dataCopy := make([]byte, len(r.data))
	copy(dataCopy, r.data)
	return dataCopy, nil
}

// Save stores a copy of the record, replacing any existing one
func (r *FakeStorageRepo) Save(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	r.data = dataCopy
	r.exists = true
	return nil
}

// Clear empties the slot
func (r *FakeStorageRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = nil
	r.exists = false
	return nil
}

// HasRecord reports whether the slot currently holds a record
func (r *FakeStorageRepo) HasRecord() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exists
}
