// Package filerepo stores the session record as a single JSON file on disk.
package filerepo

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-session-guard/session/storage"
	"github.com/pkg/errors"
)

const recordFileMode = 0o600

// FileRepo persists the session record in one file under the data folder.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

// New creates a file-backed storage slot at the given path. The parent
// directory is created if it does not exist.
func New(path string) (*FileRepo, error) {
	if path == "" {
		return nil, errors.New("[filerepo.New] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] failed to create data folder")
	}
	return &FileRepo{path: filepath.Clean(path)}, nil
}

// Load returns the stored record, or storage.ErrNoRecord if the file is absent
func (r *FileRepo) Load() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNoRecord
		}
		return nil, errors.Wrap(err, "[FileRepo.Load] failed to read session record")
	}
	return data, nil
}

// Save writes the record, replacing any existing one
func (r *FileRepo) Save(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.WriteFile(r.path, data, recordFileMode); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] failed to write session record")
	}
	return nil
}

// Clear removes the record file. A missing file is not an error
func (r *FileRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Clear] failed to remove session record")
	}
	return nil
}
