package filerepo_test

import (
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-session-guard/session/storage"
	"github.com/jrsteele09/go-session-guard/session/storage/filerepo"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *filerepo.FileRepo {
	t.Helper()
	repo, err := filerepo.New(filepath.Join(t.TempDir(), "data", "session.json"))
	require.NoError(t, err)
	return repo
}

func TestNewRequiresPath(t *testing.T) {
	_, err := filerepo.New("")
	require.Error(t, err)
}

func TestLoadEmptySlot(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Load()
	require.ErrorIs(t, err, storage.ErrNoRecord)
}

func TestSaveAndLoad(t *testing.T) {
	repo := newTestRepo(t)
	record := []byte(`{"user":{"id":"1"},"accessToken":"tok"}`)

	require.NoError(t, repo.Save(record))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, record, loaded)
}

func TestSaveOverwrites(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Save([]byte(`first`)))
	require.NoError(t, repo.Save([]byte(`second`)))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, []byte(`second`), loaded)
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Save([]byte(`record`)))

	require.NoError(t, repo.Clear())

	_, err := repo.Load()
	require.ErrorIs(t, err, storage.ErrNoRecord)

	// Clearing an already empty slot is not an error
	require.NoError(t, repo.Clear())
}
