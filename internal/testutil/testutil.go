// Package testutil provides shared test helpers for setting up collections
// and snapshot storage backends.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/mklint/speeddial/internal/collection"
	"github.com/mklint/speeddial/internal/models"
	"github.com/mklint/speeddial/internal/storage"
)

// TestFile creates a file-backed snapshot provider in a temporary directory.
func TestFile(t *testing.T) *storage.File {
	t.Helper()
	file, err := storage.NewFile(filepath.Join(t.TempDir(), "snapshot.json"))
	if err != nil {
		t.Fatal(err)
	}
	return file
}

// TestStore creates an empty file-backed collection store that is closed
// automatically. The bundled seed data is replaced with a blank snapshot so
// tests start from a known state.
func TestStore(t *testing.T, opts ...collection.Option) *collection.Store {
	t.Helper()
	store := collection.Open(TestFile(t), opts...)
	t.Cleanup(store.Close)

	if err := store.Import(models.Snapshot{
		Version: models.CurrentSnapshotVersion,
		Data:    models.SnapshotData{Settings: models.DefaultSettings()},
	}); err != nil {
		t.Fatal(err)
	}
	return store
}
