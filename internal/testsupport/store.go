package testsupport

import (
	"context"
	"testing"

	"mediacat/internal/catalog"
	"mediacat/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddFolder registers an active folder for tests using the provided store.
func AddFolder(t testing.TB, store *catalog.Store, path string) catalog.Folder {
	t.Helper()

	folder, err := store.AddFolder(context.Background(), path, catalog.MediumLocal, "")
	if err != nil {
		t.Fatalf("store.AddFolder: %v", err)
	}
	return *folder
}

// InsertEntry persists an entry for tests and returns it with its id set.
func InsertEntry(t testing.TB, store *catalog.Store, entry *catalog.Entry) *catalog.Entry {
	t.Helper()

	if err := store.InsertEntry(context.Background(), entry); err != nil {
		t.Fatalf("store.InsertEntry: %v", err)
	}
	return entry
}
