package reconcile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mediacat/internal/catalog"
	"mediacat/internal/config"
	"mediacat/internal/namemeta"
	"mediacat/internal/reconcile"
	"mediacat/internal/scanner"
	"mediacat/internal/testsupport"
)

func runReconcile(t *testing.T, cfg *config.Config, store *catalog.Store) *reconcile.Outcome {
	t.Helper()
	ctx := context.Background()

	folders, err := store.Folders(ctx)
	if err != nil {
		t.Fatalf("Folders: %v", err)
	}
	scan, err := scanner.New(cfg, nil).Scan(ctx, folders)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	engine := reconcile.New(store, namemeta.NewParser(cfg.Dedupe.Marker), cfg.Reconcile.BatchSize, nil, nil)
	outcome, err := engine.Run(ctx, folders, scan)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return outcome
}

func TestRunInsertsNewFilesWithParsedMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := t.TempDir()
	testsupport.AddFolder(t, store, root)

	testsupport.WriteFileContent(t, filepath.Join(root, "!!!Great Film.mkv"), []byte("film bytes"))
	testsupport.WriteFileContent(t, filepath.Join(root, "plain.mp4"), []byte("plain bytes"))

	outcome := runReconcile(t, cfg, store)
	if outcome.Inserted != 2 || outcome.Matched != 0 || outcome.Deleted != 0 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	entry, err := store.EntryByPath(context.Background(), filepath.Join(root, "!!!Great Film.mkv"))
	if err != nil || entry == nil {
		t.Fatalf("EntryByPath: entry=%v err=%v", entry, err)
	}
	if entry.Title != "Great Film" || entry.Stars != 4 {
		t.Fatalf("unexpected parsed metadata: title=%q stars=%d", entry.Title, entry.Stars)
	}
	if entry.Hash == "" || entry.SourceFolder != root {
		t.Fatalf("unexpected identity fields: %+v", entry)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := t.TempDir()
	testsupport.AddFolder(t, store, root)
	testsupport.WriteFileContent(t, filepath.Join(root, "a.mkv"), []byte("aa"))
	testsupport.WriteFileContent(t, filepath.Join(root, "b.mkv"), []byte("bb"))

	first := runReconcile(t, cfg, store)
	if first.Inserted != 2 {
		t.Fatalf("first run: %+v", first)
	}

	second := runReconcile(t, cfg, store)
	if second.Matched != 2 || second.Inserted != 0 || second.Moved != 0 || second.Deleted != 0 {
		t.Fatalf("second run should only match: %+v", second)
	}
}

func TestRunPreservesMetadataAcrossMove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	root := t.TempDir()
	testsupport.AddFolder(t, store, root)

	oldPath := filepath.Join(root, "film.mkv")
	testsupport.WriteFileContent(t, oldPath, []byte("film bytes"))
	runReconcile(t, cfg, store)

	entry, err := store.EntryByPath(ctx, oldPath)
	if err != nil || entry == nil {
		t.Fatalf("EntryByPath: entry=%v err=%v", entry, err)
	}
	if err := store.SetDescription(ctx, entry.ID, "favorite"); err != nil {
		t.Fatalf("SetDescription: %v", err)
	}
	if err := store.SetStars(ctx, entry.ID, 5); err != nil {
		t.Fatalf("SetStars: %v", err)
	}

	newPath := filepath.Join(root, "moved", "renamed.mkv")
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatalf("rename: %v", err)
	}

	outcome := runReconcile(t, cfg, store)
	if outcome.Moved != 1 || outcome.Inserted != 0 || outcome.Deleted != 0 {
		t.Fatalf("expected one move: %+v", outcome)
	}

	moved, err := store.EntryByID(ctx, entry.ID)
	if err != nil || moved == nil {
		t.Fatalf("EntryByID: entry=%v err=%v", moved, err)
	}
	if moved.Path != newPath || moved.Filename != "renamed.mkv" {
		t.Fatalf("identity not updated: %+v", moved)
	}
	if moved.Description != "favorite" || moved.Stars != 5 {
		t.Fatalf("user metadata lost across move: %+v", moved)
	}
}

func TestRunShieldsOfflineFolderRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := t.TempDir()
	rootA := filepath.Join(base, "a")
	rootB := filepath.Join(base, "b")
	testsupport.WriteFileContent(t, filepath.Join(rootA, "alpha.mkv"), []byte("alpha"))
	testsupport.WriteFileContent(t, filepath.Join(rootB, "beta.mkv"), []byte("beta"))
	testsupport.AddFolder(t, store, rootA)
	folderB := testsupport.AddFolder(t, store, rootB)

	runReconcile(t, cfg, store)

	// Take folder B offline and rename the file under A.
	if err := os.RemoveAll(rootB); err != nil {
		t.Fatalf("remove rootB: %v", err)
	}
	if err := os.Rename(filepath.Join(rootA, "alpha.mkv"), filepath.Join(rootA, "alpha2.mkv")); err != nil {
		t.Fatalf("rename: %v", err)
	}

	outcome := runReconcile(t, cfg, store)
	if outcome.Moved != 1 {
		t.Fatalf("expected rename to reconcile as move: %+v", outcome)
	}
	if outcome.SkippedOffline != 1 || outcome.Deleted != 0 {
		t.Fatalf("offline row must be shielded: %+v", outcome)
	}

	beta, err := store.EntryByPath(ctx, filepath.Join(rootB, "beta.mkv"))
	if err != nil || beta == nil {
		t.Fatalf("offline row missing: entry=%v err=%v", beta, err)
	}
	if !folderB.Contains(beta.Path) {
		t.Fatalf("offline row path changed: %s", beta.Path)
	}
}

func TestRunShieldsInactiveFolderRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	root := t.TempDir()
	folder := testsupport.AddFolder(t, store, root)
	testsupport.WriteFileContent(t, filepath.Join(root, "a.mkv"), []byte("aa"))

	runReconcile(t, cfg, store)
	if err := store.SetFolderActive(ctx, folder.ID, false); err != nil {
		t.Fatalf("SetFolderActive: %v", err)
	}

	outcome := runReconcile(t, cfg, store)
	if outcome.SkippedOffline != 1 || outcome.Deleted != 0 {
		t.Fatalf("inactive folder rows must be shielded: %+v", outcome)
	}
}

func TestRunMovesRowOutOfOfflineFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := t.TempDir()
	rootA := filepath.Join(base, "a")
	rootB := filepath.Join(base, "b")
	if err := os.MkdirAll(rootA, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testsupport.WriteFileContent(t, filepath.Join(rootB, "film.mkv"), []byte("film bytes"))
	testsupport.AddFolder(t, store, rootA)
	testsupport.AddFolder(t, store, rootB)

	runReconcile(t, cfg, store)
	entry, err := store.EntryByPath(ctx, filepath.Join(rootB, "film.mkv"))
	if err != nil || entry == nil {
		t.Fatalf("EntryByPath: entry=%v err=%v", entry, err)
	}
	if err := store.SetDescription(ctx, entry.ID, "keeper"); err != nil {
		t.Fatalf("SetDescription: %v", err)
	}

	// The file migrates to A and B's device disappears. The move must win
	// over the offline shield or the row and the file drift apart.
	if err := os.Rename(filepath.Join(rootB, "film.mkv"), filepath.Join(rootA, "film.mkv")); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := os.RemoveAll(rootB); err != nil {
		t.Fatalf("remove rootB: %v", err)
	}

	outcome := runReconcile(t, cfg, store)
	if outcome.Moved != 1 || outcome.Inserted != 0 || outcome.SkippedOffline != 0 || outcome.Deleted != 0 {
		t.Fatalf("expected a single move: %+v", outcome)
	}

	moved, err := store.EntryByID(ctx, entry.ID)
	if err != nil || moved == nil {
		t.Fatalf("EntryByID: entry=%v err=%v", moved, err)
	}
	if moved.Path != filepath.Join(rootA, "film.mkv") || moved.Description != "keeper" {
		t.Fatalf("row not moved in place: %+v", moved)
	}
	count, err := store.EntryCount(ctx)
	if err != nil {
		t.Fatalf("EntryCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("move must not leave a duplicate row, got %d rows", count)
	}
}

func TestRunHandlesNestedFolderRoots(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	testsupport.WriteFileContent(t, filepath.Join(sub, "film.mkv"), []byte("film bytes"))
	testsupport.AddFolder(t, store, root)
	testsupport.AddFolder(t, store, sub)

	first := runReconcile(t, cfg, store)
	if first.Inserted != 1 {
		t.Fatalf("file under nested roots must be inserted once: %+v", first)
	}

	second := runReconcile(t, cfg, store)
	if second.Matched != 1 || second.Inserted != 0 || second.Deleted != 0 {
		t.Fatalf("second run should only match: %+v", second)
	}
}

func TestRunShieldsRowsUnderOfflineNestedFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	testsupport.WriteFileContent(t, filepath.Join(sub, "film.mkv"), []byte("film bytes"))
	testsupport.AddFolder(t, store, root)
	testsupport.AddFolder(t, store, sub)

	runReconcile(t, cfg, store)

	// The subfolder's mount goes away while the outer root stays online.
	if err := os.RemoveAll(sub); err != nil {
		t.Fatalf("remove sub: %v", err)
	}

	outcome := runReconcile(t, cfg, store)
	if outcome.SkippedOffline != 1 || outcome.Deleted != 0 {
		t.Fatalf("row under offline nested folder must be shielded: %+v", outcome)
	}
}

func TestRunDeletesRowsOutsideRegisteredFolders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := t.TempDir()
	testsupport.AddFolder(t, store, root)

	testsupport.InsertEntry(t, store, &catalog.Entry{
		Path:     "/somewhere/else/old.mkv",
		Filename: "old.mkv",
		Size:     123,
		Hash:     "stale",
	})

	outcome := runReconcile(t, cfg, store)
	if outcome.Deleted != 1 {
		t.Fatalf("expected out-of-scope row deleted: %+v", outcome)
	}
	count, err := store.EntryCount(context.Background())
	if err != nil {
		t.Fatalf("EntryCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty catalog, got %d rows", count)
	}
}

func TestRunDeletesRowsForVanishedFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := t.TempDir()
	testsupport.AddFolder(t, store, root)
	path := filepath.Join(root, "gone.mkv")
	testsupport.WriteFileContent(t, path, []byte("bytes"))

	runReconcile(t, cfg, store)
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	outcome := runReconcile(t, cfg, store)
	if outcome.Deleted != 1 || outcome.Moved != 0 {
		t.Fatalf("expected row for vanished file deleted: %+v", outcome)
	}
}

func TestRunBackfillsMissingHashOnMatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	root := t.TempDir()
	testsupport.AddFolder(t, store, root)

	path := filepath.Join(root, "legacy.mkv")
	testsupport.WriteFileContent(t, path, []byte("legacy bytes"))
	testsupport.InsertEntry(t, store, &catalog.Entry{
		Path: path, Filename: "legacy.mkv", Size: 12, Hash: "",
	})

	outcome := runReconcile(t, cfg, store)
	if outcome.Matched != 1 || outcome.Inserted != 0 {
		t.Fatalf("expected in-place match: %+v", outcome)
	}
	entry, err := store.EntryByPath(ctx, path)
	if err != nil || entry == nil {
		t.Fatalf("EntryByPath: entry=%v err=%v", entry, err)
	}
	if entry.Hash == "" {
		t.Fatal("expected hash backfill on match")
	}
}

func TestRunFallsBackToNameAndSizeWhenHashMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	root := t.TempDir()
	testsupport.AddFolder(t, store, root)

	content := []byte("movable bytes")
	newPath := filepath.Join(root, "sub", "film.mkv")
	testsupport.WriteFileContent(t, newPath, content)

	// Row recorded before hashing existed: no hash, stale path, same
	// filename and size.
	entry := testsupport.InsertEntry(t, store, &catalog.Entry{
		Path:     filepath.Join(root, "film.mkv"),
		Filename: "film.mkv",
		Size:     int64(len(content)),
		Hash:     "",
		Title:    "Film",
	})

	outcome := runReconcile(t, cfg, store)
	if outcome.Moved != 1 || outcome.Inserted != 0 {
		t.Fatalf("expected name+size move: %+v", outcome)
	}
	moved, err := store.EntryByID(ctx, entry.ID)
	if err != nil || moved == nil {
		t.Fatalf("EntryByID: entry=%v err=%v", moved, err)
	}
	if moved.Path != newPath || moved.Hash == "" {
		t.Fatalf("expected path update and hash backfill: %+v", moved)
	}
}
