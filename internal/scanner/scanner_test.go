package scanner_test

import (
	"context"
	"path/filepath"
	"testing"

	"mediacat/internal/catalog"
	"mediacat/internal/scanner"
	"mediacat/internal/testsupport"
)

func TestScanFiltersExtensionsAndSize(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMinFileSize(10))
	root := t.TempDir()

	testsupport.WriteFile(t, filepath.Join(root, "keep.mkv"), 1024)
	testsupport.WriteFile(t, filepath.Join(root, "nested", "keep.MP4"), 512)
	testsupport.WriteFile(t, filepath.Join(root, "skip.txt"), 1024)
	testsupport.WriteFile(t, filepath.Join(root, "tiny.mkv"), 5)

	s := scanner.New(cfg, nil)
	result, err := s.Scan(context.Background(), []catalog.Folder{
		{ID: 1, Path: root, Active: true},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(result.Files), result.Files)
	}
	for _, file := range result.Files {
		if file.Hash == "" {
			t.Fatalf("expected hash for %s", file.Path)
		}
		if file.SourceFolder != root {
			t.Fatalf("expected source folder %s, got %s", root, file.SourceFolder)
		}
		if file.ModTime.IsZero() {
			t.Fatalf("expected mod time for %s", file.Path)
		}
	}
	if !result.ScannedFolders[1] {
		t.Fatal("expected folder 1 to be recorded as scanned")
	}
}

func TestScanIdenticalContentSharesHash(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := t.TempDir()

	testsupport.WriteFileContent(t, filepath.Join(root, "one.mkv"), []byte("same bytes"))
	testsupport.WriteFileContent(t, filepath.Join(root, "two.mkv"), []byte("same bytes"))
	testsupport.WriteFileContent(t, filepath.Join(root, "three.mkv"), []byte("other bytes"))

	s := scanner.New(cfg, nil)
	result, err := s.Scan(context.Background(), []catalog.Folder{
		{ID: 1, Path: root, Active: true},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	hashes := make(map[string][]string)
	for _, file := range result.Files {
		hashes[file.Hash] = append(hashes[file.Hash], file.Filename)
	}
	if len(hashes) != 2 {
		t.Fatalf("expected 2 distinct hashes, got %d", len(hashes))
	}
}

func TestScanNestedRootsObserveFilesOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	testsupport.WriteFileContent(t, filepath.Join(sub, "film.mkv"), []byte("film bytes"))

	s := scanner.New(cfg, nil)
	result, err := s.Scan(context.Background(), []catalog.Folder{
		{ID: 1, Path: root, Active: true},
		{ID: 2, Path: sub, Active: true},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("file under nested roots must be observed once, got %d: %+v", len(result.Files), result.Files)
	}
	if result.Files[0].SourceFolder != root {
		t.Fatalf("expected attribution to the first folder walked, got %s", result.Files[0].SourceFolder)
	}
	if !result.ScannedFolders[1] || !result.ScannedFolders[2] {
		t.Fatal("both roots should be recorded as scanned")
	}
}

func TestScanSkipsOfflineAndInactiveFolders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	online := t.TempDir()
	inactive := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(online, "a.mkv"), 64)
	testsupport.WriteFile(t, filepath.Join(inactive, "b.mkv"), 64)

	missing := filepath.Join(t.TempDir(), "unplugged")

	s := scanner.New(cfg, nil)
	result, err := s.Scan(context.Background(), []catalog.Folder{
		{ID: 1, Path: online, Active: true},
		{ID: 2, Path: missing, Active: true},
		{ID: 3, Path: inactive, Active: false},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected only the online folder's file, got %d", len(result.Files))
	}
	if len(result.Offline) != 1 || result.Offline[0].ID != 2 {
		t.Fatalf("expected folder 2 offline, got %+v", result.Offline)
	}
	if result.ScannedFolders[2] || result.ScannedFolders[3] {
		t.Fatal("offline and inactive folders must not be marked scanned")
	}
}

func TestScanHonorsCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.mkv"), 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := scanner.New(cfg, nil)
	if _, err := s.Scan(ctx, []catalog.Folder{{ID: 1, Path: root, Active: true}}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
