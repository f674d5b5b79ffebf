package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediacat/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "mediacat")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "catalog.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Reconcile.BatchSize != 100 {
		t.Fatalf("unexpected batch size: %d", cfg.Reconcile.BatchSize)
	}
	if cfg.Scanner.HashPrefixBytes != 1<<20 {
		t.Fatalf("unexpected hash prefix size: %d", cfg.Scanner.HashPrefixBytes)
	}
	if cfg.Dedupe.Strategy != "oldest" {
		t.Fatalf("unexpected dedupe strategy: %q", cfg.Dedupe.Strategy)
	}
	if !cfg.Dedupe.RemoveFiles {
		t.Fatal("expected dedupe.remove_files enabled by default")
	}
	if _, ok := cfg.ExtensionSet()[".mkv"]; !ok {
		t.Fatal("expected .mkv in default extension set")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.TrashDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadReadsFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[scanner]",
		`extensions = ["MP4", "mkv"]`,
		"min_file_size = 2048",
		"",
		"[dedupe]",
		`strategy = "Largest"`,
		"",
		"[reconcile]",
		"batch_size = 25",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if got := cfg.Scanner.Extensions; len(got) != 2 || got[0] != ".mp4" || got[1] != ".mkv" {
		t.Fatalf("unexpected extensions: %v", got)
	}
	if cfg.Scanner.MinFileSize != 2048 {
		t.Fatalf("unexpected min file size: %d", cfg.Scanner.MinFileSize)
	}
	if cfg.Dedupe.Strategy != "largest" {
		t.Fatalf("unexpected strategy: %q", cfg.Dedupe.Strategy)
	}
	if cfg.Reconcile.BatchSize != 25 {
		t.Fatalf("unexpected batch size: %d", cfg.Reconcile.BatchSize)
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[dedupe]\nstrategy = \"shiniest\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown dedupe strategy")
	} else if !strings.Contains(err.Error(), "dedupe.strategy") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMultiRuneMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[dedupe]\nmarker = \"!!\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for multi-character marker")
	}
}

func TestValidateFolderPriorityRequired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[dedupe]\nstrategy = \"folder-priority\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error when folder_priority is empty")
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Reconcile.BatchSize != config.Default().Reconcile.BatchSize {
		t.Fatalf("sample should carry defaults, got batch size %d", cfg.Reconcile.BatchSize)
	}
}
