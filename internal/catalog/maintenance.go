package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// CheckHealth inspects the catalog database and reports its condition without
// modifying anything. Safe to call while a run is in progress.
func (s *Store) CheckHealth(ctx context.Context) DatabaseHealth {
	health := DatabaseHealth{DBPath: s.path}

	if _, err := os.Stat(s.path); err != nil {
		health.Error = fmt.Sprintf("database file missing: %v", err)
		return health
	}
	health.DatabaseExists = true
	health.DatabaseReadable = unix.Access(s.path, unix.R_OK) == nil

	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'catalog_entries'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		health.Error = "catalog_entries table missing"
		return health
	}
	if err != nil {
		health.Error = fmt.Sprintf("inspect schema: %v", err)
		return health
	}
	health.TableExists = true

	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&health.SchemaVersion); err != nil {
		health.Error = fmt.Sprintf("read schema version: %v", err)
		return health
	}

	var integrity string
	if err := s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&integrity); err != nil {
		health.Error = fmt.Sprintf("integrity check: %v", err)
		return health
	}
	health.IntegrityCheck = integrity == "ok"
	if !health.IntegrityCheck {
		health.Error = fmt.Sprintf("integrity check reported %q", integrity)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM catalog_entries`).Scan(&health.TotalEntries); err != nil {
		health.Error = fmt.Sprintf("count entries: %v", err)
		return health
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM folders`).Scan(&health.TotalFolders); err != nil {
		health.Error = fmt.Sprintf("count folders: %v", err)
		return health
	}
	return health
}

// Stats returns per-folder entry counts plus a bucket for rows whose path
// lies outside every registered folder.
func (s *Store) Stats(ctx context.Context) ([]FolderStats, int, error) {
	folders, err := s.Folders(ctx)
	if err != nil {
		return nil, 0, err
	}
	entries, err := s.ListEntries(ctx)
	if err != nil {
		return nil, 0, err
	}

	stats := make([]FolderStats, len(folders))
	for i, folder := range folders {
		stats[i] = FolderStats{Folder: folder, Online: folder.Active && FolderReachable(folder.Path)}
	}

	orphaned := 0
	for _, entry := range entries {
		matched := false
		for i, folder := range folders {
			if folder.Contains(entry.Path) {
				stats[i].Entries++
				matched = true
				break
			}
		}
		if !matched {
			orphaned++
		}
	}
	return stats, orphaned, nil
}
