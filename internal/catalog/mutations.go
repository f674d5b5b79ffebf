package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mediacat/internal/faults"
)

// Apply commits a batch of mutations in a single transaction. Either every
// mutation lands or none do. Inserted entries get their ID backfilled from
// the database.
func (s *Store) Apply(ctx context.Context, mutations []Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrDatabaseWrite, "catalog", "apply", "begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, mutation := range mutations {
		switch mutation.Kind {
		case MutationInsert:
			if err := applyInsert(ctx, tx, mutation.Entry, now); err != nil {
				return faults.Wrap(faults.ErrDatabaseWrite, "catalog", "apply", "insert entry", err)
			}
		case MutationUpdate:
			if err := applyUpdate(ctx, tx, mutation.Entry, now); err != nil {
				return faults.Wrap(faults.ErrDatabaseWrite, "catalog", "apply", "update entry", err)
			}
		case MutationDelete:
			if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_entries WHERE id = ?`, mutation.EntryID); err != nil {
				return faults.Wrap(faults.ErrDatabaseWrite, "catalog", "apply", "delete entry", err)
			}
		default:
			return fmt.Errorf("unknown mutation kind %q", mutation.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrDatabaseWrite, "catalog", "apply", "commit transaction", err)
	}
	return nil
}

func applyInsert(ctx context.Context, tx *sql.Tx, entry *Entry, now string) error {
	res, err := tx.ExecContext(ctx, `
        INSERT INTO catalog_entries (
            path, filename, size, hash, mod_time,
            title, description, tags, stars, source_folder,
            created_at, updated_at, last_seen_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Path,
		entry.Filename,
		entry.Size,
		entry.Hash,
		nullableTime(entry.ModTime),
		entry.Title,
		entry.Description,
		entry.Tags,
		entry.Stars,
		entry.SourceFolder,
		now,
		now,
		now,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// applyUpdate writes identity and provenance columns only. The user-owned
// title, description, tags, and stars columns are deliberately absent from
// the statement.
func applyUpdate(ctx context.Context, tx *sql.Tx, entry *Entry, now string) error {
	_, err := tx.ExecContext(ctx, `
        UPDATE catalog_entries SET
            path = ?, filename = ?, size = ?, hash = ?, mod_time = ?,
            source_folder = ?, updated_at = ?, last_seen_at = ?
        WHERE id = ?`,
		entry.Path,
		entry.Filename,
		entry.Size,
		entry.Hash,
		nullableTime(entry.ModTime),
		entry.SourceFolder,
		now,
		now,
		entry.ID,
	)
	return err
}
