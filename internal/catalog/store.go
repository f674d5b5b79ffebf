package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"mediacat/internal/config"
)

// ErrLocked indicates another process holds the catalog's single-writer lock.
var ErrLocked = errors.New("catalog is locked by another process")

// Store manages catalog persistence backed by SQLite. Runs assume exclusive
// ownership of the store; Open enforces this across processes with a lock
// file next to the database.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the catalog database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !held {
		return nil, ErrLocked
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection and releases the lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// EntryByID fetches a catalog entry by identifier.
func (s *Store) EntryByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// EntryByPath fetches a catalog entry by its absolute path.
func (s *Store) EntryByPath(ctx context.Context, path string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE path = ?`, path)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry by path: %w", err)
	}
	return entry, nil
}

// ListEntries returns all catalog entries ordered by id.
func (s *Store) ListEntries(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM catalog_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// EntriesByHash returns entries sharing a content hash ordered by id.
func (s *Store) EntriesByHash(ctx context.Context, hash string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM catalog_entries WHERE hash = ? ORDER BY id`, hash)
	if err != nil {
		return nil, fmt.Errorf("entries by hash: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DuplicateGroups returns every set of two or more entries sharing a non-empty
// content hash. Groups and members are ordered by id so repeated runs see an
// identical sequence.
func (s *Store) DuplicateGroups(ctx context.Context) ([][]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+entryColumns+` FROM catalog_entries
        WHERE hash != '' AND hash IN (
            SELECT hash FROM catalog_entries
            WHERE hash != ''
            GROUP BY hash HAVING COUNT(1) > 1
        )
        ORDER BY hash, id`)
	if err != nil {
		return nil, fmt.Errorf("query duplicate groups: %w", err)
	}
	defer rows.Close()

	var groups [][]*Entry
	var current []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if len(current) > 0 && current[0].Hash != entry.Hash {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, entry)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Group order follows the lowest member id, not the hash string.
	sortGroupsByFirstID(groups)
	return groups, nil
}

func sortGroupsByFirstID(groups [][]*Entry) {
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && groups[j][0].ID < groups[j-1][0].ID; j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}
}

// InsertEntry persists a new entry outside of a batch and backfills its id.
func (s *Store) InsertEntry(ctx context.Context, entry *Entry) error {
	return s.Apply(ctx, []Mutation{Insert(entry)})
}

// SetTitle updates the user-owned title field.
func (s *Store) SetTitle(ctx context.Context, id int64, title string) error {
	return s.setUserField(ctx, id, "title", title)
}

// SetDescription updates the user-owned description field.
func (s *Store) SetDescription(ctx context.Context, id int64, description string) error {
	return s.setUserField(ctx, id, "description", description)
}

// SetTags updates the user-owned tags field.
func (s *Store) SetTags(ctx context.Context, id int64, tags string) error {
	return s.setUserField(ctx, id, "tags", tags)
}

// SetStars updates the user-owned star rating.
func (s *Store) SetStars(ctx context.Context, id int64, stars int) error {
	if stars < 0 || stars > 5 {
		return fmt.Errorf("stars must be between 0 and 5, got %d", stars)
	}
	return s.setUserField(ctx, id, "stars", stars)
}

func (s *Store) setUserField(ctx context.Context, id int64, column string, value any) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE catalog_entries SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %d not found", id)
	}
	return nil
}

// RemoveEntry deletes an entry by identifier.
func (s *Store) RemoveEntry(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM catalog_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// EntryCount returns the number of catalog rows.
func (s *Store) EntryCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM catalog_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

const entryColumns = "id, path, filename, size, hash, mod_time, title, description, tags, stars, source_folder, created_at, updated_at, last_seen_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id           int64
		path         string
		filename     string
		size         int64
		hash         string
		modTimeRaw   sql.NullString
		title        sql.NullString
		description  sql.NullString
		tags         sql.NullString
		stars        sql.NullInt64
		sourceFolder sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		lastSeenRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&path,
		&filename,
		&size,
		&hash,
		&modTimeRaw,
		&title,
		&description,
		&tags,
		&stars,
		&sourceFolder,
		&createdRaw,
		&updatedRaw,
		&lastSeenRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:           id,
		Path:         path,
		Filename:     filename,
		Size:         size,
		Hash:         hash,
		Title:        title.String,
		Description:  description.String,
		Tags:         tags.String,
		Stars:        int(stars.Int64),
		SourceFolder: sourceFolder.String,
	}

	if modTimeRaw.Valid {
		if mod, err := parseTimeString(modTimeRaw.String); err == nil {
			entry.ModTime = &mod
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		entry.UpdatedAt = updated
	}
	if lastSeenRaw.Valid {
		if seen, err := parseTimeString(lastSeenRaw.String); err == nil {
			entry.LastSeenAt = &seen
		}
	}
	return entry, nil
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
