package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// AddFolder registers a new root folder. The path is stored cleaned and
// absolute so Contains checks behave the same across runs.
func (s *Store) AddFolder(ctx context.Context, path string, medium Medium, device string) (*Folder, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve folder path: %w", err)
	}
	abs = filepath.Clean(abs)

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO folders (path, medium, device, active, created_at)
        VALUES (?, ?, ?, 1, ?)`,
		abs, string(medium), device, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("folder id: %w", err)
	}
	return &Folder{ID: id, Path: abs, Medium: medium, Device: device, Active: true, CreatedAt: now}, nil
}

// Folders returns every registered folder ordered by id.
func (s *Store) Folders(ctx context.Context) ([]Folder, error) {
	return s.queryFolders(ctx, `SELECT id, path, medium, device, active, created_at FROM folders ORDER BY id`)
}

// ActiveFolders returns folders the scanner is allowed to walk.
func (s *Store) ActiveFolders(ctx context.Context) ([]Folder, error) {
	return s.queryFolders(ctx, `SELECT id, path, medium, device, active, created_at FROM folders WHERE active = 1 ORDER BY id`)
}

func (s *Store) queryFolders(ctx context.Context, query string) ([]Folder, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var (
			folder     Folder
			medium     string
			device     sql.NullString
			active     int
			createdRaw string
		)
		if err := rows.Scan(&folder.ID, &folder.Path, &medium, &device, &active, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folder.Medium = Medium(medium)
		folder.Device = device.String
		folder.Active = active != 0
		if created, err := parseTimeString(createdRaw); err == nil {
			folder.CreatedAt = created
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// FolderByPath looks up a folder by its cleaned absolute path.
func (s *Store) FolderByPath(ctx context.Context, path string) (*Folder, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve folder path: %w", err)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, path, medium, device, active, created_at FROM folders WHERE path = ?`,
		filepath.Clean(abs))

	var (
		folder     Folder
		medium     string
		device     sql.NullString
		active     int
		createdRaw string
	)
	err = row.Scan(&folder.ID, &folder.Path, &medium, &device, &active, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	folder.Medium = Medium(medium)
	folder.Device = device.String
	folder.Active = active != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		folder.CreatedAt = created
	}
	return &folder, nil
}

// SetFolderActive flips a folder's active flag.
func (s *Store) SetFolderActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE folders SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("folder %d not found", id)
	}
	return nil
}

// RemoveFolder deletes a folder registration. Catalog rows under the folder
// are left in place until the next reconciliation run classifies them.
func (s *Store) RemoveFolder(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete folder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// FolderReachable reports whether the folder root can currently be entered.
// A registered folder whose device is unplugged or whose share is unmounted
// fails this probe and is treated as offline rather than empty.
func FolderReachable(path string) bool {
	return unix.Access(path, unix.R_OK|unix.X_OK) == nil
}
