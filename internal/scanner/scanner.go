// Package scanner walks registered media folders and observes the files in
// them. One scan produces the complete set of media files visible right now;
// reconciliation compares that set against the catalog.
package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"mediacat/internal/catalog"
	"mediacat/internal/config"
	"mediacat/internal/faults"
	"mediacat/internal/fileutil"
	"mediacat/internal/logging"
)

// File is one media file observed during a scan. Hash is the prefix digest
// of the file's leading bytes, not a whole-file digest.
type File struct {
	Path         string
	Filename     string
	Size         int64
	ModTime      time.Time
	Hash         string
	SourceFolder string
}

// Result carries everything one scan pass learned.
type Result struct {
	Files []File
	// ScannedFolders holds the ids of folders that were actually walked.
	// Active folders whose root was unreachable are listed in Offline
	// instead; their catalog rows must not be treated as missing.
	ScannedFolders map[int64]bool
	Offline        []catalog.Folder
	// Errors counts files that could not be read or hashed and were skipped.
	Errors int
}

// Scanner walks folder roots and hashes recognized media files.
type Scanner struct {
	extensions  map[string]struct{}
	prefixBytes int64
	minSize     int64
	logger      *slog.Logger
}

// New builds a scanner from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	prefix := cfg.Scanner.HashPrefixBytes
	if prefix <= 0 {
		prefix = fileutil.DefaultHashPrefixBytes
	}
	return &Scanner{
		extensions:  cfg.ExtensionSet(),
		prefixBytes: prefix,
		minSize:     cfg.Scanner.MinFileSize,
		logger:      logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks every active folder whose root is reachable. Unreachable active
// folders are reported as offline, never as empty. Per-file failures are
// logged and counted; the walk always continues.
func (s *Scanner) Scan(ctx context.Context, folders []catalog.Folder) (*Result, error) {
	result := &Result{ScannedFolders: make(map[int64]bool)}
	seen := make(map[string]struct{})

	for _, folder := range folders {
		if !folder.Active {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !catalog.FolderReachable(folder.Path) {
			s.logger.Warn("folder offline, skipping",
				logging.String(logging.FieldFolder, folder.Path))
			result.Offline = append(result.Offline, folder)
			continue
		}
		if err := s.walkFolder(ctx, folder, result, seen); err != nil {
			return nil, err
		}
		result.ScannedFolders[folder.ID] = true
	}
	return result, nil
}

func (s *Scanner) walkFolder(ctx context.Context, folder catalog.Folder, result *Result, seen map[string]struct{}) error {
	return filepath.WalkDir(folder.Path, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			result.Errors++
			s.logger.Warn("walk error, skipping",
				logging.String(logging.FieldPath, path),
				logging.Error(faults.Wrap(faults.ErrFileAccess, "scanner", "walk", "read directory entry", err)))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := s.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		// Nested roots walk shared subtrees more than once. Each file is
		// attributed to the first folder that reached it.
		if _, ok := seen[path]; ok {
			return nil
		}
		seen[path] = struct{}{}

		info, err := d.Info()
		if err != nil {
			result.Errors++
			s.logger.Warn("stat failed, skipping",
				logging.String(logging.FieldPath, path),
				logging.Error(faults.Wrap(faults.ErrFileAccess, "scanner", "walk", "stat file", err)))
			return nil
		}
		if s.minSize > 0 && info.Size() < s.minSize {
			return nil
		}

		// A hash failure must not make the file invisible: its row would be
		// deleted as missing. The file is recorded without a hash instead.
		hash, err := fileutil.HashFilePrefix(path, s.prefixBytes)
		if err != nil {
			result.Errors++
			hash = ""
			s.logger.Warn("hash failed, recording file unhashed",
				logging.String(logging.FieldPath, path),
				logging.Error(faults.Wrap(faults.ErrHashComputation, "scanner", "walk", "hash file prefix", err)))
		}

		result.Files = append(result.Files, File{
			Path:         path,
			Filename:     filepath.Base(path),
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			Hash:         hash,
			SourceFolder: folder.Path,
		})
		return nil
	})
}
