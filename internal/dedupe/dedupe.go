// Package dedupe removes redundant catalog entries that share a content
// hash. One member of each duplicate group is kept; the rest lose their
// catalog row and, when configured, their file goes to the trash directory.
package dedupe

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"mediacat/internal/batch"
	"mediacat/internal/catalog"
	"mediacat/internal/faults"
	"mediacat/internal/fileutil"
	"mediacat/internal/logging"
	"mediacat/internal/namemeta"
	"mediacat/internal/report"
)

// Options configures keeper selection and file removal.
type Options struct {
	// Strategy breaks ties after marker counts: oldest, newest,
	// folder-priority, largest.
	Strategy string
	// Marker is the leading filename character counted first when picking
	// the keeper.
	Marker string
	// FolderPriority orders folder prefixes from most to least preferred.
	// Consulted only by the folder-priority strategy.
	FolderPriority []string
	// RemoveFiles trashes losing files. When false only rows are removed.
	RemoveFiles bool
	// TrashDir receives removed files. Empty means permanent deletion.
	TrashDir  string
	BatchSize int
}

// Outcome summarizes one deduplication pass.
type Outcome struct {
	Groups  int
	Removed int
	Trashed int
	Errors  int
}

// Engine collapses duplicate groups down to their keeper.
type Engine struct {
	store    *catalog.Store
	opts     Options
	parser   namemeta.Parser
	reporter report.Reporter
	logger   *slog.Logger
}

// New builds a deduplication engine.
func New(store *catalog.Store, opts Options, reporter report.Reporter, logger *slog.Logger) *Engine {
	if reporter == nil {
		reporter = report.Nop{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:    store,
		opts:     opts,
		parser:   namemeta.NewParser(opts.Marker),
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "dedupe"),
	}
}

// Run processes every duplicate group in a stable order. Groups of one are
// never touched. A loser whose file cannot be removed keeps its row so the
// catalog never forgets a file that is still on disk.
func (e *Engine) Run(ctx context.Context) (*Outcome, error) {
	groups, err := e.store.DuplicateGroups(ctx)
	if err != nil {
		return nil, err
	}

	committer := batch.New(e.store, e.opts.BatchSize, e.reporter, "dedupe")
	outcome := &Outcome{Groups: len(groups)}
	total := 0
	for _, group := range groups {
		total += len(group) - 1
	}
	committer.SetTotal(total)

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		keeper := e.selectKeeper(group)
		e.logger.Info("duplicate group",
			logging.String("hash", group[0].Hash),
			logging.Int("members", len(group)),
			logging.String("keeper", keeper.Path))

		for _, entry := range group {
			if entry.ID == keeper.ID {
				continue
			}
			if e.opts.RemoveFiles {
				removed, err := e.removeFile(entry.Path)
				if err != nil {
					if !faults.Recoverable(err) {
						return outcome, err
					}
					outcome.Errors++
					e.logger.Warn("could not remove duplicate file, keeping row",
						logging.String(logging.FieldPath, entry.Path),
						logging.Error(err))
					continue
				}
				if removed {
					outcome.Trashed++
				}
			}
			outcome.Removed++
			if err := committer.Add(ctx, catalog.Delete(entry.ID)); err != nil {
				return outcome, err
			}
		}
	}

	if err := committer.Flush(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// removeFile trashes the loser's file. A file that is already gone is not an
// error; its row is stale either way.
func (e *Engine) removeFile(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if err := fileutil.RemoveFile(path, e.opts.TrashDir); err != nil {
		return false, faults.Wrap(faults.ErrFileAccess, "dedupe", "remove", "remove duplicate file", err)
	}
	return true, nil
}

// selectKeeper picks the group member to retain. Marker count wins first,
// then the configured strategy, then the lowest id. The cascade is total, so
// identical inputs always produce the same keeper.
func (e *Engine) selectKeeper(group []*catalog.Entry) *catalog.Entry {
	keeper := group[0]
	for _, entry := range group[1:] {
		if e.better(entry, keeper) {
			keeper = entry
		}
	}
	return keeper
}

func (e *Engine) better(a, b *catalog.Entry) bool {
	am, bm := e.parser.MarkerCount(a.Filename), e.parser.MarkerCount(b.Filename)
	if am != bm {
		return am > bm
	}

	switch e.opts.Strategy {
	case "newest":
		at, bt := modTime(a), modTime(b)
		if !at.Equal(bt) {
			return at.After(bt)
		}
	case "folder-priority":
		ap, bp := e.folderRank(a.SourceFolder), e.folderRank(b.SourceFolder)
		if ap != bp {
			return ap < bp
		}
	case "largest":
		if a.Size != b.Size {
			return a.Size > b.Size
		}
	default: // oldest
		at, bt := modTime(a), modTime(b)
		if !at.Equal(bt) {
			return at.Before(bt)
		}
	}

	return a.ID < b.ID
}

// folderRank returns the index of the first priority prefix containing the
// folder, or the list length when none match.
func (e *Engine) folderRank(folder string) int {
	for i, prefix := range e.opts.FolderPriority {
		if folder == prefix || strings.HasPrefix(folder, strings.TrimSuffix(prefix, "/")+"/") {
			return i
		}
	}
	return len(e.opts.FolderPriority)
}

func modTime(entry *catalog.Entry) time.Time {
	if entry.ModTime == nil {
		return time.Time{}
	}
	return *entry.ModTime
}
