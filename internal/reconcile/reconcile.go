// Package reconcile brings the catalog back in line with what a scan
// observed on disk. Every row is classified exactly once per run: matched in
// place, moved, shielded by an offline folder, or removed. User-owned
// metadata rides along with the row through all of it.
package reconcile

import (
	"context"
	"log/slog"

	"mediacat/internal/batch"
	"mediacat/internal/catalog"
	"mediacat/internal/identity"
	"mediacat/internal/logging"
	"mediacat/internal/report"
	"mediacat/internal/scanner"
)

// NameParser derives the initial title and star rating for a file the
// catalog has never seen. The engine owns no parsing rules of its own.
type NameParser interface {
	Parse(filename string) (title string, stars int)
}

// Outcome summarizes one reconciliation pass.
type Outcome struct {
	Matched        int
	Moved          int
	Inserted       int
	Deleted        int
	SkippedOffline int
}

// Engine reconciles catalog rows against a scan result.
type Engine struct {
	store     *catalog.Store
	parser    NameParser
	reporter  report.Reporter
	logger    *slog.Logger
	batchSize int
}

// New builds a reconciliation engine. A nil reporter discards progress; a
// nil logger discards log output.
func New(store *catalog.Store, parser NameParser, batchSize int, reporter report.Reporter, logger *slog.Logger) *Engine {
	if reporter == nil {
		reporter = report.Nop{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:     store,
		parser:    parser,
		reporter:  reporter,
		logger:    logging.NewComponentLogger(logger, "reconcile"),
		batchSize: batchSize,
	}
}

// Run classifies every catalog row against the scan, then inserts rows for
// files no row claimed. Writes go through a batch committer; on failure the
// committed batches stand and the remainder is abandoned.
func (e *Engine) Run(ctx context.Context, folders []catalog.Folder, scan *scanner.Result) (*Outcome, error) {
	entries, err := e.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	idx := identity.Build(scan.Files)
	committer := batch.New(e.store, e.batchSize, e.reporter, "reconcile")
	committer.SetTotal(len(entries) + len(scan.Files))

	outcome := &Outcome{}
	for _, entry := range entries {
		if file := idx.ClaimPath(entry.Path); file != nil {
			outcome.Matched++
			if err := committer.Add(ctx, catalog.Update(refreshed(entry, file))); err != nil {
				return outcome, err
			}
			continue
		}

		var file *scanner.File
		if entry.Hash != "" {
			file = idx.ClaimByHash(entry.Hash, entry.Filename)
		}
		if file == nil {
			file = idx.ClaimByName(entry.Filename, entry.Size)
		}
		if file != nil {
			outcome.Moved++
			e.logger.Info("entry moved",
				logging.String("from", entry.Path),
				logging.String("to", file.Path))
			if err := committer.Add(ctx, catalog.Update(refreshed(entry, file))); err != nil {
				return outcome, err
			}
			continue
		}

		// The shield applies only to rows the scan could not account for.
		// A move onto an online folder always wins over it: otherwise the
		// relocated file would come back as a fresh row alongside the old one.
		if shielded(entry.Path, folders, scan.ScannedFolders) {
			outcome.SkippedOffline++
			e.logger.Debug("row shielded by offline folder",
				logging.String(logging.FieldPath, entry.Path))
			continue
		}

		outcome.Deleted++
		e.logger.Info("entry gone, removing row",
			logging.String(logging.FieldPath, entry.Path))
		if err := committer.Add(ctx, catalog.Delete(entry.ID)); err != nil {
			return outcome, err
		}
	}

	for _, file := range idx.Unclaimed() {
		title, stars := e.parser.Parse(file.Filename)
		mod := file.ModTime
		entry := &catalog.Entry{
			Path:         file.Path,
			Filename:     file.Filename,
			Size:         file.Size,
			Hash:         file.Hash,
			ModTime:      &mod,
			Title:        title,
			Stars:        stars,
			SourceFolder: file.SourceFolder,
		}
		outcome.Inserted++
		if err := committer.Add(ctx, catalog.Insert(entry)); err != nil {
			return outcome, err
		}
	}

	if err := committer.Flush(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// refreshed copies the row and overwrites its identity fields from the
// scanned file. Title, description, tags, and stars stay with the row.
func refreshed(entry *catalog.Entry, file *scanner.File) *catalog.Entry {
	updated := *entry
	updated.Path = file.Path
	updated.Filename = file.Filename
	updated.Size = file.Size
	if file.Hash != "" {
		updated.Hash = file.Hash
	}
	mod := file.ModTime
	updated.ModTime = &mod
	updated.SourceFolder = file.SourceFolder
	return &updated
}

// shielded reports whether any registered folder containing the row's path
// was not walked this run. Such rows must not be touched: the file may well
// still exist on the unplugged device. With nested roots every containing
// folder counts, so an offline subfolder protects its rows even when the
// outer root was scanned.
func shielded(path string, folders []catalog.Folder, scanned map[int64]bool) bool {
	for _, folder := range folders {
		if folder.Contains(path) && !scanned[folder.ID] {
			return true
		}
	}
	return false
}
