// Package runner drives complete catalog maintenance runs. A run scans,
// reconciles, and optionally deduplicates with exclusive ownership of the
// store, and reconciliation always finishes before deduplication starts.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mediacat/internal/catalog"
	"mediacat/internal/config"
	"mediacat/internal/dedupe"
	"mediacat/internal/logging"
	"mediacat/internal/namemeta"
	"mediacat/internal/reconcile"
	"mediacat/internal/report"
	"mediacat/internal/scanner"
)

// Summary aggregates the counts of one run.
type Summary struct {
	RunID          string
	Scanned        int
	Matched        int
	Inserted       int
	Moved          int
	Deleted        int
	SkippedOffline int
	Deduplicated   int
	Trashed        int
	Errors         int
	OfflineFolders []string
	Duration       time.Duration
}

// Runner wires the engines together for one store.
type Runner struct {
	cfg      *config.Config
	store    *catalog.Store
	reporter report.Reporter
	logger   *slog.Logger
}

// New builds a runner. Nil reporter and logger are replaced with no-ops.
func New(cfg *config.Config, store *catalog.Store, reporter report.Reporter, logger *slog.Logger) *Runner {
	if reporter == nil {
		reporter = report.Nop{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, store: store, reporter: reporter, logger: logger}
}

// Reconcile scans all registered folders and reconciles the catalog against
// the result.
func (r *Runner) Reconcile(ctx context.Context) (*Summary, error) {
	summary, ctx, logger, started := r.begin(ctx)
	if err := r.reconcile(ctx, summary, logger); err != nil {
		return summary, err
	}
	summary.Duration = time.Since(started)
	r.finish(summary, logger)
	return summary, nil
}

// Dedupe collapses duplicate groups without a fresh scan. Row hashes from
// the last reconciliation drive the grouping.
func (r *Runner) Dedupe(ctx context.Context) (*Summary, error) {
	summary, ctx, logger, started := r.begin(ctx)
	if err := r.dedupe(ctx, summary, logger); err != nil {
		return summary, err
	}
	summary.Duration = time.Since(started)
	r.finish(summary, logger)
	return summary, nil
}

// Run performs a full pass. Deduplication starts only after reconciliation
// has committed or the run has been cleanly cancelled.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary, ctx, logger, started := r.begin(ctx)
	if err := r.reconcile(ctx, summary, logger); err != nil {
		return summary, err
	}
	if err := r.dedupe(ctx, summary, logger); err != nil {
		return summary, err
	}
	summary.Duration = time.Since(started)
	r.finish(summary, logger)
	return summary, nil
}

func (r *Runner) begin(ctx context.Context) (*Summary, context.Context, *slog.Logger, time.Time) {
	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	return &Summary{RunID: runID}, logging.WithRunID(ctx, runID), logger, time.Now()
}

func (r *Runner) finish(summary *Summary, logger *slog.Logger) {
	logger.Info("run complete",
		logging.Int("scanned", summary.Scanned),
		logging.Int("matched", summary.Matched),
		logging.Int("inserted", summary.Inserted),
		logging.Int("moved", summary.Moved),
		logging.Int("deleted", summary.Deleted),
		logging.Int("skipped_offline", summary.SkippedOffline),
		logging.Int("deduplicated", summary.Deduplicated),
		logging.Int("errors", summary.Errors),
		logging.Duration("duration", summary.Duration))
}

func (r *Runner) reconcile(ctx context.Context, summary *Summary, logger *slog.Logger) error {
	folders, err := r.store.Folders(ctx)
	if err != nil {
		return err
	}

	scan, err := scanner.New(r.cfg, logger).Scan(ctx, folders)
	if err != nil {
		return err
	}
	summary.Scanned = len(scan.Files)
	summary.Errors += scan.Errors
	for _, folder := range scan.Offline {
		summary.OfflineFolders = append(summary.OfflineFolders, folder.Path)
	}

	engine := reconcile.New(
		r.store,
		namemeta.NewParser(r.cfg.Dedupe.Marker),
		r.cfg.Reconcile.BatchSize,
		r.reporter,
		logger,
	)
	outcome, err := engine.Run(ctx, folders, scan)
	if outcome != nil {
		summary.Matched = outcome.Matched
		summary.Inserted = outcome.Inserted
		summary.Moved = outcome.Moved
		summary.Deleted = outcome.Deleted
		summary.SkippedOffline = outcome.SkippedOffline
	}
	return err
}

func (r *Runner) dedupe(ctx context.Context, summary *Summary, logger *slog.Logger) error {
	engine := dedupe.New(r.store, dedupe.Options{
		Strategy:       r.cfg.Dedupe.Strategy,
		Marker:         r.cfg.Dedupe.Marker,
		FolderPriority: r.cfg.Dedupe.FolderPriority,
		RemoveFiles:    r.cfg.Dedupe.RemoveFiles,
		TrashDir:       r.cfg.Paths.TrashDir,
		BatchSize:      r.cfg.Reconcile.BatchSize,
	}, r.reporter, logger)

	outcome, err := engine.Run(ctx)
	if outcome != nil {
		summary.Deduplicated = outcome.Removed
		summary.Trashed = outcome.Trashed
		summary.Errors += outcome.Errors
	}
	return err
}
