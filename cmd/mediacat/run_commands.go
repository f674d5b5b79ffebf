package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediacat/internal/catalog"
	"mediacat/internal/config"
	"mediacat/internal/logging"
	"mediacat/internal/report"
	"mediacat/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Reconcile the catalog against disk, then remove duplicates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				return executeRun(cmd, cfg, store, func(r *runner.Runner) (*runner.Summary, error) {
					return r.Run(cmd.Context())
				})
			})
		},
	}
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Reconcile the catalog against disk without deduplicating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				return executeRun(cmd, cfg, store, func(r *runner.Runner) (*runner.Summary, error) {
					return r.Reconcile(cmd.Context())
				})
			})
		},
	}
}

func newDedupeCommand(ctx *commandContext) *cobra.Command {
	var keepFiles bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate entries that share a content hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if keepFiles {
					cfg.Dedupe.RemoveFiles = false
				}
				return executeRun(cmd, cfg, store, func(r *runner.Runner) (*runner.Summary, error) {
					return r.Dedupe(cmd.Context())
				})
			})
		},
	}

	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "Remove catalog rows only, leave duplicate files on disk")
	return cmd
}

func executeRun(cmd *cobra.Command, cfg *config.Config, store *catalog.Store, run func(*runner.Runner) (*runner.Summary, error)) error {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	interactive := stderrIsTerminal() && cfg.Logging.Format == "console"
	reporter, stopProgress := newRunReporter(cmd.ErrOrStderr(), interactive)
	var reporters report.Multi
	reporters = append(reporters, reporter)
	if !interactive {
		reporters = append(reporters, report.NewLog(logger))
	}

	summary, runErr := run(runner.New(cfg, store, reporters, logger))
	stopProgress()
	if summary != nil {
		renderSummary(cmd.OutOrStdout(), summary)
	}
	return runErr
}

func renderSummary(out io.Writer, summary *runner.Summary) {
	rows := [][]string{
		{"Scanned", strconv.Itoa(summary.Scanned)},
		{"Matched", strconv.Itoa(summary.Matched)},
		{"Inserted", strconv.Itoa(summary.Inserted)},
		{"Moved", strconv.Itoa(summary.Moved)},
		{"Deleted", strconv.Itoa(summary.Deleted)},
		{"Skipped offline", strconv.Itoa(summary.SkippedOffline)},
		{"Deduplicated", strconv.Itoa(summary.Deduplicated)},
		{"Trashed files", strconv.Itoa(summary.Trashed)},
		{"Errors", strconv.Itoa(summary.Errors)},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Result", "Count"},
		rows,
		1,
	))
	if len(summary.OfflineFolders) > 0 {
		fmt.Fprintf(out, "Offline folders (untouched): %s\n", strings.Join(summary.OfflineFolders, ", "))
	}
	fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
}
