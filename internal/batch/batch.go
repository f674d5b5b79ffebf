// Package batch groups catalog mutations into fixed-size transactions.
// Engines hand every write to a Committer; the catalog only ever sees whole
// batches, so a cancelled or failed run leaves exactly the committed batches
// behind.
package batch

import (
	"context"

	"mediacat/internal/catalog"
	"mediacat/internal/report"
)

// Store is the slice of the catalog a Committer writes through.
type Store interface {
	Apply(ctx context.Context, mutations []catalog.Mutation) error
}

// DefaultSize is the batch size used when configuration supplies none.
const DefaultSize = 100

// Committer accumulates mutations and commits every size of them in one
// transaction. Not safe for concurrent use; a run owns its committer.
type Committer struct {
	store    Store
	size     int
	reporter report.Reporter
	phase    string

	pending   []catalog.Mutation
	processed int
	total     int
	committed int
}

// New builds a committer for one run phase. A non-positive size falls back
// to DefaultSize; a nil reporter discards progress.
func New(store Store, size int, reporter report.Reporter, phase string) *Committer {
	if size <= 0 {
		size = DefaultSize
	}
	if reporter == nil {
		reporter = report.Nop{}
	}
	return &Committer{store: store, size: size, reporter: reporter, phase: phase}
}

// SetTotal records the expected operation count for progress events.
func (c *Committer) SetTotal(total int) {
	c.total = total
}

// Add queues one mutation, flushing when the batch fills. Cancellation is
// checked before the mutation is queued, so a cancelled run commits nothing
// beyond already-flushed batches.
func (c *Committer) Add(ctx context.Context, mutation catalog.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.pending = append(c.pending, mutation)
	c.processed++
	c.reporter.Report(report.Event{
		Phase:   c.phase,
		Current: c.processed,
		Total:   c.total,
		Message: string(mutation.Kind),
		Success: true,
	})
	if len(c.pending) >= c.size {
		return c.Flush(ctx)
	}
	return nil
}

// Flush commits all pending mutations in one transaction. On failure the
// pending batch is kept so the error is attributable, but the run should
// stop writing.
func (c *Committer) Flush(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.store.Apply(ctx, c.pending); err != nil {
		return err
	}
	c.committed += len(c.pending)
	c.pending = c.pending[:0]
	return nil
}

// Committed returns how many mutations have reached the database.
func (c *Committer) Committed() int {
	return c.committed
}

// Pending returns how many mutations await the next flush.
func (c *Committer) Pending() int {
	return len(c.pending)
}
