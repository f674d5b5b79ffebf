package batch_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"mediacat/internal/batch"
	"mediacat/internal/catalog"
	"mediacat/internal/report"
)

type recordingStore struct {
	batches [][]catalog.Mutation
	failOn  int
}

func (s *recordingStore) Apply(_ context.Context, mutations []catalog.Mutation) error {
	if s.failOn > 0 && len(s.batches)+1 == s.failOn {
		return errors.New("apply failed")
	}
	batch := make([]catalog.Mutation, len(mutations))
	copy(batch, mutations)
	s.batches = append(s.batches, batch)
	return nil
}

func TestCommitterFlushesFullBatches(t *testing.T) {
	store := &recordingStore{}
	committer := batch.New(store, 3, nil, "reconcile")
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if err := committer.Add(ctx, catalog.Delete(int64(i+1))); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if len(store.batches) != 2 {
		t.Fatalf("expected 2 full batches, got %d", len(store.batches))
	}
	if committer.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", committer.Pending())
	}

	if err := committer.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if committer.Committed() != 7 {
		t.Fatalf("expected 7 committed, got %d", committer.Committed())
	}
	if len(store.batches) != 3 || len(store.batches[2]) != 1 {
		t.Fatalf("unexpected batches: %v", store.batches)
	}
}

func TestCommitterStopsOnCancellation(t *testing.T) {
	store := &recordingStore{}
	committer := batch.New(store, 2, nil, "reconcile")
	ctx, cancel := context.WithCancel(context.Background())

	for i := 0; i < 4; i++ {
		if err := committer.Add(ctx, catalog.Delete(int64(i+1))); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	cancel()

	if err := committer.Add(ctx, catalog.Delete(5)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// Only the two full batches flushed before cancellation survive.
	if committer.Committed() != 4 {
		t.Fatalf("expected 4 committed, got %d", committer.Committed())
	}
}

func TestCommitterReportsProgress(t *testing.T) {
	store := &recordingStore{}
	ch := report.NewChannel(16)
	committer := batch.New(store, 10, ch, "dedupe")
	committer.SetTotal(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := committer.Add(ctx, catalog.Delete(int64(i+1))); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	ch.Close()

	current := 0
	for event := range ch.Events() {
		current++
		if event.Phase != "dedupe" || event.Current != current || event.Total != 3 {
			t.Fatalf("unexpected event: %+v", event)
		}
	}
	if current != 3 {
		t.Fatalf("expected 3 events, got %d", current)
	}
}

func TestCommitterSurfacesApplyFailure(t *testing.T) {
	store := &recordingStore{failOn: 2}
	committer := batch.New(store, 2, nil, "reconcile")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := committer.Add(ctx, catalog.Delete(int64(i+1))); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	err := committer.Add(ctx, catalog.Delete(3))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := committer.Add(ctx, catalog.Delete(4)); err == nil {
		t.Fatal("expected second batch to fail")
	}
	if committer.Committed() != 2 {
		t.Fatalf("expected only first batch committed, got %d", committer.Committed())
	}
}

// sqlStore applies mutations against a raw database handle. It mirrors the
// catalog store's transaction discipline so driver-level commit failures can
// be simulated.
type sqlStore struct {
	db *sql.DB
}

func (s *sqlStore) Apply(ctx context.Context, mutations []catalog.Mutation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	for _, mutation := range mutations {
		if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_entries WHERE id = ?", mutation.EntryID); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func TestCommitterAbortsWhenCommitFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM catalog_entries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM catalog_entries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	committer := batch.New(&sqlStore{db: db}, 2, nil, "reconcile")
	ctx := context.Background()

	if err := committer.Add(ctx, catalog.Delete(1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err = committer.Add(ctx, catalog.Delete(2))
	if err == nil || err.Error() != "commit: disk I/O error" {
		t.Fatalf("expected commit failure, got %v", err)
	}
	if committer.Committed() != 0 {
		t.Fatalf("expected nothing committed, got %d", committer.Committed())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
