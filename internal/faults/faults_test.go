package faults_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"mediacat/internal/faults"
)

func TestWrapTagsMarker(t *testing.T) {
	err := faults.Wrap(faults.ErrFileAccess, "scanner", "walk", "permission denied", fs.ErrPermission)
	if !errors.Is(err, faults.ErrFileAccess) {
		t.Fatalf("expected ErrFileAccess marker, got %v", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "scanner: walk: permission denied") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestRecoverable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{faults.Wrap(faults.ErrFileAccess, "scanner", "open", "", nil), true},
		{faults.Wrap(faults.ErrHashComputation, "scanner", "hash", "", nil), true},
		{faults.Wrap(faults.ErrDatabaseWrite, "batch", "commit", "", nil), false},
		{errors.New("unclassified"), false},
	}
	for _, tc := range cases {
		if got := faults.Recoverable(tc.err); got != tc.want {
			t.Fatalf("Recoverable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
