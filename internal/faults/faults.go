package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the failure kinds the engines distinguish.
//
// ErrFileAccess and ErrHashComputation are recoverable: the affected file is
// skipped (or treated as not yet observed) and the run continues. A file whose
// hash cannot be computed must never cause a catalog deletion on its own.
// ErrDatabaseWrite is fatal for the remainder of a run; batches committed
// before the failure stay visible.
var (
	ErrFileAccess      = errors.New("file access error")
	ErrHashComputation = errors.New("hash computation error")
	ErrDatabaseWrite   = errors.New("database write error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFileAccess
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether a run should absorb the error, count it, and
// continue with the next unit of work.
func Recoverable(err error) bool {
	switch {
	case errors.Is(err, ErrDatabaseWrite):
		return false
	case errors.Is(err, ErrFileAccess), errors.Is(err, ErrHashComputation):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
