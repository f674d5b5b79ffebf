package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
)

// MoveToTrash relocates path into trashDir under a collision-free name and
// returns the new location. A rename is attempted first; when the trash
// directory lives on a different device the file is copied and the original
// removed. The move is reversible until the trash directory is emptied.
func MoveToTrash(path, trashDir string) (string, error) {
	if trashDir == "" {
		return "", errors.New("trash directory not configured")
	}
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return "", fmt.Errorf("create trash directory: %w", err)
	}

	target := filepath.Join(trashDir, uuid.NewString()+"-"+filepath.Base(path))
	if err := os.Rename(path, target); err == nil {
		return target, nil
	} else if !isCrossDevice(err) {
		return "", fmt.Errorf("move to trash: %w", err)
	}

	if err := CopyFile(path, target); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("copy to trash: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove original after trash copy: %w", err)
	}
	return target, nil
}

// RemoveFile trashes path when trashDir is set, falling back to a permanent
// delete when trashing fails or no trash directory is configured.
func RemoveFile(path, trashDir string) error {
	if trashDir != "" {
		if _, err := MoveToTrash(path, trashDir); err == nil {
			return nil
		}
	}
	return os.Remove(path)
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err == syscall.EXDEV
	}
	return errors.Is(err, syscall.EXDEV)
}
