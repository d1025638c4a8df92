package fsutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
)

// BackupSuffix is appended to a file's path to name its sidecar backup.
const BackupSuffix = ".astrewrite.bak"

// BackupPath returns the sidecar backup path for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// CommitOptions controls Commit.
type CommitOptions struct {
	// Backup keeps the original content in a sidecar file. An existing
	// backup is never overwritten, so repeated runs keep the first original.
	Backup bool
}

// CommitResult describes what Commit did.
type CommitResult struct {
	// Written is false when the content was already on disk.
	Written bool

	// BackupPath is set when a new backup was created.
	BackupPath string
}

// Commit replaces the file described by snap with content. It fails with
// ErrModified if the file changed since the snapshot was taken.
func Commit(ctx context.Context, snap *Snapshot, original, content []byte, opts CommitOptions) (CommitResult, error) {
	var result CommitResult
	if bytes.Equal(original, content) {
		return result, nil
	}

	changed, err := snap.Changed(ctx)
	if err != nil {
		return result, err
	}
	if changed {
		return result, fmt.Errorf("%w: %s", ErrModified, snap.Path)
	}

	if opts.Backup {
		backup := BackupPath(snap.Path)
		_, err := os.Stat(backup)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if err := WriteAtomic(ctx, backup, original, snap.Mode); err != nil {
				return result, fmt.Errorf("write backup: %w", err)
			}
			result.BackupPath = backup
		case err != nil:
			return result, fmt.Errorf("stat backup path: %w", err)
		}
	}

	if err := WriteAtomic(ctx, snap.Path, content, snap.Mode); err != nil {
		return result, err
	}
	result.Written = true
	return result, nil
}

// RestoreBackup copies the sidecar backup of path back over it and removes
// the backup. It returns false if no backup exists.
func RestoreBackup(ctx context.Context, path string) (bool, error) {
	backup := BackupPath(path)
	content, snap, err := ReadFile(ctx, backup)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read backup: %w", err)
	}

	if err := WriteAtomic(ctx, path, content, snap.Mode); err != nil {
		return false, fmt.Errorf("restore from backup: %w", err)
	}
	if err := os.Remove(backup); err != nil {
		return true, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}
