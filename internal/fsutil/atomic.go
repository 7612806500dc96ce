// Package fsutil provides whole-file replacement that never leaves a
// half-written document behind.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Tiliavir/rp-shift-tracker/internal/logging"
)

// AtomicWrite writes data to a temporary file in the target directory, fsyncs
// it and renames it over path. The parent directory is created when missing.
// On failure the previous content of path is left untouched. Once the rename
// has succeeded the write is reported as done.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("atomic write mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".rpst-tmp-*")
	if err != nil {
		return fmt.Errorf("atomic write create tmp: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("atomic write: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("atomic write chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("atomic write fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("atomic write close: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomic write rename: %w", err)
	}
	success = true

	// The rename is done; a failed directory sync is only logged.
	if err := syncDir(dir); err != nil {
		logging.WarnErr("atomic write: fsync dir failed", err, map[string]any{"path": path})
	}
	return nil
}

var syncDir = FsyncDir

// FsyncDir fsyncs a directory so a completed rename survives a crash.
// Directories cannot be synced on Windows; there it is a no-op.
func FsyncDir(dirPath string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("fsync dir open: %w", err)
	}
	defer d.Close()
	return d.Sync()
}
