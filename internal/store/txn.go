package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// AtomicWriter writes a file through a temp file in the same directory and
// renames it over the target on Commit. Readers see either the old file or
// the complete new one.
type AtomicWriter struct {
	targetPath string
	tempPath   string
	tempFile   *os.File
	log        *zap.Logger
}

// NewAtomicWriter creates a new atomic writer for the target path
func NewAtomicWriter(targetPath string, log *zap.Logger) (*AtomicWriter, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(targetPath)
	base := filepath.Base(targetPath)
	if base == "." || base == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid target path: %q", targetPath)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp.%d.%d", base, os.Getpid(), time.Now().UnixNano()))
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	return &AtomicWriter{
		targetPath: targetPath,
		tempPath:   tempPath,
		tempFile:   tempFile,
		log:        log,
	}, nil
}

// Write writes data to the temporary file
func (aw *AtomicWriter) Write(data []byte) (int, error) {
	if aw.tempFile == nil {
		return 0, fmt.Errorf("writer is closed")
	}
	n, err := aw.tempFile.Write(data)
	if err != nil {
		if abortErr := aw.Abort(); abortErr != nil {
			aw.log.Warn("failed to abort after write error", zap.Error(abortErr))
		}
	}
	return n, err
}

// Commit syncs the temp file and renames it over the target
func (aw *AtomicWriter) Commit() error {
	if aw.tempFile == nil {
		return fmt.Errorf("writer is closed")
	}

	if err := aw.tempFile.Sync(); err != nil {
		if abortErr := aw.Abort(); abortErr != nil {
			aw.log.Warn("failed to abort after sync error", zap.Error(abortErr))
		}
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := aw.tempFile.Close(); err != nil {
		aw.tempFile = nil
		_ = os.Remove(aw.tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	aw.tempFile = nil

	if err := os.Rename(aw.tempPath, aw.targetPath); err != nil {
		_ = os.Remove(aw.tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Abort cancels the write and cleans up the temporary file
func (aw *AtomicWriter) Abort() error {
	var err error

	if aw.tempFile != nil {
		if closeErr := aw.tempFile.Close(); closeErr != nil {
			err = closeErr
		}
		aw.tempFile = nil
	}

	if removeErr := os.Remove(aw.tempPath); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = removeErr
	}

	return err
}

// AtomicWriteFile writes data to a file atomically
func AtomicWriteFile(path string, data []byte, log *zap.Logger) error {
	writer, err := NewAtomicWriter(path, log)
	if err != nil {
		return err
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	return writer.Commit()
}

// EnsureFilePermissions tightens the file mode to 0600 if it is group or
// world accessible
func EnsureFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.Mode().Perm()&0o077 != 0 {
		return os.Chmod(path, 0o600)
	}

	return nil
}
