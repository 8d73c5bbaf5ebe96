// Package store holds the in-memory account collection of a session and the
// file-backed persistence of the encoded vault.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Error variables for store operations
var (
	// ErrVaultExists is returned when attempting to create a vault that already exists
	ErrVaultExists = errors.New("vault already exists")
	// ErrVaultLocked is returned when the vault is locked by another process
	ErrVaultLocked = errors.New("vault is locked by another process")
	// ErrAccountNotFound is returned when no account has the requested label
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateLabel is returned when a label is already used by another account
	ErrDuplicateLabel = errors.New("an account with this label already exists")
	// ErrEmptyLabel is returned when an account has no label
	ErrEmptyLabel = errors.New("account label cannot be empty")
)

// FileStore reads and writes the encoded vault at a fixed path
type FileStore struct {
	path string
	lock *FileLock
	log  *zap.Logger
}

// NewFileStore creates a file store for the vault at path
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{
		path: path,
		lock: NewFileLock(path),
		log:  log,
	}
}

// Path returns the vault file path
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether the vault file is present
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the raw vault bytes. A missing file yields an error wrapping
// fs.ErrNotExist.
func (s *FileStore) Load() ([]byte, error) {
	if err := EnsureFilePermissions(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to tighten vault permissions", zap.Error(err))
	}

	data, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}

	s.log.Debug("vault loaded", zap.Int("bytes", len(data)))
	return data, nil
}

// Save replaces the vault with data in a single atomic rename
func (s *FileStore) Save(data []byte) error {
	if err := AtomicWriteFile(s.path, data, s.log); err != nil {
		return fmt.Errorf("failed to save vault: %w", err)
	}

	s.log.Debug("vault saved", zap.Int("bytes", len(data)))
	return nil
}

// Create writes a new vault, refusing to replace an existing one unless force
// is set
func (s *FileStore) Create(data []byte, force bool) error {
	if s.Exists() && !force {
		return ErrVaultExists
	}
	return s.Save(data)
}

// Acquire takes the session lock on the vault
func (s *FileStore) Acquire(timeout time.Duration) error {
	return s.lock.Lock(timeout)
}

// Release drops the session lock
func (s *FileStore) Release() error {
	if !s.lock.IsLocked() {
		return nil
	}
	return s.lock.Unlock()
}
