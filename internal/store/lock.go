package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Error variables for file locking operations
var (
	// ErrLockNotHeld is returned when attempting to release a lock that isn't held
	ErrLockNotHeld = errors.New("lock not held")
)

const lockRetryInterval = 50 * time.Millisecond

// FileLock guards a vault file against a second concurrent session. The lock
// is an OS advisory lock on "<vault>.lock", so it is released by the kernel if
// the process dies.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a new file lock for the given vault path
func NewFileLock(vaultPath string) *FileLock {
	return &FileLock{path: vaultPath + ".lock"}
}

// Path returns the lock file path
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires the lock, retrying until timeout. It returns ErrVaultLocked if
// another process keeps holding it.
func (fl *FileLock) Lock(timeout time.Duration) error {
	if fl.file != nil {
		return errors.New("lock already held")
	}

	if err := os.MkdirAll(filepath.Dir(fl.path), 0o700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		file, err := os.OpenFile(filepath.Clean(fl.path), os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open lock file: %w", err)
		}

		if err := waitLock(file, deadline); err != nil {
			_ = file.Close()
			return err
		}

		if fl.current(file) {
			fl.own(file)
			return nil
		}

		// The previous holder unlinked the file we were waiting on
		_ = unlock(file)
		_ = file.Close()
	}
}

func waitLock(file *os.File, deadline time.Time) error {
	for {
		if err := tryLock(file); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrVaultLocked
		}
		time.Sleep(lockRetryInterval)
	}
}

// current reports whether file is still the file at the lock path
func (fl *FileLock) current(file *os.File) bool {
	held, err := file.Stat()
	if err != nil {
		return false
	}
	onDisk, err := os.Stat(fl.path)
	if err != nil {
		return false
	}
	return os.SameFile(held, onDisk)
}

func (fl *FileLock) own(file *os.File) {
	// Record the owner for humans inspecting a stuck lock
	if err := file.Truncate(0); err == nil {
		_, _ = file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	fl.file = file
}

// Unlock releases the lock. Where the platform allows it the lock file is
// removed first, while still locked, so a waiter that wins the old file sees
// it is stale and retries.
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return ErrLockNotHeld
	}

	var err error
	if removeOnUnlock {
		if removeErr := os.Remove(fl.path); removeErr != nil && !os.IsNotExist(removeErr) {
			err = removeErr
		}
	}
	if unlockErr := unlock(fl.file); unlockErr != nil && err == nil {
		err = unlockErr
	}
	if closeErr := fl.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	fl.file = nil

	return err
}

// IsLocked returns true if the lock is currently held by this process
func (fl *FileLock) IsLocked() bool {
	return fl.file != nil
}
