//go:build windows

package store

import (
	"os"

	"golang.org/x/sys/windows"
)

// removeOnUnlock is false because an open file cannot be unlinked. The lock
// file stays in place between sessions.
const removeOnUnlock = false

// tryLock takes a non-blocking exclusive lock on the first byte of the file
func tryLock(file *os.File) error {
	var overlapped windows.Overlapped
	return windows.LockFileEx(
		windows.Handle(file.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, &overlapped,
	)
}

// unlock releases the lock taken by tryLock
func unlock(file *os.File) error {
	var overlapped windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(file.Fd()), 0, 1, 0, &overlapped)
}
