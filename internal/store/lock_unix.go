//go:build unix

package store

import (
	"os"

	"golang.org/x/sys/unix"
)

// removeOnUnlock unlinks the lock file while the flock is still held
const removeOnUnlock = true

// tryLock takes a non-blocking exclusive flock on the file
func tryLock(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

// unlock releases the flock
func unlock(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}
