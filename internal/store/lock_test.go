//go:build unix

package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLockExclusive(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.txt")

	first := NewFileLock(vaultPath)
	require.NoError(t, first.Lock(time.Second))
	assert.True(t, first.IsLocked())

	second := NewFileLock(vaultPath)
	err := second.Lock(120 * time.Millisecond)
	assert.ErrorIs(t, err, ErrVaultLocked)
	assert.False(t, second.IsLocked())

	require.NoError(t, first.Unlock())
	_, err = os.Stat(first.Path())
	assert.True(t, os.IsNotExist(err), "lock file should be removed")

	require.NoError(t, second.Lock(time.Second))
	require.NoError(t, second.Unlock())
}

func TestFileLockUnlockNotHeld(t *testing.T) {
	l := NewFileLock(filepath.Join(t.TempDir(), "vault.txt"))
	assert.ErrorIs(t, l.Unlock(), ErrLockNotHeld)
}

func TestFileStoreAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.txt")
	a := NewFileStore(path, nil)
	b := NewFileStore(path, nil)

	require.NoError(t, a.Acquire(time.Second))
	assert.ErrorIs(t, b.Acquire(100*time.Millisecond), ErrVaultLocked)
	require.NoError(t, a.Release())
	require.NoError(t, a.Release(), "releasing twice is a no-op")

	require.NoError(t, b.Acquire(time.Second))
	require.NoError(t, b.Release())
}

func TestFileLockDetectsReplacedFile(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.txt")
	l := NewFileLock(vaultPath)

	stale, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_RDWR, 0o600)
	require.NoError(t, err)
	defer stale.Close()
	assert.True(t, l.current(stale))

	require.NoError(t, os.Remove(l.Path()))
	assert.False(t, l.current(stale), "an unlinked file is not the lock")

	fresh, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_RDWR, 0o600)
	require.NoError(t, err)
	defer fresh.Close()
	assert.False(t, l.current(stale))
	assert.True(t, l.current(fresh))
}

func TestFileLockWaiterRetriesAfterRemoval(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.txt")

	first := NewFileLock(vaultPath)
	require.NoError(t, first.Lock(time.Second))

	second := NewFileLock(vaultPath)
	done := make(chan error, 1)
	go func() { done <- second.Lock(2 * time.Second) }()

	time.Sleep(3 * lockRetryInterval)
	require.NoError(t, first.Unlock())
	require.NoError(t, <-done)

	onDisk, err := os.Stat(second.Path())
	require.NoError(t, err, "the waiter holds a file that is still linked")
	held, err := second.file.Stat()
	require.NoError(t, err)
	assert.True(t, os.SameFile(held, onDisk))

	third := NewFileLock(vaultPath)
	assert.ErrorIs(t, third.Lock(100*time.Millisecond), ErrVaultLocked)

	require.NoError(t, second.Unlock())
}
