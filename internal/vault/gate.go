package vault

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/passman-cli/passman/internal/domain"
)

var (
	// ErrNoVaultFile is returned when there is no vault to unlock
	ErrNoVaultFile = errors.New("vault file not found")
	// ErrWrongPassphrase is returned for any failure that may stem from a
	// wrong passphrase. It deliberately hides the underlying cause.
	ErrWrongPassphrase = errors.New("wrong passphrase")
)

// Source provides the raw vault bytes. A missing vault must be reported as an
// error wrapping fs.ErrNotExist.
type Source interface {
	Load() ([]byte, error)
}

// Unlocked is the result of a successful authentication
type Unlocked struct {
	Key      Key
	Accounts []domain.Account
}

// Authenticate derives the key from passphrase, verifies it against the passkey
// line and decodes the accounts.
func Authenticate(src Source, passphrase string) (*Unlocked, error) {
	data, err := src.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoVaultFile
		}
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}

	key := DeriveKey(passphrase)
	c, err := NewCipher(key)
	if err != nil {
		Zeroize(key)
		return nil, err
	}

	accounts, err := DecodeVault(c, passphrase, data)
	if err != nil {
		Zeroize(key)
		if errors.Is(err, ErrPassphraseMismatch) {
			return nil, ErrWrongPassphrase
		}
		return nil, err
	}

	return &Unlocked{Key: key, Accounts: accounts}, nil
}

// Seal encodes accounts under a key derived from passphrase
func Seal(passphrase string, accounts []domain.Account) ([]byte, error) {
	c, err := NewPassphraseCipher(passphrase)
	if err != nil {
		return nil, err
	}
	return EncodeVault(c, passphrase, accounts)
}
