package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// Crypto constants
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM tag size
)

// keyInfo binds derived keys to this file format
var keyInfo = []byte("passman vault field key")

var (
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidKeySize   = errors.New("invalid key size")
)

// Key is the symmetric key material used to encrypt vault fields
type Key []byte

// Cipher encrypts a string to a reversible text encoding and back
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(text string) (string, error)
}

// DeriveKey expands the passphrase into an AES-256 key.
// The passphrase is the key material; there is no salt and no stretching.
func DeriveKey(passphrase string) Key {
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(passphrase), nil, keyInfo)
	// hkdf cannot fail for a 32 byte read with sha256
	_, _ = io.ReadFull(r, key)
	return key
}

// AESCipher implements Cipher with AES-256-GCM and standard base64
type AESCipher struct {
	aead  cipher.AEAD
	nonce io.Reader
}

// NewCipher creates an AES-256-GCM cipher for the given key
func NewCipher(key Key) (*AESCipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESCipher{aead: gcm, nonce: rand.Reader}, nil
}

// NewPassphraseCipher derives a key from the passphrase and returns its cipher
func NewPassphraseCipher(passphrase string) (*AESCipher, error) {
	key := DeriveKey(passphrase)
	defer Zeroize(key)
	return NewCipher(key)
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext || tag)
func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(c.nonce, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any malformed or unauthentic input yields
// ErrDecryptionFailed.
func (c *AESCipher) Decrypt(text string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	if len(sealed) < NonceSize+TagSize {
		return "", ErrDecryptionFailed
	}

	plaintext, err := c.aead.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// Zeroize securely clears a byte slice
func Zeroize(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// SecureCompare performs constant-time comparison of two strings
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
