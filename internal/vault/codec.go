// Package vault implements the encrypted vault file format and the
// passphrase gate in front of it.
//
// # File format
//
//	line 1        encrypted passphrase (passkey line)
//	lines 2..5    label, username, email, password of account 1
//	lines 6..9    account 2
//	...
//
// Every non-empty value is encrypted independently. An empty value is written
// as a literal empty line and an empty line always decodes to the empty
// string, so absent usernames and emails round-trip as absent.
package vault

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/passman-cli/passman/internal/domain"
)

// RecordLines is the number of lines occupied by one account
const RecordLines = 4

var (
	// ErrPassphraseMismatch is returned when the passkey line does not decrypt
	// to the supplied passphrase
	ErrPassphraseMismatch = errors.New("passphrase does not match vault")
	// ErrMalformedVault is returned for structural corruption found after the
	// passphrase was verified
	ErrMalformedVault = errors.New("vault data is corrupted")
)

// EncodeField encrypts a single value. The empty string is written as an
// empty line.
func EncodeField(c Cipher, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	return c.Encrypt(text)
}

// DecodeField decrypts a single line produced by EncodeField
func DecodeField(c Cipher, line string) (string, error) {
	if line == "" {
		return "", nil
	}
	text, err := c.Decrypt(line)
	if err != nil {
		return "", fmt.Errorf("decode field: %w", err)
	}
	return text, nil
}

// EncodeAccount encodes an account into its four lines
func EncodeAccount(c Cipher, a domain.Account) ([RecordLines]string, error) {
	var lines [RecordLines]string
	for i, f := range domain.Fields {
		line, err := EncodeField(c, a.Get(f))
		if err != nil {
			return lines, fmt.Errorf("encode %s: %w", strings.ToLower(f.String()), err)
		}
		lines[i] = line
	}
	return lines, nil
}

// DecodeAccount decodes exactly four lines into an account
func DecodeAccount(c Cipher, lines []string) (domain.Account, error) {
	var a domain.Account
	if len(lines) != RecordLines {
		return a, fmt.Errorf("%w: account record has %d lines, want %d", ErrMalformedVault, len(lines), RecordLines)
	}

	for i, f := range domain.Fields {
		value, err := DecodeField(c, lines[i])
		if err != nil {
			return domain.Account{}, fmt.Errorf("%s: %w", strings.ToLower(f.String()), err)
		}
		a = a.Set(f, value)
	}

	if a.Label == "" {
		return domain.Account{}, fmt.Errorf("%w: account has an empty label", ErrMalformedVault)
	}

	return a, nil
}

// EncodeVault renders the complete vault file in memory
func EncodeVault(c Cipher, passphrase string, accounts []domain.Account) ([]byte, error) {
	var buf bytes.Buffer

	passkey, err := EncodeField(c, passphrase)
	if err != nil {
		return nil, fmt.Errorf("encode passkey: %w", err)
	}
	buf.WriteString(passkey)
	buf.WriteByte('\n')

	for i, a := range accounts {
		lines, err := EncodeAccount(c, a)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i+1, err)
		}
		for _, line := range lines {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes(), nil
}

// DecodeVault verifies the passkey line against passphrase and decodes the
// accounts. A mismatch returns ErrPassphraseMismatch before any account is
// looked at.
func DecodeVault(c Cipher, passphrase string, data []byte) ([]domain.Account, error) {
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, ErrPassphraseMismatch
	}

	passkey, err := DecodeField(c, lines[0])
	if err != nil || !SecureCompare(passkey, passphrase) {
		return nil, ErrPassphraseMismatch
	}

	body := lines[1:]
	if len(body)%RecordLines != 0 {
		return nil, fmt.Errorf("%w: %d body lines is not a multiple of %d", ErrMalformedVault, len(body), RecordLines)
	}

	accounts := make([]domain.Account, 0, len(body)/RecordLines)
	for i := 0; i < len(body); i += RecordLines {
		a, err := DecodeAccount(c, body[i:i+RecordLines])
		if err != nil {
			if !errors.Is(err, ErrMalformedVault) {
				err = fmt.Errorf("%w: %w", ErrMalformedVault, err)
			}
			return nil, fmt.Errorf("account %d: %w", i/RecordLines+1, err)
		}
		accounts = append(accounts, a)
	}

	return accounts, nil
}

// splitLines splits on '\n', tolerating '\r\n' and a missing final newline
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
