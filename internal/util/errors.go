// Package util provides utility functions and helpers used throughout passman.
// It maps domain errors to process exit codes.
package util

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/passman-cli/passman/internal/store"
	"github.com/passman-cli/passman/internal/vault"
)

// Exit codes
const (
	ExitOK              = 0
	ExitError           = 1
	ExitInvalidInput    = 2
	ExitVaultLocked     = 3
	ExitIntegrityErr    = 4
	ExitWrongPassphrase = 5
)

// ErrInvalidInput marks errors caused by bad flags, arguments or answers
var ErrInvalidInput = errors.New("invalid input")

var (
	exit   = os.Exit
	stderr io.Writer = os.Stderr

	warningLabel = color.New(color.FgBlack, color.BgYellow)
	errorLabel   = color.New(color.FgWhite, color.BgRed)
)

// ExitCode returns the exit code for err
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, vault.ErrWrongPassphrase):
		return ExitWrongPassphrase
	case errors.Is(err, ErrInvalidInput):
		return ExitInvalidInput
	case errors.Is(err, store.ErrVaultLocked):
		return ExitVaultLocked
	case errors.Is(err, vault.ErrMalformedVault), errors.Is(err, store.ErrDuplicateLabel):
		return ExitIntegrityErr
	default:
		return ExitError
	}
}

// ExitWithCode exits the program with the specified code and message
func ExitWithCode(code int, format string, args ...interface{}) {
	if format != "" {
		fmt.Fprintf(stderr, format+"\n", args...)
	}
	exit(code)
}

// HandleError reports err on stderr and exits with its code
func HandleError(err error, context string) {
	if err == nil {
		return
	}

	msg := err.Error()
	if context != "" {
		msg = context + ": " + msg
	}

	code := ExitCode(err)
	switch code {
	case ExitWrongPassphrase:
		ExitWithCode(code, "%s That's the wrong password!", warningLabel.Sprint(" WARNING "))
	case ExitVaultLocked:
		ExitWithCode(code, "%s %s", warningLabel.Sprint(" WARNING "), msg)
	case ExitIntegrityErr:
		ExitWithCode(code, "%s %s\nThe vault file was left untouched.", errorLabel.Sprint(" ERROR "), msg)
	default:
		ExitWithCode(code, "%s %s", errorLabel.Sprint(" ERROR "), msg)
	}
}
