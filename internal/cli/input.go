package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/passman-cli/passman/internal/util"
)

var (
	errPassphraseMismatch = fmt.Errorf("%w: passwords do not match", util.ErrInvalidInput)
	errEmptyPassphrase    = fmt.Errorf("%w: password cannot be empty", util.ErrInvalidInput)
)

// Replaced in tests
var (
	promptPassword = PromptPassword
	promptConfirm  = PromptConfirm
)

// stdin is unbuffered so a prompt never consumes input meant for the session
// that follows it
var stdin io.Reader = os.Stdin

// PromptPassword prompts for a password without echoing to terminal. When
// stdin is not a terminal the password is read as a plain line.
func PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := readLine(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return line, nil
	}

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// promptNewPassphrase asks for a new password twice
func promptNewPassphrase() (string, error) {
	password, err := promptPassword("New password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errEmptyPassphrase
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return "", err
	}

	if password != confirm {
		return "", errPassphraseMismatch
	}

	return password, nil
}

// PromptConfirm prompts for yes/no confirmation
func PromptConfirm(prompt string, defaultYes bool) (bool, error) {
	suffix := " (y/N) "
	if defaultYes {
		suffix = " (Y/n) "
	}
	fmt.Fprint(os.Stderr, prompt+suffix)

	input, err := readLine(stdin)
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	return parseConfirm(input, defaultYes), nil
}

func parseConfirm(input string, defaultYes bool) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

// readLine reads one byte at a time up to and including '\n' and returns the
// line without its terminator. A final line without a newline is accepted.
func readLine(r io.Reader) (string, error) {
	var line []byte
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n == 1 {
			if b[0] == '\n' {
				break
			}
			line = append(line, b[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				break
			}
			return "", err
		}
	}
	return strings.TrimSuffix(string(line), "\r"), nil
}
