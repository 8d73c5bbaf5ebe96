// Package clipboard wraps the system clipboard for copying account fields.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available
var ErrUnsupported = errors.New("clipboard is not supported on this system")

var (
	writeAll = clipboard.WriteAll
	readAll  = clipboard.ReadAll
)

// System is the OS clipboard. It remembers the last text it wrote so Clear
// only wipes what this process put there.
type System struct {
	last string
	held bool
}

// New returns a System clipboard, or ErrUnsupported when atotto/clipboard has
// no backend for this host
func New() (*System, error) {
	if clipboard.Unsupported {
		return nil, ErrUnsupported
	}
	return &System{}, nil
}

// SetText copies text to the clipboard
func (s *System) SetText(text string) error {
	if err := writeAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	s.last = text
	s.held = true
	return nil
}

// Clear empties the clipboard if it still holds the text written by SetText.
// Content replaced by another program is left alone.
func (s *System) Clear() error {
	if !s.holding() {
		return nil
	}
	current, err := readAll()
	if err == nil && current != s.last {
		s.release()
		return nil
	}
	if err := writeAll(""); err != nil {
		return fmt.Errorf("failed to clear clipboard: %w", err)
	}
	s.release()
	return nil
}

// holding reports whether a copied value may still be in the clipboard
func (s *System) holding() bool {
	return s.held
}

func (s *System) release() {
	s.last = ""
	s.held = false
}
