package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/passman-cli/passman/internal/session"
)

var keyCodes = map[tea.KeyType]session.KeyCode{
	tea.KeyEnter:     session.KeyEnter,
	tea.KeyEsc:       session.KeyEsc,
	tea.KeyBackspace: session.KeyBackspace,
	tea.KeyDelete:    session.KeyDelete,
	tea.KeyLeft:      session.KeyLeft,
	tea.KeyRight:     session.KeyRight,
	tea.KeyUp:        session.KeyUp,
	tea.KeyDown:      session.KeyDown,
	tea.KeyTab:       session.KeyTab,
	tea.KeyShiftTab:  session.KeyShiftTab,
	tea.KeyHome:      session.KeyHome,
	tea.KeyEnd:       session.KeyEnd,
	tea.KeyCtrlC:     session.KeyInterrupt,
}

// translate converts a bubbletea key message into session keys. Pasted text
// arrives as one message and expands to one key per rune.
func translate(msg tea.KeyMsg) []session.Key {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return nil
		}
		keys := make([]session.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, session.Rune(r))
		}
		return keys
	case tea.KeySpace:
		return []session.Key{session.Rune(' ')}
	}

	if code, ok := keyCodes[msg.Type]; ok {
		return []session.Key{session.Press(code)}
	}
	return nil
}
