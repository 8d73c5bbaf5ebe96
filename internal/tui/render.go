package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/passman-cli/passman/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("15")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("15")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().Reverse(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	hintStyle     = lipgloss.NewStyle().Faint(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("11")).
			Padding(0, 1)
)

// Render draws a session screen as terminal text
func Render(s session.Screen, width int) string {
	var b strings.Builder

	if s.Title != "" {
		b.WriteString(titleStyle.Render(s.Title))
		b.WriteString("\n\n")
	}

	for _, l := range s.Lines {
		b.WriteString(renderLine(l))
		b.WriteString("\n")
	}

	if s.Hint != "" {
		b.WriteString("\n")
		hint := hintStyle
		if width > 0 {
			hint = hint.MaxWidth(width)
		}
		b.WriteString(hint.Render(s.Hint))
	}

	return b.String()
}

func renderLine(l session.Line) string {
	text := l.Text
	if l.Label != "" && l.Kind != session.LineInput {
		text = l.Label + ": " + text
	}

	switch l.Kind {
	case session.LineSelected:
		return selectedStyle.Render("> " + text)
	case session.LineInput:
		return labelStyle.Render(l.Label) + " " + withCursor(l.Text, l.Cursor)
	case session.LineNotice:
		return noticeStyle.Render(text)
	case session.LineWarning:
		return warningStyle.Render("WARNING") + " " + text
	case session.LineHint:
		return hintStyle.Render(text)
	default:
		return "  " + text
	}
}

// withCursor draws the caret as a reversed cell at rune offset pos
func withCursor(text string, pos int) string {
	runes := []rune(text)
	if pos < 0 {
		pos = 0
	}
	if pos >= len(runes) {
		return text + cursorStyle.Render(" ")
	}
	return string(runes[:pos]) + cursorStyle.Render(string(runes[pos])) + string(runes[pos+1:])
}
