package session

// LineKind tells the renderer how to style a line
type LineKind int

const (
	LinePlain LineKind = iota
	LineSelected
	LineInput
	LineNotice
	LineWarning
	LineHint
)

// Line is one row of a rendered screen. For LineInput, Cursor is the caret
// position in runes within Text.
type Line struct {
	Kind   LineKind
	Label  string
	Text   string
	Cursor int
}

// Screen is a terminal-independent rendering of the current state
type Screen struct {
	Title string
	Lines []Line
	Hint  string
}

func (s *Screen) add(kind LineKind, label, text string) {
	s.Lines = append(s.Lines, Line{Kind: kind, Label: label, Text: text})
}
