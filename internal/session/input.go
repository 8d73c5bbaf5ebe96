package session

import "strings"

// textInput is a single-line editable buffer with a caret
type textInput struct {
	value  []rune
	cursor int
	masked bool
}

func newTextInput(initial string, masked bool) textInput {
	v := []rune(initial)
	return textInput{value: v, cursor: len(v), masked: masked}
}

// handle applies an editing key and reports whether it was consumed
func (t *textInput) handle(k Key) bool {
	switch k.Code {
	case KeyRune:
		t.value = append(t.value, 0)
		copy(t.value[t.cursor+1:], t.value[t.cursor:])
		t.value[t.cursor] = k.Rune
		t.cursor++
	case KeyBackspace:
		if t.cursor > 0 {
			t.value = append(t.value[:t.cursor-1], t.value[t.cursor:]...)
			t.cursor--
		}
	case KeyDelete:
		if t.cursor < len(t.value) {
			t.value = append(t.value[:t.cursor], t.value[t.cursor+1:]...)
		}
	case KeyLeft:
		if t.cursor > 0 {
			t.cursor--
		}
	case KeyRight:
		if t.cursor < len(t.value) {
			t.cursor++
		}
	case KeyHome:
		t.cursor = 0
	case KeyEnd:
		t.cursor = len(t.value)
	default:
		return false
	}
	return true
}

func (t textInput) String() string {
	return string(t.value)
}

// display returns the text as it should appear on screen
func (t textInput) display() string {
	if t.masked {
		return strings.Repeat("*", len(t.value))
	}
	return string(t.value)
}

func (t textInput) line(label string) Line {
	return Line{Kind: LineInput, Label: label, Text: t.display(), Cursor: t.cursor}
}

// wipe overwrites the buffer before dropping it
func (t *textInput) wipe() {
	for i := range t.value {
		t.value[i] = 0
	}
	t.value = t.value[:0]
	t.cursor = 0
}
