package session

// KeyCode identifies a key event independent of the terminal library
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyTab
	KeyShiftTab
	KeyHome
	KeyEnd
	// KeyInterrupt is ctrl+c
	KeyInterrupt
)

// Key is a single keyboard event. Rune is only meaningful for KeyRune.
type Key struct {
	Code KeyCode
	Rune rune
}

// Rune returns the key event for a printable character
func Rune(r rune) Key {
	return Key{Code: KeyRune, Rune: r}
}

// Press returns the key event for a non-printable key
func Press(code KeyCode) Key {
	return Key{Code: code}
}

// is reports whether k is the rune r
func (k Key) is(r rune) bool {
	return k.Code == KeyRune && k.Rune == r
}

// isAny reports whether k is any of the given runes
func (k Key) isAny(runes ...rune) bool {
	for _, r := range runes {
		if k.is(r) {
			return true
		}
	}
	return false
}

// cycle moves index i by delta within [0, n), wrapping at both ends
func cycle(n, i, delta int) int {
	if n <= 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}
