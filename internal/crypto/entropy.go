// Package crypto generates random passwords and passphrases for new or
// rotated account passwords.
package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Charset defines the character set to use for password generation
type Charset string

const (
	// CharsetAlpha uses only alphabetic characters (a-z, A-Z)
	CharsetAlpha Charset = "alpha"
	// CharsetAlnum uses alphanumeric characters (a-z, A-Z, 0-9)
	CharsetAlnum Charset = "alnum"
	// CharsetAlnumSpecial adds punctuation to CharsetAlnum
	CharsetAlnumSpecial Charset = "alnum_special"
)

// DefaultLength is the password length used when none is configured
const DefaultLength = 20

var (
	errInvalidLength   = errors.New("length must be positive")
	errUnknownCharset  = errors.New("unknown charset")
	errInvalidWordSize = errors.New("word count must be positive")
)

const (
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
	symbols = "!@#$%^&*()-_=+[]{}<>?,.:;/'\"|\\~"
)

var (
	charsetLookup = map[Charset][]rune{
		CharsetAlpha:        []rune(letters),
		CharsetAlnum:        []rune(letters + digits),
		CharsetAlnumSpecial: []rune(letters + digits + symbols),
	}
	randSource io.Reader = rand.Reader
	randMux    sync.RWMutex
)

var dicewareAdjectives = []string{
	"able", "amber", "brave", "calm", "clever", "crisp", "daring", "eager", "early", "fancy", "gentle", "happy", "ideal", "jolly", "keen", "lively", "magic", "noble", "oaken", "pearl", "quick", "ready", "solar", "tidy", "urban", "vivid", "warm", "young", "zesty", "bright", "candid", "dazzle", "elegant", "friendly", "glossy", "humble",
}

var dicewareNouns = []string{
	"anchor", "beacon", "canyon", "dream", "ember", "forest", "galaxy", "harbor", "island", "jungle", "kingdom", "lantern", "meadow", "nebula", "ocean", "prairie", "quartz", "river", "summit", "temple", "unicorn", "valley", "willow", "xenon", "yonder", "zephyr", "apple", "bridge", "comet", "dragon", "feather", "garden", "horizon", "idol", "jade", "keeper", "legend",
}

var (
	dicewareList []string
	dicewareOnce sync.Once
)

// ParseCharset validates a charset name, case-insensitively
func ParseCharset(name string) (Charset, error) {
	c := Charset(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := charsetLookup[c]; !ok {
		return "", fmt.Errorf("%w: %s (valid: alpha, alnum, alnum_special)", errUnknownCharset, name)
	}
	return c, nil
}

// Generator produces passwords of a fixed shape
type Generator struct {
	Length  int
	Charset Charset
}

// NewGenerator returns a generator, falling back to defaults for a zero
// length or empty charset
func NewGenerator(length int, charset Charset) Generator {
	if length <= 0 {
		length = DefaultLength
	}
	if charset == "" {
		charset = CharsetAlnumSpecial
	}
	return Generator{Length: length, Charset: charset}
}

// Generate returns a new random password
func (g Generator) Generate() (string, error) {
	return GeneratePassword(g.Length, g.Charset)
}

// SetRandomSource sets the random number generator source.
// If r is nil, it resets to the default crypto/rand.Reader.
func SetRandomSource(r io.Reader) {
	randMux.Lock()
	if r == nil {
		randSource = rand.Reader
	} else {
		randSource = r
	}
	randMux.Unlock()
}

func source() io.Reader {
	randMux.RLock()
	defer randMux.RUnlock()
	return randSource
}

// GeneratePassword returns a random password of length runes drawn uniformly
// from charset
func GeneratePassword(length int, charset Charset) (string, error) {
	if length <= 0 {
		return "", errInvalidLength
	}

	chars, ok := charsetLookup[charset]
	if !ok {
		return "", errUnknownCharset
	}

	src := source()
	var b strings.Builder
	b.Grow(length)

	for i := 0; i < length; i++ {
		idx, err := randomIndex(src, len(chars))
		if err != nil {
			return "", err
		}
		b.WriteRune(chars[idx])
	}

	return b.String(), nil
}

// GenerateDiceware returns wordCount random adjective-noun words
func GenerateDiceware(wordCount int) ([]string, error) {
	if wordCount <= 0 {
		return nil, errInvalidWordSize
	}

	words := dicewareWords()
	src := source()

	result := make([]string, wordCount)
	for i := range result {
		idx, err := randomIndex(src, len(words))
		if err != nil {
			return nil, err
		}
		result[i] = words[idx]
	}

	return result, nil
}

func dicewareWords() []string {
	dicewareOnce.Do(func() {
		merged := make([]string, 0, len(dicewareAdjectives)*len(dicewareNouns))
		for _, adj := range dicewareAdjectives {
			for _, noun := range dicewareNouns {
				merged = append(merged, adj+"-"+noun)
			}
		}
		dicewareList = merged
	})
	return dicewareList
}

// randomIndex returns a uniform index in [0, max) using rejection sampling
func randomIndex(r io.Reader, max int) (int, error) {
	if max <= 0 {
		return 0, errInvalidLength
	}

	if max <= 256 {
		var buf [1]byte
		usable := 256 - (256 % max)
		for {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, err
			}
			if int(buf[0]) < usable {
				return int(buf[0]) % max, nil
			}
		}
	}

	var buf [4]byte
	const maxUint32 = ^uint32(0)
	limit := maxUint32 - (maxUint32 % uint32(max))
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		val := binary.BigEndian.Uint32(buf[:])
		if val < limit {
			return int(val % uint32(max)), nil
		}
	}
}
