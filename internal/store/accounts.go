package store

import (
	"fmt"
	"strings"

	"github.com/passman-cli/passman/internal/domain"
)

// Accounts is the ordered, label-unique collection of accounts of one
// session. Insertion order is preserved for display and persistence.
type Accounts struct {
	items []domain.Account
}

// NewAccounts builds a collection from a decoded vault. It fails if two
// accounts share a label.
func NewAccounts(list []domain.Account) (*Accounts, error) {
	s := &Accounts{items: make([]domain.Account, 0, len(list))}
	for _, a := range list {
		if err := s.Add(a); err != nil {
			return nil, fmt.Errorf("account %q: %w", a.Label, err)
		}
	}
	return s, nil
}

// Len returns the number of accounts
func (s *Accounts) Len() int {
	return len(s.items)
}

// All returns a copy of every account in insertion order
func (s *Accounts) All() []domain.Account {
	out := make([]domain.Account, len(s.items))
	copy(out, s.items)
	return out
}

// Exists reports whether an account with the label exists
func (s *Accounts) Exists(label string) bool {
	return s.index(label) >= 0
}

// Find returns the account with the label
func (s *Accounts) Find(label string) (domain.Account, bool) {
	i := s.index(label)
	if i < 0 {
		return domain.Account{}, false
	}
	return s.items[i], true
}

// Add appends an account. The collection is unchanged on error.
func (s *Accounts) Add(a domain.Account) error {
	if a.Label == "" {
		return ErrEmptyLabel
	}
	if s.Exists(a.Label) {
		return ErrDuplicateLabel
	}
	s.items = append(s.items, a)
	return nil
}

// Update replaces the account labelled oldLabel in place. Renaming onto the
// label of a different account fails with ErrDuplicateLabel.
func (s *Accounts) Update(oldLabel string, a domain.Account) error {
	i := s.index(oldLabel)
	if i < 0 {
		return ErrAccountNotFound
	}
	if a.Label == "" {
		return ErrEmptyLabel
	}
	if a.Label != oldLabel && s.Exists(a.Label) {
		return ErrDuplicateLabel
	}
	s.items[i] = a
	return nil
}

// Remove deletes the account with the label and reports whether it existed
func (s *Accounts) Remove(label string) bool {
	i := s.index(label)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Filter returns, in insertion order, the accounts whose label contains every
// character of query somewhere, in any order. An empty query matches all.
func (s *Accounts) Filter(query string) []domain.Account {
	out := make([]domain.Account, 0, len(s.items))
	for _, a := range s.items {
		if MatchesQuery(a.Label, query) {
			out = append(out, a)
		}
	}
	return out
}

// MatchesQuery is the character-membership rule used by Filter. It is
// case-sensitive; repeated query characters need only occur once.
func MatchesQuery(label, query string) bool {
	for _, r := range query {
		if !strings.ContainsRune(label, r) {
			return false
		}
	}
	return true
}

func (s *Accounts) index(label string) int {
	for i, a := range s.items {
		if a.Label == label {
			return i
		}
	}
	return -1
}
