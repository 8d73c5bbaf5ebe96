// Package domain defines the core data structures of the password manager.
// It contains the account record, its ordered fields, and audit events.
package domain

import (
	"fmt"
	"time"
)

// Field identifies one of the four attributes of an Account
type Field int

const (
	FieldLabel Field = iota
	FieldUsername
	FieldEmail
	FieldPassword
)

// Fields is the canonical field order, used for display, navigation and the
// on-disk record layout.
var Fields = []Field{FieldLabel, FieldUsername, FieldEmail, FieldPassword}

// String returns the display name of the field
func (f Field) String() string {
	switch f {
	case FieldLabel:
		return "Label"
	case FieldUsername:
		return "Username"
	case FieldEmail:
		return "Email"
	case FieldPassword:
		return "Password"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Optional reports whether the field may be absent
func (f Field) Optional() bool {
	return f == FieldUsername || f == FieldEmail
}

// Account represents a set of credentials stored in the vault.
// An empty Username or Email means the field is absent.
type Account struct {
	Label    string
	Username string
	Email    string
	Password string
}

// NewAccount creates an account with only a label set
func NewAccount(label string) Account {
	return Account{Label: label}
}

// HasUsername reports whether the username is present
func (a Account) HasUsername() bool { return a.Username != "" }

// HasEmail reports whether the email is present
func (a Account) HasEmail() bool { return a.Email != "" }

// Has reports whether the given field is present. Label and password always are.
func (a Account) Has(f Field) bool {
	switch f {
	case FieldUsername:
		return a.HasUsername()
	case FieldEmail:
		return a.HasEmail()
	default:
		return true
	}
}

// Get returns the plaintext value of the field
func (a Account) Get(f Field) string {
	switch f {
	case FieldLabel:
		return a.Label
	case FieldUsername:
		return a.Username
	case FieldEmail:
		return a.Email
	case FieldPassword:
		return a.Password
	default:
		return ""
	}
}

// Set returns a copy of the account with the field replaced.
// Setting an optional field to the empty string makes it absent.
func (a Account) Set(f Field, value string) Account {
	switch f {
	case FieldLabel:
		a.Label = value
	case FieldUsername:
		a.Username = value
	case FieldEmail:
		a.Email = value
	case FieldPassword:
		a.Password = value
	}
	return a
}

// PresentFields returns the fields of the account in canonical order,
// skipping absent optional fields.
func (a Account) PresentFields() []Field {
	fields := make([]Field, 0, len(Fields))
	for _, f := range Fields {
		if a.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// EventType classifies an audit event
type EventType string

const (
	EventVaultCreated      EventType = "vault_created"
	EventUnlock            EventType = "unlock"
	EventUnlockFailed      EventType = "unlock_failed"
	EventSaved             EventType = "saved"
	EventPassphraseChanged EventType = "passphrase_changed"
	EventSessionAborted    EventType = "session_aborted"
)

// Event represents an audit log record. It never carries labels or secrets.
type Event struct {
	ID       string    `json:"id"`
	Session  string    `json:"session"`
	Type     EventType `json:"type"`
	Time     time.Time `json:"time"`
	Accounts int       `json:"accounts,omitempty"`
}
