// Package audit keeps a local trail of vault sessions in a bbolt database.
// Events record what happened and how many accounts were involved, never
// labels or secrets.
package audit

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/passman-cli/passman/internal/domain"
)

var eventsBucket = []byte("events")

// ErrCorrupted is returned when a stored event cannot be decoded
var ErrCorrupted = errors.New("audit log is corrupted")

// Log is an append-only event log. A nil *Log discards every event.
type Log struct {
	db      *bbolt.DB
	session string
	log     *zap.Logger
	now     func() time.Time
}

// Open opens or creates the audit database at path. Every event recorded
// through the returned Log carries a fresh session ID.
func Open(path string, timeout time.Duration, log *zap.Logger) (*Log, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(eventsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create audit bucket: %w", err)
	}

	return &Log{
		db:      db,
		session: uuid.NewString(),
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Session returns the ID shared by events recorded through this Log
func (l *Log) Session() string {
	if l == nil {
		return ""
	}
	return l.session
}

// Record appends an event
func (l *Log) Record(t domain.EventType, accounts int) error {
	if l == nil {
		return nil
	}

	ev := domain.Event{
		ID:       uuid.NewString(),
		Session:  l.session,
		Type:     t,
		Time:     l.now(),
		Accounts: accounts,
	}

	err := l.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(eventsBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate audit sequence: %w", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode audit entry: %w", err)
		}
		return bucket.Put(key, payload)
	})
	if err != nil {
		return err
	}

	l.log.Debug("audit event recorded", zap.String("type", string(t)), zap.Int("accounts", accounts))
	return nil
}

// List returns up to limit of the most recent events in chronological order.
// A limit of zero or less returns every event.
func (l *Log) List(limit int) ([]domain.Event, error) {
	if l == nil {
		return nil, nil
	}

	var events []domain.Event
	err := l.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(events) == limit {
				break
			}
			var ev domain.Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("%w: %w", ErrCorrupted, err)
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// Close closes the database
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}
