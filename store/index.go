// Package store provides a derived, disposable index over a sealed
// journal: event identity to journal position. The journal format itself
// stays index-free — this index can be deleted and rebuilt from the
// journal at any time, and disagreements always resolve in the journal's
// favor.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/Northroot-Labs/northroot/journal"
	"github.com/Northroot-Labs/northroot/types"
)

var (
	// ErrNotFound is returned when an event id is not in the index.
	ErrNotFound = errors.New("event id not found")

	// ErrIndexClosed is returned when an index is used after Close.
	ErrIndexClosed = errors.New("index is closed")

	// ErrDBNil is returned when the backing database is nil.
	ErrDBNil = errors.New("database cannot be nil")
)

// entryKeyPrefix namespaces index entries in the backing store.
const entryKeyPrefix = "event/"

// Entry is one indexed event.
type Entry struct {
	// Offset is the byte offset of the event's frame in the journal.
	Offset int64 `json:"offset"`

	// EventType is the event's declared type, empty if it has none.
	EventType string `json:"event_type,omitempty"`
}

// EventIndex maps event identities to journal positions in a cosmos-db
// backing store. Thread-safe.
type EventIndex struct {
	mu     sync.RWMutex
	db     dbm.DB
	logger log.Logger
	closed bool
}

// NewEventIndex wraps a backing database. A nil logger is replaced with a
// no-op logger.
func NewEventIndex(db dbm.DB, logger log.Logger) (*EventIndex, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &EventIndex{db: db, logger: logger}, nil
}

// Build scans the journal at path and indexes every event that carries a
// well-formed event_id. Events without one are skipped — the index only
// answers identity lookups, it does not judge events. Returns the number
// of events indexed.
//
// Identities are not re-verified here; run the verifier first if the
// journal is untrusted.
func (ix *EventIndex) Build(path string, mode journal.Mode) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return 0, ErrIndexClosed
	}

	r, err := journal.OpenReader(path, mode)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	indexed := 0
	skipped := 0
	for {
		v, err := r.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return indexed, err
		}

		digest, ok := eventDigest(v)
		if !ok {
			skipped++
			continue
		}

		key := entryKey(digest.B64)
		exists, err := ix.db.Has(key)
		if err != nil {
			return indexed, fmt.Errorf("index lookup: %w", err)
		}
		if exists {
			// Identical content appended twice: the first position wins.
			continue
		}

		entry := Entry{Offset: r.LastFrameOffset(), EventType: eventType(v)}
		data, err := json.Marshal(entry)
		if err != nil {
			return indexed, fmt.Errorf("encode index entry: %w", err)
		}
		if err := ix.db.Set(key, data); err != nil {
			return indexed, fmt.Errorf("index write: %w", err)
		}
		indexed++
	}

	ix.logger.Info("journal indexed", "path", path, "indexed", indexed, "skipped", skipped)
	return indexed, nil
}

// Get returns the entry for an event id.
func (ix *EventIndex) Get(eventID string) (Entry, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return Entry{}, ErrIndexClosed
	}

	data, err := ix.db.Get(entryKey(eventID))
	if err != nil {
		return Entry{}, fmt.Errorf("index read: %w", err)
	}
	if data == nil {
		return Entry{}, ErrNotFound
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("decode index entry: %w", err)
	}
	return entry, nil
}

// Has reports whether an event id is indexed.
func (ix *EventIndex) Has(eventID string) (bool, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return false, ErrIndexClosed
	}
	ok, err := ix.db.Has(entryKey(eventID))
	if err != nil {
		return false, fmt.Errorf("index lookup: %w", err)
	}
	return ok, nil
}

// Close releases the backing database.
func (ix *EventIndex) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return ErrIndexClosed
	}
	ix.closed = true
	return ix.db.Close()
}

func entryKey(eventID string) []byte {
	return []byte(entryKeyPrefix + eventID)
}

// eventDigest extracts a well-formed event_id digest from an event value.
func eventDigest(v *types.Value) (types.Digest, bool) {
	if !v.IsObject() {
		return types.Digest{}, false
	}
	carried, ok := v.Lookup("event_id")
	if !ok {
		return types.Digest{}, false
	}
	d, err := types.DigestFromValue(carried)
	if err != nil {
		return types.Digest{}, false
	}
	return d, true
}

func eventType(v *types.Value) string {
	t, ok := v.Lookup("event_type")
	if !ok || t.Kind != types.KindString {
		return ""
	}
	return t.Str
}
