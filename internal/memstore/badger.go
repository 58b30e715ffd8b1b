package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// BadgerStore persists records in a local Badger database. This is the
// default backend: no external service required.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadger opens (or creates) a Badger database at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	// Badger's default logger writes to stderr and interleaves with
	// interactive prompts.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	return &BadgerStore{db: db, now: time.Now}, nil
}

// Key layout: rec:{appID}:{userID}:{recordID}. App and user IDs must
// not contain colons; record IDs are UUIDs.
func recordKey(appID, userID, id string) []byte {
	return []byte(fmt.Sprintf("rec:%s:%s:%s", appID, userID, id))
}

func scopePrefix(appID, userID string) []byte {
	return []byte(fmt.Sprintf("rec:%s:%s:", appID, userID))
}

var allPrefix = []byte("rec:")

func serialize(r *Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, &SerializationError{Operation: "encode", Cause: err}
	}
	return data, nil
}

func deserialize(data []byte, r *Record) error {
	if err := json.Unmarshal(data, r); err != nil {
		return &SerializationError{Operation: "decode", Cause: err}
	}
	return nil
}

// Add stores a new record and returns it with its assigned ID.
func (s *BadgerStore) Add(ctx context.Context, messages []Message, opts AddOptions) (*Record, error) {
	content, err := contentFromMessages(messages)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &Record{
		ID:        uuid.NewString(),
		Content:   content,
		UserID:    opts.UserID,
		AppID:     opts.AppID,
		Metadata:  cloneMetadata(opts.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := serialize(rec)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.AppID, rec.UserID, rec.ID), data)
	})
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	return rec, nil
}

// Get retrieves a record by ID. The scan covers all scopes since the
// caller only holds the record ID.
func (s *BadgerStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = allPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			parts := strings.SplitN(string(item.Key()), ":", 4)
			if len(parts) == 4 && parts[3] == id {
				return item.Value(func(val []byte) error {
					return deserialize(val, &rec)
				})
			}
		}
		return &NotFoundError{ID: id}
	})
	if err != nil {
		return nil, badgerErr(err)
	}
	return &rec, nil
}

// GetAll returns every record matching the filter, oldest first.
func (s *BadgerStore) GetAll(ctx context.Context, filter Filter) ([]Record, error) {
	prefix := allPrefix
	if filter.AppID != "" && filter.UserID != "" {
		prefix = scopePrefix(filter.AppID, filter.UserID)
	}

	var records []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return deserialize(val, &rec)
			}); err != nil {
				return err
			}
			if matchesFilter(&rec, filter) {
				records = append(records, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, badgerErr(err)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// Search ranks matching records by relevance to the query.
func (s *BadgerStore) Search(ctx context.Context, query string, filter Filter) ([]Record, error) {
	records, err := s.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return rankRecords(records, query, filter.Limit), nil
}

// Update replaces a record's content and bumps its update timestamp.
func (s *BadgerStore) Update(ctx context.Context, id string, content string) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Content = content
	rec.UpdatedAt = s.now().UTC()

	data, err := serialize(rec)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.AppID, rec.UserID, rec.ID), data)
	})
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	return rec, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerErr maps backend failures onto the package error types,
// passing already-typed errors through untouched.
func badgerErr(err error) error {
	var nf *NotFoundError
	var se *SerializationError
	if errors.As(err, &nf) || errors.As(err, &se) {
		return err
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return &NotFoundError{ID: ""}
	}
	return &UnavailableError{Cause: err}
}
