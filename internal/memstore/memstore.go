// Package memstore provides the long-term memory store for tutoring
// interactions. Records are written as a side effect of learning
// conversations and read back later to decide what to quiz the student
// on. Backends: Badger (local, the default), Redis, and a remote HTTP
// memory service.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Record is a single stored memory. Every record has an ID assigned by
// the backend; Content carries the application payload (for tutoring
// interactions, a JSON-encoded exchange snippet).
type Record struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	UserID    string            `json:"user_id"`
	AppID     string            `json:"app_id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Message is one role-tagged turn of a conversation passed to Add.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AddOptions scopes a new record to a user and application.
type AddOptions struct {
	UserID   string
	AppID    string
	Metadata map[string]string
}

// Filter narrows reads to matching records. Zero-value fields match
// everything; Metadata entries must all be present on a record for it
// to match. Limit caps Search results (0 means no cap).
type Filter struct {
	UserID   string
	AppID    string
	Metadata map[string]string
	Limit    int
}

// Store is the memory-store contract the tutor depends on. GetAll
// returns records ordered oldest first; Search returns them ordered by
// relevance to the query, most relevant first.
type Store interface {
	Add(ctx context.Context, messages []Message, opts AddOptions) (*Record, error)
	Search(ctx context.Context, query string, filter Filter) ([]Record, error)
	GetAll(ctx context.Context, filter Filter) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, id string, content string) (*Record, error)
	Close() error
}

// NotFoundError indicates that no record exists with the given ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("memory record not found: %s", e.ID)
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// UnavailableError indicates that the storage backend could not be
// reached or refused the operation.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("memory store unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// SerializationError indicates a failure encoding or decoding a record.
type SerializationError struct {
	Operation string
	Cause     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("memory record %s failed: %v", e.Operation, e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

// Config selects and configures a backend for Open.
type Config struct {
	// Backend is one of "badger", "redis", "http".
	Backend string

	// Path is the Badger database directory.
	Path string

	// RedisAddr and RedisPrefix configure the Redis backend.
	RedisAddr   string
	RedisPrefix string

	// BaseURL and APIKey configure the HTTP backend.
	BaseURL string
	APIKey  string

	// Timeout bounds a single HTTP backend request. Zero keeps the
	// client default; the local backends ignore it.
	Timeout time.Duration
}

// Open constructs the configured backend.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "badger", "":
		return OpenBadger(cfg.Path)
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPrefix), nil
	case "http":
		s := NewHTTPStore(cfg.BaseURL, cfg.APIKey)
		if cfg.Timeout > 0 {
			s.httpClient.Timeout = cfg.Timeout
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported memory backend: %s", cfg.Backend)
	}
}

// contentFromMessages derives the stored content for a new record. A
// single message is stored verbatim; longer conversations are stored as
// a JSON array of turns.
func contentFromMessages(messages []Message) (string, error) {
	switch len(messages) {
	case 0:
		return "", fmt.Errorf("add requires at least one message")
	case 1:
		return messages[0].Content, nil
	default:
		data, err := json.Marshal(messages)
		if err != nil {
			return "", &SerializationError{Operation: "encode", Cause: err}
		}
		return string(data), nil
	}
}

// matchesFilter reports whether a record satisfies every constraint in
// the filter.
func matchesFilter(r *Record, f Filter) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.AppID != "" && r.AppID != f.AppID {
		return false
	}
	for k, v := range f.Metadata {
		if r.Metadata[k] != v {
			return false
		}
	}
	return true
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRecord(r *Record) *Record {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Metadata = cloneMetadata(r.Metadata)
	return &cp
}
