package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists records in Redis, for setups where several tutor
// processes share one memory. Each record is a JSON value under
// {prefix}:rec:{id}; set-based indexes track membership per scope.
type RedisStore struct {
	client redis.Cmdable
	closer io.Closer
	prefix string
	now    func() time.Time
}

// NewRedisStore connects to the Redis instance at addr. The store owns
// the connection and releases it on Close.
func NewRedisStore(addr, prefix string) *RedisStore {
	client := redis.NewClient(&redis.Options{Addr: addr})
	s := NewRedisStoreWithClient(client, prefix)
	s.closer = client
	return s
}

// NewRedisStoreWithClient wraps an existing client. The caller keeps
// ownership of the client's lifecycle.
func NewRedisStoreWithClient(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "studyloop"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) recKey(id string) string {
	return fmt.Sprintf("%s:rec:%s", s.prefix, id)
}

func (s *RedisStore) scopeKey(appID, userID string) string {
	return fmt.Sprintf("%s:idx:%s:%s", s.prefix, appID, userID)
}

func (s *RedisStore) allKey() string {
	return s.prefix + ":all"
}

// Add stores a new record and registers it in the scope indexes.
func (s *RedisStore) Add(ctx context.Context, messages []Message, opts AddOptions) (*Record, error) {
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

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, &SerializationError{Operation: "encode", Cause: err}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recKey(rec.ID), data, 0)
	pipe.SAdd(ctx, s.scopeKey(rec.AppID, rec.UserID), rec.ID)
	pipe.SAdd(ctx, s.allKey(), rec.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	return rec, nil
}

// Get retrieves a record by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, s.recKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &SerializationError{Operation: "decode", Cause: err}
	}
	return &rec, nil
}

// GetAll returns every record matching the filter, oldest first.
func (s *RedisStore) GetAll(ctx context.Context, filter Filter) ([]Record, error) {
	indexKey := s.allKey()
	if filter.AppID != "" && filter.UserID != "" {
		indexKey = s.scopeKey(filter.AppID, filter.UserID)
	}

	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a value; the record was removed.
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, &SerializationError{Operation: "decode", Cause: err}
		}
		if matchesFilter(&rec, filter) {
			records = append(records, rec)
		}
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
func (s *RedisStore) Search(ctx context.Context, query string, filter Filter) ([]Record, error) {
	records, err := s.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return rankRecords(records, query, filter.Limit), nil
}

// Update replaces a record's content and bumps its update timestamp.
func (s *RedisStore) Update(ctx context.Context, id string, content string) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Content = content
	rec.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, &SerializationError{Operation: "encode", Cause: err}
	}
	if err := s.client.Set(ctx, s.recKey(id), data, 0).Err(); err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	return rec, nil
}

// Close releases the connection when the store owns it.
func (s *RedisStore) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
