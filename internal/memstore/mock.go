package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockStore is a deterministic in-memory Store for testing. It keeps
// records in insertion order, records all writes, and can be forced to
// fail every operation.
type MockStore struct {
	mu      sync.Mutex
	records map[string]*Record
	order   []string
	nextID  int

	// Now supplies record timestamps; defaults to time.Now.
	Now func() time.Time

	// FailWith, when set, is returned by every operation.
	FailWith error

	// AddCalls and UpdateCalls record the writes made through the store.
	AddCalls    []AddOptions
	UpdateCalls []string
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[string]*Record),
		Now:     time.Now,
	}
}

// Seed inserts a record directly, bypassing Add bookkeeping. Records
// seeded without an ID get a generated one; the ID is returned.
func (m *MockStore) Seed(rec Record) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		m.nextID++
		rec.ID = fmt.Sprintf("mem-%d", m.nextID)
	}
	m.records[rec.ID] = cloneRecord(&rec)
	m.order = append(m.order, rec.ID)
	return rec.ID
}

// Add stores a new record.
func (m *MockStore) Add(ctx context.Context, messages []Message, opts AddOptions) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AddCalls = append(m.AddCalls, opts)
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	content, err := contentFromMessages(messages)
	if err != nil {
		return nil, err
	}

	m.nextID++
	now := m.Now().UTC()
	rec := &Record{
		ID:        fmt.Sprintf("mem-%d", m.nextID),
		Content:   content,
		UserID:    opts.UserID,
		AppID:     opts.AppID,
		Metadata:  cloneMetadata(opts.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return cloneRecord(rec), nil
}

// Search ranks matching records by relevance to the query.
func (m *MockStore) Search(ctx context.Context, query string, filter Filter) ([]Record, error) {
	records, err := m.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return rankRecords(records, query, filter.Limit), nil
}

// GetAll returns matching records in insertion order.
func (m *MockStore) GetAll(ctx context.Context, filter Filter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	var out []Record
	for _, id := range m.order {
		rec := m.records[id]
		if matchesFilter(rec, filter) {
			out = append(out, *cloneRecord(rec))
		}
	}
	return out, nil
}

// Get retrieves a record by ID.
func (m *MockStore) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return cloneRecord(rec), nil
}

// Update replaces a record's content.
func (m *MockStore) Update(ctx context.Context, id string, content string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, id)
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	rec.Content = content
	rec.UpdatedAt = m.Now().UTC()
	return cloneRecord(rec), nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// Len returns the number of stored records.
func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
