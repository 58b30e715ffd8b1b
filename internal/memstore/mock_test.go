package memstore

import (
	"context"
	"errors"
	"testing"
)

func TestMockStoreAddAndGetAll(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	first, err := m.Add(ctx, []Message{{Role: "user", Content: "one"}}, AddOptions{UserID: "u", AppID: "a"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := m.Add(ctx, []Message{{Role: "user", Content: "two"}}, AddOptions{UserID: "u", AppID: "a"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	records, err := m.GetAll(ctx, Filter{UserID: "u", AppID: "a"})
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != first.ID || records[1].ID != second.ID {
		t.Errorf("records out of insertion order")
	}
	if len(m.AddCalls) != 2 {
		t.Errorf("expected 2 recorded add calls, got %d", len(m.AddCalls))
	}
}

func TestMockStoreSeed(t *testing.T) {
	m := NewMockStore()

	id := m.Seed(Record{Content: "seeded", UserID: "u", AppID: "a"})
	if id == "" {
		t.Fatal("expected generated ID for seeded record")
	}

	rec, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Content != "seeded" {
		t.Errorf("content = %q", rec.Content)
	}
}

func TestMockStoreFailWith(t *testing.T) {
	m := NewMockStore()
	m.Seed(Record{ID: "m1", Content: "x"})
	injected := &UnavailableError{Cause: errors.New("down")}
	m.FailWith = injected

	ctx := context.Background()
	if _, err := m.Add(ctx, []Message{{Content: "y"}}, AddOptions{}); !errors.Is(err, injected) {
		t.Errorf("Add error = %v, want injected", err)
	}
	if _, err := m.GetAll(ctx, Filter{}); !errors.Is(err, injected) {
		t.Errorf("GetAll error = %v, want injected", err)
	}
	if _, err := m.Get(ctx, "m1"); !errors.Is(err, injected) {
		t.Errorf("Get error = %v, want injected", err)
	}
	if _, err := m.Update(ctx, "m1", "z"); !errors.Is(err, injected) {
		t.Errorf("Update error = %v, want injected", err)
	}
}

func TestMockStoreUpdate(t *testing.T) {
	m := NewMockStore()
	id := m.Seed(Record{Content: "before"})

	if _, err := m.Update(context.Background(), id, "after"); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Content != "after" {
		t.Errorf("content = %q, want 'after'", rec.Content)
	}
	if len(m.UpdateCalls) != 1 || m.UpdateCalls[0] != id {
		t.Errorf("update calls = %v", m.UpdateCalls)
	}
}

func TestMockStoreUpdateMissing(t *testing.T) {
	m := NewMockStore()

	_, err := m.Update(context.Background(), "nope", "x")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %T (%v)", err, err)
	}
}

func TestMockStoreIsolatesReturnedRecords(t *testing.T) {
	m := NewMockStore()
	id := m.Seed(Record{Content: "original", Metadata: map[string]string{"k": "v"}})

	rec, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	rec.Content = "mutated"
	rec.Metadata["k"] = "changed"

	again, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Content != "original" || again.Metadata["k"] != "v" {
		t.Errorf("stored record was mutated through a returned copy: %+v", again)
	}
}
