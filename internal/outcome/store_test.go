package outcome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/studyloop/studyloop/internal/schedule"
)

// openTestStore opens a store on a uniquely named shared in-memory SQLite
// database so every pool connection sees the same data.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	s, err := Open("sqlite", dsn, schedule.NewPolicy(schedule.DefaultInterval))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn", schedule.NewPolicy(0))
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %T", err)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is only meaningful with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := s.db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTable(t *testing.T) {
	s := openTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='test_history'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if name != "test_history" {
		t.Errorf("table name = %q, want 'test_history'", name)
	}
}

func TestHistoryAbsentForUntouchedKey(t *testing.T) {
	s := openTestStore(t)

	h, err := s.TestHistory(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != nil {
		t.Fatalf("expected nil history for untouched key, got %+v", h)
	}
}

func TestRecordTestCreatesThenAccumulates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results := []bool{true, false, true, true, false}
	for _, correct := range results {
		if err := s.RecordTest(ctx, "c1", correct); err != nil {
			t.Fatalf("record test: %v", err)
		}
	}

	h, err := s.TestHistory(ctx, "c1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if h == nil {
		t.Fatal("expected history after recording")
	}
	if h.TotalTests != 5 {
		t.Errorf("total_tests = %d, want 5", h.TotalTests)
	}
	if h.CorrectCount != 3 {
		t.Errorf("correct_count = %d, want 3", h.CorrectCount)
	}
	if h.LastTested == nil {
		t.Error("expected last_tested to be set")
	}
	if h.CorrectCount < 0 || h.CorrectCount > h.TotalTests {
		t.Errorf("invariant violated: correct=%d total=%d", h.CorrectCount, h.TotalTests)
	}
}

func TestRecordTestUpdatesLastTested(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	second := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return first }
	if err := s.RecordTest(ctx, "c1", true); err != nil {
		t.Fatalf("record first: %v", err)
	}

	s.now = func() time.Time { return second }
	if err := s.RecordTest(ctx, "c1", false); err != nil {
		t.Fatalf("record second: %v", err)
	}

	h, err := s.TestHistory(ctx, "c1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if h.LastTested == nil || !h.LastTested.Equal(second) {
		t.Errorf("last_tested = %v, want %v", h.LastTested, second)
	}
}

func TestReadyForTestLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	// Never tested: always ready.
	ready, err := s.ReadyForTest(ctx, "c1")
	if err != nil {
		t.Fatalf("ready (untested): %v", err)
	}
	if !ready {
		t.Error("expected untested concept to be ready")
	}

	if err := s.RecordTest(ctx, "c1", true); err != nil {
		t.Fatalf("record: %v", err)
	}

	// Immediately after: not ready.
	ready, err = s.ReadyForTest(ctx, "c1")
	if err != nil {
		t.Fatalf("ready (just tested): %v", err)
	}
	if ready {
		t.Error("expected freshly tested concept to not be ready")
	}

	// After the interval has elapsed: ready again.
	s.now = func() time.Time { return base.Add(4*time.Hour + time.Minute) }
	ready, err = s.ReadyForTest(ctx, "c1")
	if err != nil {
		t.Fatalf("ready (4h later): %v", err)
	}
	if !ready {
		t.Error("expected concept to be ready after the interval")
	}
}

func TestRecordTestSurvivesReopen(t *testing.T) {
	dsn := "file:reopen_test?mode=memory&cache=shared"
	pol := schedule.NewPolicy(schedule.DefaultInterval)

	s1, err := Open("sqlite", dsn, pol)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	if err := s1.RecordTest(context.Background(), "c1", true); err != nil {
		t.Fatalf("record: %v", err)
	}

	// A second handle on the same database sees the same row. The first
	// handle stays open so the shared in-memory database survives.
	s2, err := Open("sqlite", dsn, pol)
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	defer s2.Close()
	defer s1.Close()

	h, err := s2.TestHistory(context.Background(), "c1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if h == nil || h.TotalTests != 1 {
		t.Fatalf("expected 1 recorded test across handles, got %+v", h)
	}
}

func TestAllHistoriesOrdered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"m2", "m1", "m3"} {
		if err := s.RecordTest(ctx, id, true); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	all, err := s.AllHistories(ctx)
	if err != nil {
		t.Fatalf("all histories: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
	want := []string{"m1", "m2", "m3"}
	for i, h := range all {
		if h.ConceptID != want[i] {
			t.Errorf("row %d = %q, want %q", i, h.ConceptID, want[i])
		}
	}
}

func TestStorageErrorsPropagate(t *testing.T) {
	s := openTestStore(t)
	s.Close()

	err := s.RecordTest(context.Background(), "c1", true)
	if err == nil {
		t.Fatal("expected error on closed store")
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %T (%v)", err, err)
	}

	_, err = s.TestHistory(context.Background(), "c1")
	if err == nil {
		t.Fatal("expected read error on closed store, not absent-row nil")
	}
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %T (%v)", err, err)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{0, 0, 0},
		{1, 1, 1},
		{1, 2, 0.5},
		{3, 4, 0.75},
	}
	for _, tt := range tests {
		h := TestHistory{CorrectCount: tt.correct, TotalTests: tt.total}
		if got := h.Accuracy(); got != tt.want {
			t.Errorf("Accuracy(%d/%d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}
