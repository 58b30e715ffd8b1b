package outcome

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TestHistory is the durable aggregate for one concept.
type TestHistory struct {
	ConceptID    string     `db:"concept_id"`
	LastTested   *time.Time `db:"last_tested"`
	CorrectCount int        `db:"correct_count"`
	TotalTests   int        `db:"total_tests"`
}

// Accuracy returns correct/total as a fraction, or 0 when never tested.
func (h TestHistory) Accuracy() float64 {
	if h.TotalTests == 0 {
		return 0
	}
	return float64(h.CorrectCount) / float64(h.TotalTests)
}

// TestAttempt is a single evaluation event.
type TestAttempt struct {
	ConceptID string
	At        time.Time
	Correct   bool
	Feedback  string
}

// historyRow is the scan target; last_tested is nullable.
type historyRow struct {
	ConceptID    string       `db:"concept_id"`
	LastTested   sql.NullTime `db:"last_tested"`
	CorrectCount int          `db:"correct_count"`
	TotalTests   int          `db:"total_tests"`
}

func (r historyRow) toHistory() TestHistory {
	h := TestHistory{
		ConceptID:    r.ConceptID,
		CorrectCount: r.CorrectCount,
		TotalTests:   r.TotalTests,
	}
	if r.LastTested.Valid {
		t := r.LastTested.Time.UTC()
		h.LastTested = &t
	}
	return h
}

// The increment happens inside the statement, not in Go, so concurrent
// writers for the same concept (even from separate processes sharing the
// database) cannot lose updates.
const upsertSQL = `INSERT INTO test_history (concept_id, last_tested, correct_count, total_tests)
VALUES (?, ?, ?, 1)
ON CONFLICT (concept_id) DO UPDATE SET
	last_tested   = excluded.last_tested,
	correct_count = test_history.correct_count + excluded.correct_count,
	total_tests   = test_history.total_tests + 1`

// RecordTest records one test attempt for conceptID. Creates the row on
// first use, increments counters atomically afterwards.
func (s *Store) RecordTest(ctx context.Context, conceptID string, correct bool) error {
	delta := 0
	if correct {
		delta = 1
	}
	q := s.db.Rebind(upsertSQL)
	if _, err := s.db.ExecContext(ctx, q, conceptID, s.now().UTC(), delta); err != nil {
		return &StorageError{Op: "record_test", Err: err}
	}
	return nil
}

// TestHistory returns the aggregate for conceptID, or (nil, nil) when the
// concept has never been tested. Absence is not an error.
func (s *Store) TestHistory(ctx context.Context, conceptID string) (*TestHistory, error) {
	var row historyRow
	q := s.db.Rebind(`SELECT concept_id, last_tested, correct_count, total_tests
FROM test_history WHERE concept_id = ?`)
	err := s.db.GetContext(ctx, &row, q, conceptID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "get_test_history", Err: err}
	}
	h := row.toHistory()
	return &h, nil
}

// ReadyForTest reports whether conceptID is due for retesting under the
// store's schedule policy. A concept with no history is always due.
func (s *Store) ReadyForTest(ctx context.Context, conceptID string) (bool, error) {
	h, err := s.TestHistory(ctx, conceptID)
	if err != nil {
		return false, err
	}
	if h == nil {
		return true, nil
	}
	return s.policy.ShouldTest(h.LastTested, s.now()), nil
}

// AllHistories returns every recorded aggregate, ordered by concept ID.
func (s *Store) AllHistories(ctx context.Context) ([]TestHistory, error) {
	var rows []historyRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT concept_id, last_tested, correct_count, total_tests
FROM test_history ORDER BY concept_id`)
	if err != nil {
		return nil, &StorageError{Op: "all_histories", Err: err}
	}
	out := make([]TestHistory, len(rows))
	for i, r := range rows {
		out[i] = r.toHistory()
	}
	return out, nil
}
