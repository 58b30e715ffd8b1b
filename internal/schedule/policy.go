// Package schedule decides when a concept is due for retesting.
package schedule

import "time"

// DefaultInterval is the minimum gap between tests of the same concept.
// A concept tested less than this long ago is not yet due again.
const DefaultInterval = 4 * time.Hour

// Policy holds the retest interval. The zero value is not usable; construct
// with NewPolicy so a non-positive interval falls back to DefaultInterval.
type Policy struct {
	Interval time.Duration
}

// NewPolicy creates a Policy with the given interval.
// Non-positive intervals fall back to DefaultInterval.
func NewPolicy(interval time.Duration) Policy {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Policy{Interval: interval}
}

// ShouldTest reports whether a concept is eligible for retesting.
// A concept never tested (nil lastTested) is always eligible. Otherwise it
// becomes eligible exactly when the interval has fully elapsed; the boundary
// instant itself counts as due.
func (p Policy) ShouldTest(lastTested *time.Time, now time.Time) bool {
	if lastTested == nil {
		return true
	}
	return !now.Before(lastTested.Add(p.Interval))
}

// NextDue returns the instant at which the concept becomes eligible.
// For a never-tested concept it returns now semantics via the zero time,
// which callers should treat as "already due".
func (p Policy) NextDue(lastTested *time.Time) time.Time {
	if lastTested == nil {
		return time.Time{}
	}
	return lastTested.Add(p.Interval)
}

// Overdue returns how far past due the concept is. Returns 0 when the
// concept is not yet due. A never-tested concept is reported as 0 overdue
// even though it is eligible.
func (p Policy) Overdue(lastTested *time.Time, now time.Time) time.Duration {
	if lastTested == nil {
		return 0
	}
	due := lastTested.Add(p.Interval)
	if now.Before(due) {
		return 0
	}
	return now.Sub(due)
}

// Status describes a concept's scheduling state for display.
type Status string

const (
	StatusNeverTested Status = "never_tested"
	StatusNotDue      Status = "not_due"
	StatusDue         Status = "due"
)

// StatusOf returns the scheduling status for display.
func (p Policy) StatusOf(lastTested *time.Time, now time.Time) Status {
	if lastTested == nil {
		return StatusNeverTested
	}
	if p.ShouldTest(lastTested, now) {
		return StatusDue
	}
	return StatusNotDue
}
