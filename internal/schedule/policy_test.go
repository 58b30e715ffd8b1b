package schedule

import (
	"testing"
	"time"
)

func TestShouldTest_NeverTested(t *testing.T) {
	p := NewPolicy(DefaultInterval)

	nows := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC),
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, now := range nows {
		if !p.ShouldTest(nil, now) {
			t.Errorf("ShouldTest(nil, %v) = false, want true", now)
		}
	}
}

func TestShouldTest_Boundary(t *testing.T) {
	p := NewPolicy(4 * time.Hour)
	tested := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"immediately after", tested.Add(time.Second), false},
		{"one second below boundary", tested.Add(3*time.Hour + 59*time.Minute + 59*time.Second), false},
		{"exactly at boundary", tested.Add(4 * time.Hour), true},
		{"above boundary", tested.Add(4*time.Hour + time.Second), true},
		{"long after", tested.Add(72 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ShouldTest(&tested, tt.now); got != tt.want {
				t.Errorf("ShouldTest(%v, %v) = %v, want %v", tested, tt.now, got, tt.want)
			}
		})
	}
}

func TestNewPolicy_NonPositiveFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
	}{
		{"zero", 0},
		{"negative", -time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolicy(tt.interval)
			if p.Interval != DefaultInterval {
				t.Errorf("Interval = %v, want %v", p.Interval, DefaultInterval)
			}
		})
	}
}

func TestNewPolicy_CustomInterval(t *testing.T) {
	p := NewPolicy(30 * time.Minute)
	tested := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	if p.ShouldTest(&tested, tested.Add(29*time.Minute)) {
		t.Error("expected not due at 29m with a 30m interval")
	}
	if !p.ShouldTest(&tested, tested.Add(30*time.Minute)) {
		t.Error("expected due at 30m with a 30m interval")
	}
}

func TestNextDue(t *testing.T) {
	p := NewPolicy(4 * time.Hour)

	if !p.NextDue(nil).IsZero() {
		t.Error("NextDue(nil) should be the zero time")
	}

	tested := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	want := time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)
	if got := p.NextDue(&tested); !got.Equal(want) {
		t.Errorf("NextDue = %v, want %v", got, want)
	}
}

func TestOverdue(t *testing.T) {
	p := NewPolicy(4 * time.Hour)
	tested := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	if got := p.Overdue(&tested, tested.Add(2*time.Hour)); got != 0 {
		t.Errorf("Overdue before due = %v, want 0", got)
	}
	if got := p.Overdue(&tested, tested.Add(4*time.Hour)); got != 0 {
		t.Errorf("Overdue exactly at due = %v, want 0", got)
	}
	if got := p.Overdue(&tested, tested.Add(5*time.Hour)); got != time.Hour {
		t.Errorf("Overdue = %v, want 1h", got)
	}
	if got := p.Overdue(nil, tested); got != 0 {
		t.Errorf("Overdue(nil) = %v, want 0", got)
	}
}

func TestStatusOf(t *testing.T) {
	p := NewPolicy(4 * time.Hour)
	tested := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	if got := p.StatusOf(nil, tested); got != StatusNeverTested {
		t.Errorf("StatusOf(nil) = %q, want %q", got, StatusNeverTested)
	}
	if got := p.StatusOf(&tested, tested.Add(time.Hour)); got != StatusNotDue {
		t.Errorf("StatusOf(+1h) = %q, want %q", got, StatusNotDue)
	}
	if got := p.StatusOf(&tested, tested.Add(4*time.Hour)); got != StatusDue {
		t.Errorf("StatusOf(+4h) = %q, want %q", got, StatusDue)
	}
}
