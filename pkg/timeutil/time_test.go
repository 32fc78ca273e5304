package timeutil

import (
	"testing"
	"time"
)

func TestNow_AlwaysUTC(t *testing.T) {
	now := Now()

	if now.Location() != time.UTC {
		t.Errorf("Now() returned non-UTC timezone: %v", now.Location())
	}
}

func TestSystemClock_UTC(t *testing.T) {
	var clock SystemClock
	if clock.Now().Location() != time.UTC {
		t.Errorf("SystemClock returned non-UTC timezone")
	}
}

func TestFixedClock(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	start := time.Date(2026, 5, 1, 10, 0, 0, 0, sydney)
	clock := NewFixedClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("expected %v, got %v", start, clock.Now())
	}
	if clock.Now().Location() != time.UTC {
		t.Errorf("FixedClock returned non-UTC timezone: %v", clock.Now().Location())
	}

	later := start.Add(time.Hour)
	clock.Set(later)
	if !clock.Now().Equal(later) {
		t.Errorf("expected %v after Set, got %v", later, clock.Now())
	}
}

func TestStartOfMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "first of month",
			input:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			expected: "2026-05-01 00:00:00 +0000 UTC",
		},
		{
			name:     "mid month",
			input:    time.Date(2026, 5, 17, 13, 45, 0, 0, time.UTC),
			expected: "2026-05-01 00:00:00 +0000 UTC",
		},
		{
			name:     "non-UTC input",
			input:    time.Date(2026, 6, 1, 5, 0, 0, 0, time.FixedZone("AEST", 10*60*60)),
			expected: "2026-05-01 00:00:00 +0000 UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StartOfMonth(tt.input)
			if result.String() != tt.expected {
				t.Errorf("StartOfMonth() = %v, want %v", result, tt.expected)
			}
		})
	}
}
