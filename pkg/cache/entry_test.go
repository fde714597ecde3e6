package cache

import (
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	now := time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		written time.Time
		want    bool
	}{
		{"just written", now, false},
		{"half the window", now.Add(-30 * time.Minute), false},
		{"just under the window", now.Add(-59 * time.Minute), false},
		{"past the window", now.Add(-61 * time.Minute), true},
		{"a day old", now.Add(-24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := newEntry([]byte(`{}`), tt.written)
			if got := entry.IsExpired(now, time.Hour); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_Timestamp(t *testing.T) {
	at := time.Date(2023, 9, 7, 20, 20, 0, 500_000_000, time.UTC)
	entry := newEntry([]byte(`{}`), at)

	if entry.Timestamp != 1694118000.5 {
		t.Errorf("Timestamp = %v, want 1694118000.5", entry.Timestamp)
	}

	diff := entry.WrittenAt().Sub(at)
	if diff < -time.Microsecond || diff > time.Microsecond {
		t.Errorf("WrittenAt() = %v, want %v", entry.WrittenAt(), at)
	}
}

func TestNewStats(t *testing.T) {
	tests := []struct {
		name         string
		total, fresh int
		want         Stats
	}{
		{"empty table", 0, 0, Stats{}},
		{"all fresh", 4, 4, Stats{Total: 4, Fresh: 4, FreshRatio: 1}},
		{"mixed", 4, 1, Stats{Total: 4, Fresh: 1, Stale: 3, FreshRatio: 0.25}},
		{"all stale", 2, 0, Stats{Total: 2, Stale: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newStats(tt.total, tt.fresh); got != tt.want {
				t.Errorf("newStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
