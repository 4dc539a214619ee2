package datetime

import (
	"testing"
	"time"
)

func TestMustParseTime(t *testing.T) {
	got := MustParseTime(time.RFC3339, "2024-09-01T00:00:00Z")
	want := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MustParseTime() = %v, expected %v", got, want)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid date")
		}
	}()
	MustParseTime(time.RFC3339, "not-a-date")
}

func TestMinutesSince(t *testing.T) {
	epoch := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		now      time.Time
		expected float64
	}{
		{"Same instant", epoch, 0},
		{"One minute", epoch.Add(time.Minute), 1},
		{"Ninety seconds", epoch.Add(90 * time.Second), 1.5},
		{"One day", epoch.Add(24 * time.Hour), 1440},
		{"Before epoch", epoch.Add(-2 * time.Minute), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinutesSince(epoch, tt.now); got != tt.expected {
				t.Errorf("MinutesSince() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
