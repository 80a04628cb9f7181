package tick

import (
	"testing"
	"time"
)

func mustMillis(t *testing.T, hour, min int) int64 {
	t.Helper()
	return time.Date(2024, 5, 15, hour, min, 0, 0, time.UTC).UnixMilli()
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "plain", input: "08:30", expected: 8*60 + 30},
		{name: "midnight", input: "00:00", expected: 0},
		{name: "end of day", input: "23:59", expected: 23*60 + 59},
		{name: "empty", input: "", expected: 0},
		{name: "whitespace", input: "  ", expected: 0},
		{name: "missing colon", input: "0830", expected: 0},
		{name: "hour clamped", input: "25:10", expected: 23*60 + 10},
		{name: "minute clamped", input: "10:75", expected: 10*60 + 59},
		{name: "negative clamped", input: "-1:-5", expected: 0},
		{name: "garbage parts", input: "ab:cd", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHHMM(tt.input)
			if got != tt.expected {
				t.Errorf("ParseHHMM(%q): got %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNextWindowPolicy(t *testing.T) {
	interval := 60 // seconds

	tests := []struct {
		name     string
		now      int64
		start    string
		end      string
		anchor   int64
		expected int64
	}{
		{
			name:     "before window fires at window open",
			now:      mustMillis(t, 6, 0),
			start:    "08:00",
			end:      "20:00",
			anchor:   mustMillis(t, 6, 0),
			expected: mustMillis(t, 8, 0),
		},
		{
			name:     "at window close rolls to tomorrow open",
			now:      mustMillis(t, 20, 0),
			start:    "08:00",
			end:      "20:00",
			anchor:   mustMillis(t, 8, 0),
			expected: mustMillis(t, 8, 0) + DayMillis,
		},
		{
			name:     "past window close rolls to tomorrow open",
			now:      mustMillis(t, 22, 30),
			start:    "08:00",
			end:      "20:00",
			anchor:   mustMillis(t, 8, 0),
			expected: mustMillis(t, 8, 0) + DayMillis,
		},
		{
			name:     "inside window next anchored tick",
			now:      mustMillis(t, 10, 0) + 100,
			start:    "08:00",
			end:      "20:00",
			anchor:   mustMillis(t, 10, 0),
			expected: mustMillis(t, 10, 1),
		},
		{
			name:     "tick landing on close is excluded",
			now:      mustMillis(t, 19, 59) + 100,
			start:    "08:00",
			end:      "20:00",
			anchor:   mustMillis(t, 19, 59),
			expected: mustMillis(t, 8, 0) + DayMillis,
		},
		{
			name:     "equal bounds span a full day",
			now:      mustMillis(t, 3, 0) + 100,
			start:    "08:00",
			end:      "08:00",
			anchor:   mustMillis(t, 3, 0),
			expected: mustMillis(t, 3, 1),
		},
		{
			name:     "window crossing midnight",
			now:      mustMillis(t, 23, 30) + 100,
			start:    "22:00",
			end:      "06:00",
			anchor:   mustMillis(t, 23, 30),
			expected: mustMillis(t, 23, 31),
		},
		{
			name:     "empty bounds behave as full day",
			now:      mustMillis(t, 12, 0) + 100,
			start:    "",
			end:      "",
			anchor:   mustMillis(t, 12, 0),
			expected: mustMillis(t, 12, 1),
		},
		{
			name:     "anchor ahead of now still lands on the grid",
			now:      mustMillis(t, 10, 0),
			start:    "08:00",
			end:      "20:00",
			anchor:   mustMillis(t, 10, 5),
			expected: mustMillis(t, 10, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.now, tt.start, tt.end, interval, tt.anchor, time.UTC)
			if got != tt.expected {
				t.Errorf("Next: got %d (%s), want %d (%s)",
					got, time.UnixMilli(got).UTC(),
					tt.expected, time.UnixMilli(tt.expected).UTC())
			}
		})
	}
}

func TestNextInvalidInterval(t *testing.T) {
	now := mustMillis(t, 10, 0)
	for _, interval := range []int{0, -1, -3600} {
		if got := Next(now, "08:00", "20:00", interval, now, time.UTC); got != 0 {
			t.Errorf("interval=%d: got %d, want 0", interval, got)
		}
	}
}

// Inside the window every result must be strictly after now and a whole
// number of intervals away from the phase anchor.
func TestNextPhaseAnchorProperty(t *testing.T) {
	anchor := mustMillis(t, 9, 0)

	for _, intervalSec := range []int{1, 7, 60, 90, 3600} {
		intervalMillis := int64(intervalSec) * 1000
		for _, offset := range []int64{0, 1, 499, 500, 999, 1000, 59_999, 60_000, 61_001, 3_599_999} {
			now := anchor + offset
			got := Next(now, "00:00", "00:00", intervalSec, anchor, time.UTC)

			if got <= now {
				t.Fatalf("interval=%ds offset=%d: next %d not strictly after now %d",
					intervalSec, offset, got, now)
			}
			if (got-anchor)%intervalMillis != 0 {
				t.Fatalf("interval=%ds offset=%d: next %d not on anchor grid (rem %d)",
					intervalSec, offset, got, (got-anchor)%intervalMillis)
			}
		}
	}
}

// Re-arming from the recorded anchor must chain without drift: firing at T0
// yields T0+60s, firing at that tick yields T0+120s, even when the callback
// arrives late.
func TestNextDriftFreeChaining(t *testing.T) {
	t0 := mustMillis(t, 8, 0)

	next1 := Next(t0+250, "08:00", "08:00", 60, t0, time.UTC)
	if next1 != t0+60_000 {
		t.Fatalf("first re-arm: got %d, want %d", next1, t0+60_000)
	}

	// Second fire delivered 3s late; anchor keeps the grid.
	next2 := Next(next1+3_000, "08:00", "08:00", 60, t0, time.UTC)
	if next2 != t0+120_000 {
		t.Fatalf("second re-arm: got %d, want %d", next2, t0+120_000)
	}
}

func TestNextFixed(t *testing.T) {
	tests := []struct {
		name     string
		now      int64
		fixed    string
		expected int64
	}{
		{
			name:     "later today",
			now:      mustMillis(t, 6, 0),
			fixed:    "07:30",
			expected: mustMillis(t, 7, 30),
		},
		{
			name:     "already passed today",
			now:      mustMillis(t, 8, 0),
			fixed:    "07:30",
			expected: mustMillis(t, 7, 30) + DayMillis,
		},
		{
			name:     "exactly now rolls to tomorrow",
			now:      mustMillis(t, 7, 30),
			fixed:    "07:30",
			expected: mustMillis(t, 7, 30) + DayMillis,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextFixed(tt.now, tt.fixed, time.UTC)
			if got != tt.expected {
				t.Errorf("NextFixed: got %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestClampToWindow(t *testing.T) {
	tests := []struct {
		name     string
		now      int64
		start    string
		end      string
		expected int64
	}{
		{
			name:     "inside window passes through",
			now:      mustMillis(t, 10, 0),
			start:    "08:00",
			end:      "20:00",
			expected: mustMillis(t, 10, 0),
		},
		{
			name:     "before window clamps to open",
			now:      mustMillis(t, 6, 30),
			start:    "08:00",
			end:      "20:00",
			expected: mustMillis(t, 8, 0),
		},
		{
			name:     "past close rolls to tomorrow's open",
			now:      mustMillis(t, 21, 0),
			start:    "08:00",
			end:      "20:00",
			expected: mustMillis(t, 8, 0) + DayMillis,
		},
		{
			name:     "close is exclusive",
			now:      mustMillis(t, 20, 0),
			start:    "08:00",
			end:      "20:00",
			expected: mustMillis(t, 8, 0) + DayMillis,
		},
		{
			name:     "equal bounds span the full day",
			now:      mustMillis(t, 23, 59),
			start:    "00:00",
			end:      "00:00",
			expected: mustMillis(t, 23, 59),
		},
		{
			name:     "midnight crossing window",
			now:      mustMillis(t, 23, 0),
			start:    "22:00",
			end:      "06:00",
			expected: mustMillis(t, 23, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampToWindow(tt.now, tt.start, tt.end, time.UTC)
			if got != tt.expected {
				t.Errorf("ClampToWindow: got %d, want %d", got, tt.expected)
			}
		})
	}
}
