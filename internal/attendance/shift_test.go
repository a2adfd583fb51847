package attendance

import (
	"testing"
	"time"
)

func TestParseShiftTime(t *testing.T) {
	cases := []struct {
		in      string
		hour    int
		minute  int
		wantOK  bool
	}{
		{"17:00", 17, 0, true},
		{"00:00", 0, 0, true},
		{"23:59", 23, 59, true},
		{"24:00", 0, 0, false},
		{"17:60", 0, 0, false},
		{"-1:30", 0, 0, false},
		{"17", 0, 0, false},
		{"", 0, 0, false},
		{"5pm", 0, 0, false},
		{"17:00:00", 0, 0, false},
	}

	for _, c := range cases {
		hour, minute, ok := ParseShiftTime(c.in)
		if ok != c.wantOK {
			t.Errorf("ParseShiftTime(%q) ok = %v, want %v", c.in, ok, c.wantOK)
			continue
		}
		if ok && (hour != c.hour || minute != c.minute) {
			t.Errorf("ParseShiftTime(%q) = %d:%d, want %d:%d", c.in, hour, minute, c.hour, c.minute)
		}
	}
}

// TestAutoClockOutInstant verifies shift end + grace lands on the attendance
// date, and malformed shift strings fall back to 17:00.
func TestAutoClockOutInstant(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)

	got := AutoClockOutInstant(date, "17:00", 30*time.Minute)
	want := time.Date(2026, 3, 9, 17, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Malformed shift end uses the 17:00 default.
	got = AutoClockOutInstant(date, "not-a-time", 30*time.Minute)
	if !got.Equal(want) {
		t.Errorf("expected default-shift %v, got %v", want, got)
	}

	// Empty string is malformed too.
	got = AutoClockOutInstant(date, "", 30*time.Minute)
	if !got.Equal(want) {
		t.Errorf("expected default-shift %v, got %v", want, got)
	}

	// Night shift end carries over within the same date (no midnight logic
	// here; the attendance date anchors the instant).
	got = AutoClockOutInstant(date, "22:15", 45*time.Minute)
	want = time.Date(2026, 3, 9, 23, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2026, 3, 9, 18, 22, 5, 99, time.Local)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	if got := DateOf(ts); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
