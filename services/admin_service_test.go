package services

import (
	"testing"
	"time"
)

func TestStartOfDayUsesLocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)

	late := time.Date(2026, time.March, 3, 23, 40, 9, 12, loc)
	got := startOfDay(late)
	want := time.Date(2026, time.March, 3, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("startOfDay(%v) = %v, want %v", late, got, want)
	}
	if got.Location() != loc {
		t.Fatalf("location changed to %v", got.Location())
	}

	// 01:00 local is still the previous day in UTC; the local day must win.
	early := time.Date(2026, time.March, 3, 1, 0, 0, 0, loc)
	if d := startOfDay(early); d.Day() != 3 || d.Hour() != 0 {
		t.Fatalf("startOfDay(%v) = %v, want local midnight of the 3rd", early, d)
	}
}

func TestDifficultyLevel(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{100, "Easy"},
		{70.1, "Easy"},
		{70, "Medium"},
		{40.1, "Medium"},
		{40, "Hard"},
		{0, "Hard"},
	}
	for _, tc := range cases {
		if got := difficultyLevel(tc.rate); got != tc.want {
			t.Errorf("difficultyLevel(%.1f) = %s, want %s", tc.rate, got, tc.want)
		}
	}
}

func TestRoundOne(t *testing.T) {
	if got := roundOne(66.666); got != 66.7 {
		t.Errorf("roundOne(66.666) = %v", got)
	}
	if got := roundOne(0); got != 0 {
		t.Errorf("roundOne(0) = %v", got)
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("short", 10); got != "short" {
		t.Errorf("short strings must pass through, got %q", got)
	}
	long := "abcdefghijklmnop"
	if got := truncateText(long, 5); got != "abcde..." {
		t.Errorf("truncateText = %q", got)
	}
}
