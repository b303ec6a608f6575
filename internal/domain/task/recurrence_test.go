package task

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrencesDaily(t *testing.T) {
	seed := day(2026, time.March, 1)
	got := NextOccurrences(RecurrenceDaily, seed, seed, day(2026, time.March, 4))
	want := []time.Time{day(2026, time.March, 2), day(2026, time.March, 3), day(2026, time.March, 4)}
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestNextOccurrencesWeeklyKeepsWeekday(t *testing.T) {
	seed := day(2026, time.March, 2) // a Monday
	got := NextOccurrences(RecurrenceWeekly, seed, seed, day(2026, time.March, 31))
	if len(got) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(got))
	}
	for _, occurrence := range got {
		if occurrence.Weekday() != time.Monday {
			t.Fatalf("expected Monday, got %v on %v", occurrence.Weekday(), occurrence)
		}
	}
}

func TestNextOccurrencesMonthlyClampsToShortMonths(t *testing.T) {
	seed := day(2026, time.January, 31)
	got := NextOccurrences(RecurrenceMonthly, seed, seed, day(2026, time.April, 30))
	want := []time.Time{day(2026, time.February, 28), day(2026, time.March, 31), day(2026, time.April, 30)}
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("occurrence %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestNextOccurrencesSkipsAlreadyExpanded(t *testing.T) {
	seed := day(2026, time.March, 1)
	after := day(2026, time.March, 3)
	got := NextOccurrences(RecurrenceDaily, seed, after, day(2026, time.March, 5))
	if len(got) != 2 {
		t.Fatalf("expected 2 occurrences after %v, got %d", after, len(got))
	}
	if !got[0].Equal(day(2026, time.March, 4)) {
		t.Fatalf("expected first occurrence March 4, got %v", got[0])
	}
}

func TestNextOccurrencesBounded(t *testing.T) {
	seed := day(2026, time.January, 1)
	got := NextOccurrences(RecurrenceDaily, seed, seed, day(2030, time.January, 1))
	if len(got) != MaxOccurrencesPerExpansion {
		t.Fatalf("expected expansion capped at %d, got %d", MaxOccurrencesPerExpansion, len(got))
	}
}

func TestNextOccurrencesUnknownRule(t *testing.T) {
	seed := day(2026, time.March, 1)
	if got := NextOccurrences("yearly", seed, seed, day(2027, time.March, 1)); got != nil {
		t.Fatalf("expected nil for unknown rule, got %v", got)
	}
	if got := NextOccurrences(RecurrenceNone, seed, seed, day(2027, time.March, 1)); got != nil {
		t.Fatalf("expected nil for none rule, got %v", got)
	}
}
