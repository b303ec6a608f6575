package task

import "time"

// MaxOccurrencesPerExpansion bounds a single expansion pass so a distant
// recurrence_until cannot flood the tasks table in one job run.
const MaxOccurrencesPerExpansion = 62

// NextOccurrences returns the occurrence dates of a recurrence rule strictly
// after `after`, up to and including `until`. The rule anchors on `seed` (the
// template task's work date): weekly keeps the weekday, monthly keeps the day
// of month, clamped to the target month's last day.
func NextOccurrences(rule string, seed, after, until time.Time) []time.Time {
	if until.Before(seed) {
		return nil
	}

	var step func(time.Time) time.Time
	switch rule {
	case RecurrenceDaily:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	case RecurrenceWeekly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case RecurrenceMonthly:
		anchor := seed.Day()
		step = func(t time.Time) time.Time { return addMonthClamped(t, anchor) }
	default:
		return nil
	}

	var out []time.Time
	current := seed
	for len(out) < MaxOccurrencesPerExpansion {
		current = step(current)
		if current.After(until) {
			break
		}
		if !current.After(after) {
			continue
		}
		out = append(out, current)
	}
	return out
}

func addMonthClamped(t time.Time, anchorDay int) time.Time {
	year, month, _ := t.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	day := anchorDay
	if last := lastDayOfMonth(firstOfNext); day > last {
		day = last
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
