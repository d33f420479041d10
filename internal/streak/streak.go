// Package streak derives gamification state from a user's reading
// history: consecutive-day streaks and seed-based levels.
package streak

import (
	"sort"
	"time"
)

// Day truncates t to its UTC calendar day. All streak arithmetic works
// on day-normalized times; mixing zones breaks consecutiveness.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(later, earlier time.Time) int {
	return int(Day(later).Sub(Day(earlier)) / (24 * time.Hour))
}

// CalculateStreaks computes the active and the historical maximum
// consecutive-day streak over the given reading dates. The active
// streak is non-zero only when the most recent reading falls on today
// or yesterday relative to the passed reference day.
func CalculateStreaks(dates []time.Time, today time.Time) (current, max int) {
	if len(dates) == 0 {
		return 0, 0
	}

	sorted := make([]time.Time, len(dates))
	for i, d := range dates {
		sorted[i] = Day(d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	today = Day(today)
	yesterday := today.AddDate(0, 0, -1)

	if sorted[0].Equal(today) || sorted[0].Equal(yesterday) {
		current = 1
		for i := 1; i < len(sorted); i++ {
			if daysBetween(sorted[i-1], sorted[i]) != 1 {
				break
			}
			current++
		}
	}

	run := 1
	max = 1
	for i := 1; i < len(sorted); i++ {
		if daysBetween(sorted[i-1], sorted[i]) == 1 {
			run++
			if run > max {
				max = run
			}
		} else {
			run = 1
		}
	}

	return current, max
}
