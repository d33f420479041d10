package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func days(ss ...string) []time.Time {
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = day(s)
	}
	return out
}

func TestCalculateStreaks(t *testing.T) {
	today := day("2024-01-07")

	tests := []struct {
		name            string
		dates           []time.Time
		expectedCurrent int
		expectedMax     int
	}{
		{
			name:            "empty history",
			dates:           nil,
			expectedCurrent: 0,
			expectedMax:     0,
		},
		{
			name:            "single reading today",
			dates:           days("2024-01-07"),
			expectedCurrent: 1,
			expectedMax:     1,
		},
		{
			name:            "single reading yesterday still active",
			dates:           days("2024-01-06"),
			expectedCurrent: 1,
			expectedMax:     1,
		},
		{
			name:            "most recent older than yesterday resets current",
			dates:           days("2024-01-05", "2024-01-04", "2024-01-03"),
			expectedCurrent: 0,
			expectedMax:     3,
		},
		{
			name:            "five consecutive days ending today",
			dates:           days("2024-01-07", "2024-01-06", "2024-01-05", "2024-01-04", "2024-01-03"),
			expectedCurrent: 5,
			expectedMax:     5,
		},
		{
			name:            "five day run then gap then two day run ending today",
			dates:           days("2024-01-07", "2024-01-06", "2024-01-04", "2024-01-03", "2024-01-02", "2024-01-01", "2023-12-31"),
			expectedCurrent: 2,
			expectedMax:     5,
		},
		{
			name:            "run before gap larger than active run",
			dates:           days("2024-01-07", "2024-01-05", "2024-01-04", "2024-01-03", "2024-01-02", "2024-01-01"),
			expectedCurrent: 1,
			expectedMax:     5,
		},
		{
			name:            "unsorted input still counted correctly",
			dates:           days("2024-01-05", "2024-01-07", "2024-01-06"),
			expectedCurrent: 3,
			expectedMax:     3,
		},
		{
			name:            "max streak scanned even when current is zero",
			dates:           days("2023-12-20", "2023-12-19", "2023-12-18", "2023-12-17", "2023-12-10"),
			expectedCurrent: 0,
			expectedMax:     4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, max := CalculateStreaks(tt.dates, today)
			assert.Equal(t, tt.expectedCurrent, current, "current streak")
			assert.Equal(t, tt.expectedMax, max, "max streak")
		})
	}
}

func TestCalculateStreaksIgnoresTimeOfDay(t *testing.T) {
	today := day("2024-01-07")

	dates := []time.Time{
		day("2024-01-07").Add(23 * time.Hour),
		day("2024-01-06").Add(5 * time.Minute),
		day("2024-01-05").Add(12 * time.Hour),
	}

	current, max := CalculateStreaks(dates, today)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, max)
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	local := time.Date(2024, 1, 7, 2, 30, 0, 0, loc)

	// 02:30 at UTC+5 is still Jan 6 in UTC
	assert.Equal(t, day("2024-01-06"), Day(local))
}
