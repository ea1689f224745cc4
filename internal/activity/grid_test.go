package activity

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/mood"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

func entryOn(d calendar.Date) mood.Entry {
	return mood.Entry{OccurredAt: calendar.OnDate(d)}
}

func TestIntensityFor(t *testing.T) {
	tests := []struct {
		count int
		want  Level
	}{
		{-1, Level0},
		{0, Level0},
		{1, Level1},
		{2, Level2},
		{3, Level3},
		{4, Level4},
		{17, Level4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntensityFor(tt.count), "count=%d", tt.count)
	}
}

func TestBuildGrid_WindowInvariantForEveryWeekday(t *testing.T) {
	base := date(t, "2024-02-25")
	// Cover every weekday plus a leap day and a year boundary.
	for i := 0; i < 400; i += 3 {
		today := base.AddDays(i)
		weeks := BuildGrid(nil, today, time.UTC)
		require.NotEmpty(t, weeks)

		first := weeks[0][0].Date
		last := weeks[len(weeks)-1][6].Date

		assert.Equal(t, time.Sunday, first.Weekday(), "today=%s", today)
		assert.Equal(t, time.Saturday, last.Weekday(), "today=%s", today)

		back := calendar.DaysBetween(first, today)
		assert.GreaterOrEqual(t, back, 364, "today=%s", today)
		assert.LessOrEqual(t, back, 370, "today=%s", today)
		assert.False(t, last.Before(today))
	}
}

func TestBuildGrid_DaysAreContiguous(t *testing.T) {
	weeks := BuildGrid(nil, date(t, "2024-01-02"), time.UTC)

	prev := weeks[0][0].Date.AddDays(-1)
	for _, w := range weeks {
		for _, c := range w {
			assert.Equal(t, prev.AddDays(1), c.Date)
			prev = c.Date
		}
	}
}

func TestBuildGrid_TodayAndFutureFlags(t *testing.T) {
	today := date(t, "2024-01-03") // Wednesday
	weeks := BuildGrid(nil, today, time.UTC)
	lastWeek := weeks[len(weeks)-1]

	todayCount, futureCount := 0, 0
	for _, w := range weeks {
		for _, c := range w {
			if c.IsToday {
				todayCount++
				assert.Equal(t, today, c.Date)
			}
			if c.IsFuture {
				futureCount++
				assert.True(t, c.Date.After(today))
			}
		}
	}
	assert.Equal(t, 1, todayCount)
	assert.Equal(t, 3, futureCount)
	assert.True(t, lastWeek[3].IsToday)
}

func TestBuildGrid_CountConservation(t *testing.T) {
	today := date(t, "2024-06-15")
	start, end := Window(today)

	entries := []mood.Entry{
		entryOn(start),
		entryOn(start),
		entryOn(end),
		entryOn(today),
		entryOn(today.AddDays(-100)),
		entryOn(start.AddDays(-1)), // before window
		entryOn(end.AddDays(1)),    // after window
		{},                          // unreadable
		{OccurredAt: calendar.ParseTimestamp("garbage")},
	}

	weeks := BuildGrid(entries, today, time.UTC)

	assert.Equal(t, 5, StatsOf(weeks).TotalEntries)
}

func TestBuildGrid_EmptyInput(t *testing.T) {
	weeks := BuildGrid([]mood.Entry{}, date(t, "2024-06-15"), time.UTC)

	s := StatsOf(weeks)
	assert.Zero(t, s.TotalEntries)
	assert.Zero(t, s.ActiveDays)
	for _, w := range weeks {
		for _, c := range w {
			assert.Equal(t, Level0, c.Level)
		}
	}
}

func TestBuildGrid_EndToEndSameDayEntries(t *testing.T) {
	entries := []mood.Entry{
		{OccurredAt: calendar.ParseTimestamp("2024-01-01"), Mood: mood.Happy},
		{OccurredAt: calendar.ParseTimestamp("2024-01-01"), Mood: mood.Sad},
		{OccurredAt: calendar.ParseTimestamp("2024-01-02"), Mood: mood.Happy},
	}

	weeks := BuildGrid(entries, date(t, "2024-01-02"), time.UTC)

	byDate := map[string]Cell{}
	for _, w := range weeks {
		for _, c := range w {
			byDate[c.Date.String()] = c
		}
	}
	assert.Equal(t, 2, byDate["2024-01-01"].Count)
	assert.Equal(t, Level2, byDate["2024-01-01"].Level)
	assert.Equal(t, 1, byDate["2024-01-02"].Count)
	assert.True(t, byDate["2024-01-02"].IsToday)
}

func TestBuildGrid_Deterministic(t *testing.T) {
	entries := []mood.Entry{entryOn(date(t, "2024-03-01")), entryOn(date(t, "2024-03-02"))}
	today := date(t, "2024-03-05")

	assert.Equal(t, BuildGrid(entries, today, time.UTC), BuildGrid(entries, today, time.UTC))
}

func TestMonthLabels(t *testing.T) {
	weeks := BuildGrid(nil, date(t, "2024-01-02"), time.UTC)
	labels := MonthLabels(weeks)

	require.Len(t, labels, len(weeks))
	// The week of 2023-12-31 holds Jan 1st.
	assert.Equal(t, "Jan", labels[len(labels)-1])

	nonEmpty := 0
	for _, l := range labels {
		if l != "" {
			nonEmpty++
		}
	}
	assert.Equal(t, 13, nonEmpty)
}
