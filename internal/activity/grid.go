// Package activity builds the year-long journaling heatmap.
package activity

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/mood"
)

// WindowDays is how far back the grid reaches before being widened to whole weeks.
const WindowDays = 364

// Level is the presentation tier of a day's count.
type Level int

const (
	Level0 Level = iota
	Level1
	Level2
	Level3
	Level4
)

// IntensityFor maps a per-day count onto one of five tiers.
func IntensityFor(count int) Level {
	switch {
	case count <= 0:
		return Level0
	case count >= int(Level4):
		return Level4
	}
	return Level(count)
}

type Cell struct {
	Date     calendar.Date `json:"date"`
	Count    int           `json:"count"`
	Level    Level         `json:"level"`
	IsFuture bool          `json:"is_future"`
	IsToday  bool          `json:"is_today"`
}

// Week is one column of the grid, Sunday first.
type Week [7]Cell

// Window returns the first and last day shown for today: the Sunday on or
// before today-364 and the Saturday on or after today.
func Window(today calendar.Date) (start, end calendar.Date) {
	return calendar.StartOfWeek(today.AddDays(-WindowDays)), calendar.EndOfWeek(today)
}

// BuildGrid lays entries out over the rolling window ending on the Saturday of
// today's week. The trailing days after today are emitted with IsFuture set.
// Entries with unreadable timestamps or outside the window are dropped.
func BuildGrid(entries []mood.Entry, today calendar.Date, loc *time.Location) []Week {
	start, end := Window(today)

	counts := make(map[calendar.Date]int, len(entries))
	for _, e := range entries {
		d, ok := e.OccurredAt.Date(loc)
		if !ok || d.Before(start) || d.After(end) {
			continue
		}
		counts[d]++
	}

	days := calendar.DaysBetween(start, end) + 1
	weeks := make([]Week, 0, days/7)
	var week Week
	for i := 0; i < days; i++ {
		d := start.AddDays(i)
		c := counts[d]
		week[i%7] = Cell{
			Date:     d,
			Count:    c,
			Level:    IntensityFor(c),
			IsFuture: d.After(today),
			IsToday:  d == today,
		}
		if i%7 == 6 {
			weeks = append(weeks, week)
			week = Week{}
		}
	}
	return weeks
}

// Stats summarises a built grid.
type Stats struct {
	TotalEntries int `json:"total_entries"`
	ActiveDays   int `json:"active_days"`
	BusiestDay   int `json:"busiest_day"`
}

func StatsOf(weeks []Week) Stats {
	var s Stats
	for _, w := range weeks {
		for _, c := range w {
			if c.Count == 0 {
				continue
			}
			s.TotalEntries += c.Count
			s.ActiveDays++
			if c.Count > s.BusiestDay {
				s.BusiestDay = c.Count
			}
		}
	}
	return s
}

// MonthLabels returns, per week, the short month name when that week contains
// the first day of a month, and "" otherwise.
func MonthLabels(weeks []Week) []string {
	labels := make([]string, len(weeks))
	for i, w := range weeks {
		for _, c := range w {
			if c.Date.Day == 1 {
				labels[i] = c.Date.Month.String()[:3]
				break
			}
		}
	}
	return labels
}
