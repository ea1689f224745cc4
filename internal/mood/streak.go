package mood

import (
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
)

// DailyStreak counts consecutive days with at least one entry, ending today
// or yesterday. Input may be unsorted and contain several entries per day.
// Entries dated after today are ignored.
func DailyStreak(entries []Entry, today calendar.Date, loc *time.Location) int {
	dates := uniqueDates(entries, loc)
	kept := dates[:0]
	for _, d := range dates {
		if !d.After(today) {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return 0
	}
	sortDescending(kept)

	if calendar.DaysBetween(kept[0], today) > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(kept); i++ {
		if calendar.DaysBetween(kept[i], kept[i-1]) != 1 {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive days with an entry.
func LongestStreak(entries []Entry, loc *time.Location) int {
	dates := uniqueDates(entries, loc)
	if len(dates) == 0 {
		return 0
	}
	sortDescending(dates)

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if calendar.DaysBetween(dates[i], dates[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func sortDescending(dates []calendar.Date) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})
}
