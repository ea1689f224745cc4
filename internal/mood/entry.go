package mood

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
)

// Entry is one dated record (journal entry, check-in, breathing session) as
// consumed by the analytics in this package and by the activity grid.
type Entry struct {
	OccurredAt calendar.Timestamp `json:"occurred_at"`
	Mood       Label              `json:"mood,omitempty"`
}

// NewEntry builds an Entry from a stored time and mood string.
func NewEntry(at time.Time, mood string) Entry {
	return Entry{OccurredAt: calendar.At(at), Mood: Label(mood)}
}

// uniqueDates collapses entries to their distinct calendar days in loc,
// skipping entries whose timestamp cannot be read.
func uniqueDates(entries []Entry, loc *time.Location) []calendar.Date {
	seen := make(map[calendar.Date]struct{}, len(entries))
	dates := make([]calendar.Date, 0, len(entries))
	for _, e := range entries {
		d, ok := e.OccurredAt.Date(loc)
		if !ok {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	return dates
}
