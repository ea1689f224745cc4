package mood

import (
	"math"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
)

// Share is one row of a mood distribution.
type Share struct {
	Mood       Label `json:"mood"`
	Count      int   `json:"count"`
	Percentage int   `json:"percentage"`
}

// Distribution counts tracked moods and returns them by descending count.
// Ties keep the order in which each mood first appeared. Percentages are
// rounded against the tracked total, so neutral, missing and unknown moods
// affect neither rows nor denominator.
func Distribution(entries []Entry, allowed Set) []Share {
	counts := make(map[Label]int)
	order := make([]Label, 0)
	total := 0
	for _, e := range entries {
		if !allowed.Tracked(e.Mood) {
			continue
		}
		if counts[e.Mood] == 0 {
			order = append(order, e.Mood)
		}
		counts[e.Mood]++
		total++
	}

	shares := make([]Share, 0, len(order))
	for _, l := range order {
		shares = append(shares, Share{
			Mood:       l,
			Count:      counts[l],
			Percentage: percent(counts[l], total),
		})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Count > shares[j].Count
	})
	return shares
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(100*float64(count)/float64(total) + 0.5))
}

// RecentHistory returns the last n entries with a tracked mood, most recent
// first. entries must already be in chronological order.
func RecentHistory(entries []Entry, n int, allowed Set) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	out := make([]Entry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		if allowed.Tracked(entries[i].Mood) {
			out = append(out, entries[i])
		}
	}
	return out
}

// Summary bundles the analytics shown on the mood dashboard.
type Summary struct {
	TotalEntries  int     `json:"total_entries"`
	TrackedMoods  int     `json:"tracked_moods"`
	TopMood       Label   `json:"top_mood,omitempty"`
	Distribution  []Share `json:"distribution"`
	Recent        []Entry `json:"recent"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	Trend         Trend   `json:"trend"`
}

// Summarize computes the dashboard from scratch. TotalEntries is mood-agnostic
// and includes entries with unknown moods.
func Summarize(entries []Entry, today calendar.Date, loc *time.Location, allowed Set, recentN int) Summary {
	dist := Distribution(entries, allowed)
	tracked := 0
	for _, s := range dist {
		tracked += s.Count
	}

	var top Label
	if len(dist) > 0 {
		top = dist[0].Mood
	}

	return Summary{
		TotalEntries:  len(entries),
		TrackedMoods:  tracked,
		TopMood:       top,
		Distribution:  dist,
		Recent:        RecentHistory(entries, recentN, allowed),
		CurrentStreak: DailyStreak(entries, today, loc),
		LongestStreak: LongestStreak(entries, loc),
		Trend:         TrendOf(entries, loc, allowed),
	}
}
