package mood

import (
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"

	// slopeThreshold is the valence change per day treated as a real trend.
	slopeThreshold = 0.05
)

// Trend describes how mood valence moves over the analysed entries.
type Trend struct {
	Direction      string  `json:"direction"`
	AverageValence float64 `json:"average_valence"`
	SlopePerDay    float64 `json:"slope_per_day"`
	Samples        int     `json:"samples"`
}

type point struct {
	day     calendar.Date
	valence float64
}

// TrendOf fits a least-squares line through (day, valence) points of tracked
// moods. Fewer than two distinct days is always stable.
func TrendOf(entries []Entry, loc *time.Location, allowed Set) Trend {
	points := make([]point, 0, len(entries))
	days := make(map[calendar.Date]struct{})
	var first calendar.Date
	for _, e := range entries {
		if !allowed.Tracked(e.Mood) {
			continue
		}
		v, ok := Valence(e.Mood)
		if !ok {
			continue
		}
		d, ok := e.OccurredAt.Date(loc)
		if !ok {
			continue
		}
		if len(points) == 0 || d.Before(first) {
			first = d
		}
		days[d] = struct{}{}
		points = append(points, point{day: d, valence: v})
	}

	out := Trend{Direction: TrendStable, Samples: len(points)}
	if len(points) == 0 {
		return out
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(calendar.DaysBetween(first, p.day))
		ys[i] = p.valence
	}

	if mean, err := stats.Mean(stats.Float64Data(ys)); err == nil {
		out.AverageValence = round2(mean)
	}
	if len(days) < 2 {
		return out
	}

	_, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return out
	}
	out.SlopePerDay = round2(beta)
	switch {
	case beta > slopeThreshold:
		out.Direction = TrendImproving
	case beta < -slopeThreshold:
		out.Direction = TrendDeclining
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
