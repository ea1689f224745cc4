package mood

import "strings"

// Label is a recorded mood. The empty Label means no mood was captured.
type Label string

const (
	Happy     Label = "happy"
	Sad       Label = "sad"
	Angry     Label = "angry"
	Jealous   Label = "jealous"
	Lonely    Label = "lonely"
	Anxious   Label = "anxious"
	Calm      Label = "calm"
	Excited   Label = "excited"
	Neutral   Label = "neutral"
	Surprised Label = "surprised"
	Loved     Label = "loved"
)

// Set is the allowed subset of labels for one call site.
type Set map[Label]struct{}

func NewSet(labels ...Label) Set {
	s := make(Set, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// Known is every label the product understands.
var Known = NewSet(Happy, Sad, Angry, Jealous, Lonely, Anxious, Calm, Excited, Neutral, Surprised, Loved)

// JournalMoods are offered when writing a journal entry.
var JournalMoods = NewSet(Happy, Sad, Angry, Anxious, Calm, Excited, Neutral, Loved)

// SessionMoods are offered by the mood check-in prompt.
var SessionMoods = NewSet(Happy, Sad, Angry, Jealous, Lonely, Anxious, Calm, Excited, Neutral, Surprised, Loved)

// Contains reports whether l is allowed. A nil Set falls back to Known.
func (s Set) Contains(l Label) bool {
	if s == nil {
		s = Known
	}
	_, ok := s[l]
	return ok
}

// Parse normalizes raw input into a Label from s.
func (s Set) Parse(raw string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(raw)))
	if l == "" || !s.Contains(l) {
		return "", false
	}
	return l, true
}

// Tracked reports whether l counts toward mood-specific aggregates.
// Neutral is the "declined to answer" sentinel and never does.
func (s Set) Tracked(l Label) bool {
	return l != "" && l != Neutral && s.Contains(l)
}

// valence places each label on a rough 1-5 scale for trend analysis.
var valence = map[Label]float64{
	Happy:     5,
	Loved:     5,
	Excited:   4.5,
	Calm:      4,
	Surprised: 3.5,
	Neutral:   3,
	Jealous:   2,
	Anxious:   2,
	Lonely:    1.5,
	Sad:       1.5,
	Angry:     1,
}

// Valence returns the score for l and whether it has one.
func Valence(l Label) (float64, bool) {
	v, ok := valence[l]
	return v, ok
}
