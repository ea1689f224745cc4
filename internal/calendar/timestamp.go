package calendar

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type timestampKind uint8

const (
	kindInvalid timestampKind = iota
	kindInstant
	kindDateOnly
)

// Timestamp is a normalized occurrence time as it arrives from storage or
// clients: an epoch-seconds wrapper ({"seconds": n, "nanoseconds": m}), an ISO
// string, epoch milliseconds, or a Go time. Date-only strings keep their
// calendar day regardless of the viewer's zone. Unparseable input yields an
// invalid Timestamp rather than an error so one corrupt record never aborts
// aggregation over the rest.
type Timestamp struct {
	kind timestampKind
	t    time.Time
	date Date
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// At wraps a Go time. The zero time is invalid.
func At(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{kind: kindInstant, t: t}
}

// FromSeconds builds a Timestamp from the epoch-seconds wrapper shape.
func FromSeconds(seconds, nanos int64) Timestamp {
	return Timestamp{kind: kindInstant, t: time.Unix(seconds, nanos)}
}

// FromMillis builds a Timestamp from epoch milliseconds. Non-positive values are invalid.
func FromMillis(ms int64) Timestamp {
	if ms <= 0 {
		return Timestamp{}
	}
	return Timestamp{kind: kindInstant, t: time.UnixMilli(ms)}
}

// OnDate builds a date-only Timestamp.
func OnDate(d Date) Timestamp {
	return Timestamp{kind: kindDateOnly, date: d}
}

// ParseTimestamp accepts ISO date-times and plain YYYY-MM-DD dates.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if d, err := ParseDate(s); err == nil {
		return OnDate(d)
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{kind: kindInstant, t: t}
		}
	}
	return Timestamp{}
}

func (ts Timestamp) Valid() bool {
	return ts.kind != kindInvalid
}

// Date returns the calendar day of ts in loc.
func (ts Timestamp) Date(loc *time.Location) (Date, bool) {
	switch ts.kind {
	case kindInstant:
		return DateOf(ts.t, loc), true
	case kindDateOnly:
		return ts.date, true
	}
	return Date{}, false
}

// Time returns the instant of ts. Date-only values resolve to midnight in loc.
func (ts Timestamp) Time(loc *time.Location) (time.Time, bool) {
	switch ts.kind {
	case kindInstant:
		return ts.t, true
	case kindDateOnly:
		return ts.date.In(loc), true
	}
	return time.Time{}, false
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch ts.kind {
	case kindInstant:
		return json.Marshal(ts.t.UTC().Format(time.RFC3339Nano))
	case kindDateOnly:
		return json.Marshal(ts.date.String())
	}
	return []byte("null"), nil
}

type secondsWrapper struct {
	Seconds     *int64 `json:"seconds"`
	Nanoseconds int64  `json:"nanoseconds"`
	AltSeconds  *int64 `json:"_seconds"`
	AltNanos    int64  `json:"_nanoseconds"`
}

// UnmarshalJSON never fails: shapes it cannot read become an invalid Timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	*ts = Timestamp{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*ts = ParseTimestamp(s)
		}
	case '{':
		var w secondsWrapper
		if err := json.Unmarshal(b, &w); err != nil {
			return nil
		}
		switch {
		case w.Seconds != nil:
			*ts = FromSeconds(*w.Seconds, w.Nanoseconds)
		case w.AltSeconds != nil:
			*ts = FromSeconds(*w.AltSeconds, w.AltNanos)
		}
	default:
		var ms float64
		if err := json.Unmarshal(b, &ms); err == nil {
			*ts = FromMillis(int64(ms))
		}
	}
	return nil
}
