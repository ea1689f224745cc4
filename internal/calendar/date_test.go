package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestDateOf_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	instant := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-01", DateOf(instant, time.UTC).String())
	assert.Equal(t, "2024-01-02", DateOf(instant, tokyo).String())
}

func TestDate_AddDaysAcrossBoundaries(t *testing.T) {
	tests := []struct {
		name string
		from string
		days int
		want string
	}{
		{name: "month end", from: "2024-01-31", days: 1, want: "2024-02-01"},
		{name: "leap day", from: "2024-02-28", days: 1, want: "2024-02-29"},
		{name: "year back", from: "2024-01-01", days: -1, want: "2023-12-31"},
		{name: "full year", from: "2024-01-02", days: -364, want: "2023-01-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustDate(t, tt.from).AddDays(tt.days).String())
		})
	}
}

func TestDaysBetween_IgnoresDST(t *testing.T) {
	// 2024-03-10 is the US spring-forward day.
	a := mustDate(t, "2024-03-09")
	b := mustDate(t, "2024-03-11")

	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
}

func TestWeekBounds(t *testing.T) {
	wed := mustDate(t, "2024-01-03")

	assert.Equal(t, "2023-12-31", StartOfWeek(wed).String())
	assert.Equal(t, "2024-01-06", EndOfWeek(wed).String())

	sun := mustDate(t, "2023-12-31")
	assert.Equal(t, sun, StartOfWeek(sun))

	sat := mustDate(t, "2024-01-06")
	assert.Equal(t, sat, EndOfWeek(sat))
}

func TestDate_Compare(t *testing.T) {
	a := mustDate(t, "2024-01-01")
	b := mustDate(t, "2024-01-02")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(mustDate(t, "2024-01-01")))
}

func TestDate_TextRoundTripInJSON(t *testing.T) {
	payload := struct {
		Day Date `json:"day"`
	}{Day: mustDate(t, "2024-05-06")}

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-05-06"}`, string(b))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)
}
