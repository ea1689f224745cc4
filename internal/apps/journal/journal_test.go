package journal

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/mood"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNeedsCheckIn(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	assert.False(t, needsCheckIn(now.Add(-time.Hour), now))
	assert.False(t, needsCheckIn(now.Add(-24*time.Hour), now))
	assert.True(t, needsCheckIn(now.Add(-24*time.Hour-time.Second), now))
}

func TestParseMood(t *testing.T) {
	label, err := parseMood("  Happy ", mood.JournalMoods)
	require.NoError(t, err)
	assert.Equal(t, mood.Happy, label)

	label, err = parseMood("", mood.JournalMoods)
	require.NoError(t, err)
	assert.Equal(t, mood.Neutral, label)

	_, err = parseMood("jealous", mood.JournalMoods)
	assert.ErrorIs(t, err, ErrInvalidMood)
}

func TestValidDate(t *testing.T) {
	s := &JournalService{}
	today := calendar.DateOf(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), time.UTC)

	d, err := s.validDate("2024-05-09", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-09", d.String())

	_, err = s.validDate("2024-05-11", today)
	assert.ErrorIs(t, err, ErrFutureDate)

	_, err = s.validDate("05/09/2024", today)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestEntryMoods_KeepsCalendarDay(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	created := time.Date(2024, 5, 9, 23, 30, 0, 0, time.UTC)
	entries := []Entry{
		{Mood: "happy", EntryDate: "2024-05-09", CreatedAt: created},
		{Mood: "sad", CreatedAt: created},
		{Mood: "calm", EntryDate: "garbage", CreatedAt: created},
	}

	out := entryMoods(entries)
	require.Len(t, out, 3)

	d, ok := out[0].OccurredAt.Date(tokyo)
	require.True(t, ok)
	assert.Equal(t, "2024-05-09", d.String())

	d, ok = out[1].OccurredAt.Date(tokyo)
	require.True(t, ok)
	assert.Equal(t, "2024-05-10", d.String())

	assert.False(t, out[2].OccurredAt.Valid())
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	out := RenderMarkdown("**Calm** week.\n\n<script>alert(1)</script>\n\n- slept well\n- walked")

	assert.Contains(t, out, "<strong>Calm</strong>")
	assert.Contains(t, out, "<li>slept well</li>")
	assert.NotContains(t, out, "<script>")
}

func TestEntriesDigest(t *testing.T) {
	digest := entriesDigest([]Entry{
		{EntryDate: "2024-05-08", Title: "Monday", Content: "long day"},
		{EntryDate: "2024-05-09", Mood: "calm", Content: "better"},
	})

	assert.Contains(t, digest, "Mood: N/A")
	assert.Contains(t, digest, "Title: Monday")
	assert.Contains(t, digest, "Mood: calm\nEntry: better")
}

func TestWriteRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, writeRows(f, "Sheet1", [][]interface{}{
		{"Date", "Mood"},
		{"2024-05-09", "happy"},
	}))

	v, err := f.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "happy", v)
}

func TestHandlers_RequireViewer(t *testing.T) {
	app := fiber.New()
	h := NewJournalHandler(nil, nil, time.UTC)
	app.Get("/journal/entries", h.List)
	app.Get("/journal/heatmap", h.Heatmap)

	for _, path := range []string{"/journal/entries", "/journal/heatmap"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}
