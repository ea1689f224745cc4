package wellness

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/breathing"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/stream"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline(t *testing.T) {
	resp, err := Timeline("box", 2)
	require.NoError(t, err)

	assert.Len(t, resp.Steps, 8)
	assert.Equal(t, 32*time.Second, resp.Total)
	assert.Equal(t, 2, resp.Steps[len(resp.Steps)-1].Cycle)

	_, err = Timeline("box", 0)
	assert.ErrorIs(t, err, ErrInvalidCycles)

	_, err = Timeline("nope", 1)
	assert.ErrorIs(t, err, breathing.ErrUnknownExercise)
}

func TestSummarize(t *testing.T) {
	loc := time.UTC
	today := calendar.DateOf(time.Date(2024, 5, 10, 12, 0, 0, 0, loc), loc)
	at := func(day int) time.Time { return time.Date(2024, 5, day, 8, 0, 0, 0, loc) }

	out := summarize([]BreathingLog{
		{ExerciseID: "box", DurationSeconds: 64, CompletedAt: at(6)},
		{ExerciseID: "calming", DurationSeconds: 40, CompletedAt: at(8)},
		{ExerciseID: "box", DurationSeconds: 64, CompletedAt: at(9)},
		{ExerciseID: "calming", DurationSeconds: 80, CompletedAt: at(9)},
		{ExerciseID: "box", DurationSeconds: 32, CompletedAt: at(10)},
	}, today, loc)

	assert.Equal(t, 5, out.Sessions)
	assert.Equal(t, 4, out.TotalMinutes)
	assert.Equal(t, 3, out.CurrentStreak)
	assert.Equal(t, 3, out.LongestStreak)
	assert.Equal(t, "box", out.Favorite)
}

func TestSummarize_Empty(t *testing.T) {
	out := summarize(nil, calendar.Today(time.UTC), time.UTC)
	assert.Equal(t, 0, out.Sessions)
	assert.Equal(t, 0, out.CurrentStreak)
	assert.Empty(t, out.Favorite)
}

func TestRunLive(t *testing.T) {
	clock := breathing.NewManualScheduler(time.Unix(0, 0))
	ex, err := breathing.Lookup("calming")
	require.NoError(t, err)

	var mu sync.Mutex
	var events []stream.Event
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(events)
	}
	emit := func(e stream.Event) bool {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
		return true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runLive(context.Background(), clock, ex, 1, emit)
	}()

	for want := 1; want <= 2; want++ {
		require.Eventually(t, func() bool { return count() == want && clock.Pending() == 1 }, 2*time.Second, time.Millisecond)
		require.True(t, clock.FireNext())
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("live session did not finish")
	}

	require.Len(t, events, 3)
	assert.Equal(t, "phase", events[0].Name)
	assert.Equal(t, breathing.Inhale, events[0].Data.(breathing.State).Phase)
	assert.Equal(t, breathing.Exhale, events[1].Data.(breathing.State).Phase)
	assert.Equal(t, "done", events[2].Name)
	final := events[2].Data.(breathing.State)
	assert.Equal(t, 1, final.CyclesCompleted)
	assert.False(t, final.Active)
	assert.Zero(t, clock.Pending())
}

func TestRunLive_StopsOnCancel(t *testing.T) {
	clock := breathing.NewManualScheduler(time.Unix(0, 0))
	ex, _ := breathing.Lookup("box")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runLive(ctx, clock, ex, 10, func(stream.Event) bool { return true })
	}()

	require.Eventually(t, func() bool { return clock.Pending() == 1 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("live session ignored cancellation")
	}
	assert.Zero(t, clock.Pending())
}

func TestHandlers(t *testing.T) {
	app := fiber.New()
	h := NewWellnessHandler(nil, breathing.SystemScheduler{}, time.UTC)
	app.Get("/exercises", h.Exercises)
	app.Get("/exercises/:id/timeline", h.Timeline)
	app.Post("/breathing", h.Log)

	resp, err := app.Test(httptest.NewRequest("GET", "/exercises", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	var list struct {
		Exercises []breathing.Exercise `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Exercises, len(breathing.Catalog()))

	resp, err = app.Test(httptest.NewRequest("GET", "/exercises/relaxing-478/timeline?cycles=1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/exercises/unknown/timeline", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/exercises/box/timeline?cycles=500", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/breathing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
