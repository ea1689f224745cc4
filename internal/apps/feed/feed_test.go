package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModerator struct {
	mock.Mock
}

func (m *mockModerator) FilterContent(text string) (bool, string) {
	args := m.Called(text)
	return args.Bool(0), args.String(1)
}

func (m *mockModerator) GetRejectionMessage(reason string) string {
	return m.Called(reason).String(0)
}

func (m *mockModerator) ReviewPost(ctx context.Context, title, content string) services.Verdict {
	return m.Called(title, content).Get(0).(services.Verdict)
}

func (m *mockModerator) GetBlockedIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func TestToggle(t *testing.T) {
	list, liked := toggle(nil, "a")
	assert.True(t, liked)
	assert.Equal(t, []string{"a"}, list)

	list, liked = toggle([]string{"b", "a", "c"}, "a")
	assert.False(t, liked)
	assert.Equal(t, []string{"b", "c"}, list)
}

func TestApplyVerdict(t *testing.T) {
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	post := &Post{Status: StatusPending}
	require.NoError(t, applyVerdict(post, services.Verdict{Reason: "None", Severity: "None"}, at))
	assert.Equal(t, StatusPublished, post.Status)
	require.NotNil(t, post.ReviewedAt)
	assert.Equal(t, at, *post.ReviewedAt)

	require.NoError(t, applyVerdict(post, services.VerificationError, at))
	assert.Equal(t, StatusFlagged, post.Status)

	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(post.Verdict, &stored))
	assert.Equal(t, true, stored["isFlagged"])
	assert.Equal(t, "Verification Error", stored["reason"])
	assert.Equal(t, "Unknown", stored["severity"])
}

func TestCreate_RejectedByFilter(t *testing.T) {
	mod := new(mockModerator)
	mod.On("FilterContent", "Hi\nbuy now at scam.example").Return(false, "url")
	mod.On("GetRejectionMessage", "url").Return("Links are not allowed.")

	svc := NewPostService(nil, mod)
	_, err := svc.Create(session.Viewer{UserID: uuid.New()}, CreatePostRequest{Title: "Hi", Content: "buy now at scam.example"})

	var rejected *RejectionError
	require.True(t, errors.As(err, &rejected))
	assert.ErrorIs(t, err, ErrPostRejected)
	assert.Equal(t, "Links are not allowed.", rejected.Message)
	mod.AssertExpectations(t)
}

func TestCreate_RequiresTitleAndContent(t *testing.T) {
	svc := NewPostService(nil, new(mockModerator))

	_, err := svc.Create(session.Viewer{}, CreatePostRequest{Title: "  ", Content: "body"})
	assert.ErrorIs(t, err, ErrEmptyPost)

	_, err = svc.Create(session.Viewer{}, CreatePostRequest{Title: "t", Content: strings.Repeat("x", maxContentLen+1)})
	assert.ErrorIs(t, err, ErrEmptyPost)
}

func TestAddComment_Empty(t *testing.T) {
	svc := NewPostService(nil, new(mockModerator))
	_, err := svc.AddComment(session.Viewer{}, uuid.New(), CreateCommentRequest{Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyComment)
}

func TestPostErrorMapping(t *testing.T) {
	app := fiber.New()
	app.Get("/:case", func(c *fiber.Ctx) error {
		switch c.Params("case") {
		case "rejected":
			return postError(c, &RejectionError{Err: ErrPostRejected, Message: "nope"})
		case "missing":
			return postError(c, ErrPostNotFound)
		case "notflagged":
			return postError(c, ErrNotFlagged)
		}
		return postError(c, errors.New("db down"))
	})

	cases := map[string]int{
		"rejected":   fiber.StatusUnprocessableEntity,
		"missing":    fiber.StatusNotFound,
		"notflagged": fiber.StatusConflict,
		"other":      fiber.StatusInternalServerError,
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/"+path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
