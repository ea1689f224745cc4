package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestReviewPost(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  Verdict
	}{
		{
			name:  "clean",
			reply: `{"isFlagged": false, "reason": "None", "severity": "None"}`,
			want:  Verdict{IsFlagged: false, Reason: "None", Severity: "None"},
		},
		{
			name:  "fenced and flagged",
			reply: "```json\n{\"isFlagged\": true, \"reason\": \"Spam\", \"severity\": \"Low\"}\n```",
			want:  Verdict{IsFlagged: true, Reason: "Spam", Severity: "Low"},
		},
		{
			name:  "unknown labels normalized",
			reply: `{"isFlagged": true, "reason": "Rudeness", "severity": "Extreme"}`,
			want:  Verdict{IsFlagged: true, Reason: "Other", Severity: "Unknown"},
		},
		{
			name:  "unreadable reply",
			reply: "I think this post is fine.",
			want:  VerificationError,
		},
		{
			name: "provider error",
			err:  errors.New("timeout"),
			want: VerificationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mockGenerator)
			gen.On("Complete", mock.Anything, mock.MatchedBy(func(req CompletionRequest) bool {
				return len(req.Messages) == 2 &&
					req.Messages[0].Role == "system" &&
					req.Messages[1].Content == "Title: Hello\n\nContent: World"
			})).Return(tt.reply, tt.err).Once()

			ms := NewModerationService(nil, gen)
			got := ms.ReviewPost(context.Background(), "Hello", "World")

			assert.Equal(t, tt.want, got)
			gen.AssertExpectations(t)
		})
	}
}

func TestReviewPost_NoGenerator(t *testing.T) {
	ms := NewModerationService(nil, nil)
	assert.Equal(t, VerificationError, ms.ReviewPost(context.Background(), "t", "c"))
}

func TestFilterContent(t *testing.T) {
	ms := NewModerationService(nil, nil)

	tests := []struct {
		text   string
		ok     bool
		reason string
	}{
		{"Feeling a little better today", true, ""},
		{"", true, ""},
		{"visit www.example.com now", false, "url_not_allowed"},
		{"mail me at a@b.com", false, "contact_info_not_allowed"},
		{"call 555-123-4567", false, "contact_info_not_allowed"},
		{"this is a scam", false, "inappropriate_language"},
		{"sooooo tired", false, "spam_detected"},
		{"WHY WHY WHY ARE THINGS HAPPENING AGAIN", false, "excessive_caps"},
	}
	for _, tt := range tests {
		ok, reason := ms.FilterContent(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.reason, reason, tt.text)
	}
	assert.Equal(t, "URLs and web links are not allowed.", ms.GetRejectionMessage("url_not_allowed"))
}
