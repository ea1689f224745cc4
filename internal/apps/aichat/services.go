package aichat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmptyMessage = errors.New("message cannot be empty")

// Apology is stored as the reply whenever the assistant cannot answer.
const Apology = "Sorry, I encountered an error. Please try again later."

const (
	maxMessageLen = 4000
	contextTurns  = 12
)

const systemPrompt = "You are MindSpace's supportive companion. Listen carefully, respond with warmth and " +
	"without judgement, and keep answers short and practical. You are not a therapist: when someone " +
	"mentions self-harm or being in danger, encourage them to contact local emergency services or a crisis line."

type AssistantService struct {
	db  *gorm.DB
	llm services.TextGenerator
	now func() time.Time
}

func NewAssistantService(db *gorm.DB, llm services.TextGenerator) *AssistantService {
	return &AssistantService{db: db, llm: llm, now: time.Now}
}

// History returns the conversation oldest first.
func (s *AssistantService) History(userID uuid.UUID, limit int) ([]Message, error) {
	var msgs []Message
	err := s.db.Scopes(session.OwnedBy(userID)).Order("created_at DESC").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// Send stores the member's message and the assistant's reply. A failed
// completion still produces a stored reply carrying Apology.
func (s *AssistantService) Send(ctx context.Context, userID uuid.UUID, req SendRequest) (*SendResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || len(content) > maxMessageLen {
		return nil, ErrEmptyMessage
	}

	recent, err := s.History(userID, contextTurns)
	if err != nil {
		return nil, err
	}

	userMsg := Message{ID: uuid.New(), UserID: userID, Content: content, IsUser: true, CreatedAt: s.now().UTC()}
	if err := s.db.Create(&userMsg).Error; err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	reply := Message{ID: uuid.New(), UserID: userID}
	text, err := s.llm.Complete(ctx, services.CompletionRequest{
		Messages:    conversation(recent, content),
		Temperature: 0.7,
		MaxTokens:   600,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = services.ErrLLMEmptyReply
	}
	if err != nil {
		slog.Error("assistant reply failed", "component", "aichat", "user_id", userID.String(), "error", err)
		text = Apology
		reply.Failed = true
	}
	reply.Content = strings.TrimSpace(text)
	reply.CreatedAt = s.now().UTC()
	if !reply.CreatedAt.After(userMsg.CreatedAt) {
		reply.CreatedAt = userMsg.CreatedAt.Add(time.Microsecond)
	}
	if err := s.db.Create(&reply).Error; err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}

	return &SendResponse{UserMessage: userMsg, ReplyMessage: reply}, nil
}

func (s *AssistantService) Clear(userID uuid.UUID) (int64, error) {
	res := s.db.Scopes(session.OwnedBy(userID)).Delete(&Message{})
	return res.RowsAffected, res.Error
}

// conversation builds the prompt from prior turns. Failed replies are left
// out so the model never sees its own apology.
func conversation(history []Message, next string) []services.ChatMessage {
	out := make([]services.ChatMessage, 0, len(history)+2)
	out = append(out, services.ChatMessage{Role: "system", Content: systemPrompt})
	for _, m := range history {
		if m.Failed {
			continue
		}
		role := "assistant"
		if m.IsUser {
			role = "user"
		}
		out = append(out, services.ChatMessage{Role: role, Content: m.Content})
	}
	return append(out, services.ChatMessage{Role: "user", Content: next})
}

func reverse(msgs []Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
