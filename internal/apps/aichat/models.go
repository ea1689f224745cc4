package aichat

import (
	"time"

	"github.com/google/uuid"
)

// Message is one turn of a member's private conversation with the assistant.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_ai_messages_user_created,priority:1" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsUser    bool      `gorm:"not null" json:"is_user"`
	Failed    bool      `gorm:"default:false" json:"failed,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_ai_messages_user_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "ai_chat_messages" }

type SendRequest struct {
	Content string `json:"content"`
}

type SendResponse struct {
	UserMessage  Message `json:"user_message"`
	ReplyMessage Message `json:"reply"`
}
