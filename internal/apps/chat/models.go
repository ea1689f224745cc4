package chat

import (
	"time"

	"github.com/google/uuid"
)

// Room is a one-to-one conversation. Its ID is derived from the two member
// IDs so both sides resolve to the same row.
type Room struct {
	ID            string     `gorm:"size:80;primaryKey" json:"id"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	LastMessage   string     `gorm:"size:500" json:"last_message"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (Room) TableName() string { return "chat_rooms" }

type Member struct {
	RoomID   string    `gorm:"size:80;primaryKey" json:"room_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (Member) TableName() string { return "chat_members" }

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID     string    `gorm:"size:80;not null;index:idx_chat_messages_room_created,priority:1" json:"room_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	SenderName string    `gorm:"size:100" json:"sender_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index:idx_chat_messages_room_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

// --- DTOs ---

type OpenRoomRequest struct {
	PeerID string `json:"peer_id"`
}

type OpenRoomResponse struct {
	Room    Room `json:"room"`
	Created bool `json:"created"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type HeartbeatRequest struct {
	PhotoURL string `json:"photo_url"`
}
