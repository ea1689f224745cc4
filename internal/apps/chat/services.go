package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/presence"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSelfChat        = errors.New("cannot start a chat with yourself")
	ErrPeerNotFound    = errors.New("peer not found")
	ErrBlocked         = errors.New("chat unavailable between these members")
	ErrNotMember       = errors.New("not a member of this room")
	ErrRoomNotFound    = errors.New("room not found")
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrMessageRejected = errors.New("message rejected by content filter")
)

const maxMessageLen = 2000

// Guard is the moderation surface chat depends on.
type Guard interface {
	FilterContent(text string) (bool, string)
	IsBlocked(a, b uuid.UUID) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

type RoomService struct {
	db    *gorm.DB
	guard Guard
	bus   Publisher
	now   func() time.Time
}

func NewRoomService(db *gorm.DB, guard Guard, bus Publisher) *RoomService {
	return &RoomService{db: db, guard: guard, bus: bus, now: time.Now}
}

// Open returns the room shared by the viewer and peerID, creating it on first
// contact. An existing room is returned untouched.
func (s *RoomService) Open(viewerID, peerID uuid.UUID) (*Room, bool, error) {
	if viewerID == peerID {
		return nil, false, ErrSelfChat
	}

	var peer models.User
	if err := s.db.Select("id").First(&peer, "id = ?", peerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrPeerNotFound
		}
		return nil, false, err
	}
	blocked, err := s.guard.IsBlocked(viewerID, peerID)
	if err != nil {
		return nil, false, err
	}
	if blocked {
		return nil, false, ErrBlocked
	}

	room := Room{ID: presence.RoomID(viewerID.String(), peerID.String()), CreatedBy: viewerID}
	created := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&room)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.First(&room, "id = ?", room.ID).Error
		}

		created = true
		members := []Member{{RoomID: room.ID, UserID: viewerID}, {RoomID: room.ID, UserID: peerID}}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to open room: %w", err)
	}
	return &room, created, nil
}

func (s *RoomService) ListRooms(userID uuid.UUID) ([]Room, error) {
	var rooms []Room
	err := s.db.
		Joins("JOIN chat_members ON chat_members.room_id = chat_rooms.id").
		Where("chat_members.user_id = ?", userID).
		Order("chat_rooms.last_message_at DESC NULLS LAST, chat_rooms.created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// ListMessages pages backwards from before (exclusive). A zero before starts
// at the newest message. Results are oldest first.
func (s *RoomService) ListMessages(userID uuid.UUID, roomID string, before time.Time, limit int) ([]Message, error) {
	if err := s.Authorize(roomID, userID); err != nil {
		return nil, err
	}

	q := s.db.Where("room_id = ?", roomID)
	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}

	var msgs []Message
	if err := q.Order("created_at DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *RoomService) Send(ctx context.Context, sender session.Viewer, roomID string, req SendMessageRequest) (*Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || len(content) > maxMessageLen {
		return nil, ErrEmptyMessage
	}
	if err := s.Authorize(roomID, sender.UserID); err != nil {
		return nil, err
	}
	if ok, _ := s.guard.FilterContent(content); !ok {
		return nil, ErrMessageRejected
	}

	msg := Message{
		ID:         uuid.New(),
		RoomID:     roomID,
		SenderID:   sender.UserID,
		SenderName: sender.DisplayName,
		Content:    content,
		CreatedAt:  s.now().UTC(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Room{}).Where("id = ?", roomID).Updates(map[string]interface{}{
			"last_message":    preview(content),
			"last_message_at": msg.CreatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRoomNotFound
		}
		return tx.Create(&msg).Error
	})
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, msg); err != nil {
			slog.Error("chat fan-out failed", "component", "chat", "room_id", roomID, "error", err)
		}
	}
	return &msg, nil
}

// Authorize admits userID to roomID only while neither participant blocks the
// other. Blocks added after the room was opened take effect here.
func (s *RoomService) Authorize(roomID string, userID uuid.UUID) error {
	if err := CanJoin(roomID, userID); err != nil {
		return err
	}
	a, b, _ := presence.Participants(roomID)
	first, err := uuid.Parse(a)
	if err != nil {
		return ErrRoomNotFound
	}
	second, err := uuid.Parse(b)
	if err != nil {
		return ErrRoomNotFound
	}
	blocked, err := s.guard.IsBlocked(first, second)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlocked
	}
	return nil
}

// CanJoin checks membership from the room ID alone.
func CanJoin(roomID string, userID uuid.UUID) error {
	if _, _, ok := presence.Participants(roomID); !ok {
		return ErrRoomNotFound
	}
	if !presence.Includes(roomID, userID.String()) {
		return ErrNotMember
	}
	return nil
}

func preview(s string) string {
	const n = 120
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
