package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

const roomChannelPrefix = "mindspace:chat:room:"

// MessageBus fans new chat messages out to every API instance.
type MessageBus struct {
	rdb *redis.Client
}

func NewMessageBus(rdb *redis.Client) *MessageBus {
	return &MessageBus{rdb: rdb}
}

func roomChannel(roomID string) string { return roomChannelPrefix + roomID }

func (b *MessageBus) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, roomChannel(msg.RoomID), payload).Err(); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Subscribe streams messages for roomID until ctx is done.
func (b *MessageBus) Subscribe(ctx context.Context, roomID string) (<-chan Message, error) {
	sub := b.rdb.Subscribe(ctx, roomChannel(roomID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe room: %w", err)
	}

	out := make(chan Message, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					slog.Warn("dropping unreadable chat message", "component", "chat", "room_id", roomID, "error", err.Error())
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
