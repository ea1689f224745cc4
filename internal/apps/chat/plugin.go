package chat

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/presence"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ChatPlugin struct {
	guard Guard
	store *PresenceStore
	bus   *MessageBus
	feed  *presence.Feed
	relay *Relay
}

func New(rdb *redis.Client, guard Guard, cfg *config.Config) *ChatPlugin {
	store := NewPresenceStore(rdb)
	feed := presence.NewFeed()
	return &ChatPlugin{
		guard: guard,
		store: store,
		bus:   NewMessageBus(rdb),
		feed:  feed,
		relay: NewRelay(store, feed, cfg.PresenceWindow/4),
	}
}

func (p *ChatPlugin) ID() string { return "chat" }

func (p *ChatPlugin) Models() []interface{} {
	return []interface{}{
		&Room{},
		&Member{},
		&Message{},
	}
}

func (p *ChatPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewChatHandler(NewRoomService(db, p.guard, p.bus), p.store, p.bus, p.feed, cfg.PresenceWindow)

	// Rooms
	router.Post("/chat/rooms", h.OpenRoom)
	router.Get("/chat/rooms", h.ListRooms)
	router.Get("/chat/rooms/:id/messages", h.ListMessages)
	router.Post("/chat/rooms/:id/messages", h.Send)
	router.Get("/chat/rooms/:id/stream", h.StreamRoom)

	// Presence
	router.Post("/chat/presence/heartbeat", h.Heartbeat)
	router.Post("/chat/presence/offline", h.Offline)
	router.Get("/chat/presence/online", h.Online)
	router.Get("/chat/presence/stream", h.StreamPresence)
}

// Start relays presence changes into the in-process feed until ctx is done.
func (p *ChatPlugin) Start(ctx context.Context) error {
	return p.relay.Run(ctx)
}
