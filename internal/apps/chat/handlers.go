package chat

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/presence"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/stream"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

type ChatHandler struct {
	rooms  *RoomService
	store  *PresenceStore
	bus    *MessageBus
	feed   *presence.Feed
	window time.Duration
}

func NewChatHandler(rooms *RoomService, store *PresenceStore, bus *MessageBus, feed *presence.Feed, window time.Duration) *ChatHandler {
	return &ChatHandler{rooms: rooms, store: store, bus: bus, feed: feed, window: window}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": true, "message": msg})
}

func chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrSelfChat), errors.Is(err, ErrEmptyMessage):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrMessageRejected):
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrPeerNotFound), errors.Is(err, ErrRoomNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrBlocked):
		return fail(c, fiber.StatusForbidden, err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, "Something went wrong")
}

func (h *ChatHandler) OpenRoom(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	var req OpenRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	peerID, err := uuid.Parse(req.PeerID)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid peer ID")
	}

	room, created, err := h.rooms.Open(userID, peerID)
	if err != nil {
		return chatError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(OpenRoomResponse{Room: *room, Created: created})
}

func (h *ChatHandler) ListRooms(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	rooms, err := h.rooms.ListRooms(userID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch rooms")
	}
	return c.JSON(fiber.Map{"rooms": rooms})
}

func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var before time.Time
	if raw := c.Query("before"); raw != "" {
		if before, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return fail(c, fiber.StatusBadRequest, "before must be RFC 3339")
		}
	}

	msgs, err := h.rooms.ListMessages(userID, c.Params("id"), before, limit)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	viewer, err := session.ViewerFrom(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	msg, err := h.rooms.Send(c.UserContext(), viewer, c.Params("id"), req)
	if err != nil {
		return chatError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// StreamRoom pushes new messages in a room as "message" events.
func (h *ChatHandler) StreamRoom(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}
	roomID := utils.CopyString(c.Params("id"))
	if err := h.rooms.Authorize(roomID, userID); err != nil {
		return chatError(c, err)
	}

	return stream.Serve(c, stream.DefaultKeepAlive, func(ctx context.Context, emit stream.Emit) {
		msgs, err := h.bus.Subscribe(ctx, roomID)
		if err != nil {
			emit(stream.Event{Name: "error", Data: fiber.Map{"message": "stream unavailable"}})
			return
		}
		for msg := range msgs {
			if !emit(stream.Event{Name: "message", Data: msg}) {
				return
			}
		}
	})
}

func (h *ChatHandler) Heartbeat(c *fiber.Ctx) error {
	viewer, err := session.ViewerFrom(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	var req HeartbeatRequest
	_ = c.BodyParser(&req)

	rec, err := h.store.Heartbeat(c.UserContext(), viewer, req.PhotoURL)
	if err != nil {
		return fail(c, fiber.StatusServiceUnavailable, "Presence is unavailable")
	}
	return c.JSON(rec)
}

func (h *ChatHandler) Offline(c *fiber.Ctx) error {
	viewer, err := session.ViewerFrom(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	rec, err := h.store.SetOffline(c.UserContext(), viewer)
	if err != nil {
		return fail(c, fiber.StatusServiceUnavailable, "Presence is unavailable")
	}
	return c.JSON(rec)
}

// Online lists who else is online now, optionally only one role.
func (h *ChatHandler) Online(c *fiber.Ctx) error {
	viewer, err := session.ViewerFrom(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	records, err := h.store.All(c.UserContext())
	if err != nil {
		return fail(c, fiber.StatusServiceUnavailable, "Presence is unavailable")
	}
	online := presence.Reconcile(records, viewer.ID(), time.Now(), h.window)
	if role := c.Query("role"); role != "" {
		online = presence.OnlyRole(online, presence.Role(role))
	}
	return c.JSON(fiber.Map{"online": online, "count": len(online)})
}

// StreamPresence sends the reconciled online list as a "presence" event on
// every snapshot.
func (h *ChatHandler) StreamPresence(c *fiber.Ctx) error {
	viewer, err := session.ViewerFrom(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}
	role := presence.Role(utils.CopyString(c.Query("role")))

	return stream.Serve(c, stream.DefaultKeepAlive, func(ctx context.Context, emit stream.Emit) {
		updates := make(chan []presence.Record, 1)
		stop := presence.Watch(h.feed, viewer.ID(), h.window, time.Now, func(online []presence.Record) {
			if role != "" {
				online = presence.OnlyRole(online, role)
			}
			// keep only the newest view if the client falls behind
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- online:
			default:
			}
		})
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return
			case online := <-updates:
				if !emit(stream.Event{Name: "presence", Data: online}) {
					return
				}
			}
		}
	})
}
