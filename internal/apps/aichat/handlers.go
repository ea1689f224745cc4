package aichat

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AssistantHandler struct {
	svc *AssistantService
}

func NewAssistantHandler(svc *AssistantService) *AssistantHandler {
	return &AssistantHandler{svc: svc}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": true, "message": msg})
}

func (h *AssistantHandler) History(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	msgs, err := h.svc.History(userID, limit)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch chat history")
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

func (h *AssistantHandler) Send(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.svc.Send(c.UserContext(), userID, req)
	if errors.Is(err, ErrEmptyMessage) {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to send message")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AssistantHandler) Clear(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	n, err := h.svc.Clear(userID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to clear chat history")
	}
	return c.JSON(fiber.Map{"deleted": n})
}
