package journal

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type JournalHandler struct {
	journal  *JournalService
	summary  *SummaryService
	fallback *time.Location
}

func NewJournalHandler(journal *JournalService, summary *SummaryService, fallback *time.Location) *JournalHandler {
	return &JournalHandler{journal: journal, summary: summary, fallback: fallback}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": true, "message": msg})
}

func entryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return fail(c, fiber.StatusNotFound, "Journal entry not found")
	case errors.Is(err, ErrInvalidMood), errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrFutureDate), errors.Is(err, ErrEmptyEntry),
		errors.Is(err, ErrContentRejected):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, "Something went wrong")
}

func (h *JournalHandler) List(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	resp, err := h.journal.ListEntries(userID, limit, offset)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch journal entries")
	}
	return c.JSON(resp)
}

func (h *JournalHandler) Get(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}
	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid entry ID")
	}

	entry, err := h.journal.GetEntry(userID, entryID)
	if err != nil {
		return entryError(c, err)
	}
	return c.JSON(entry)
}

func (h *JournalHandler) Create(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	var req CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	entry, err := h.journal.CreateEntry(userID, session.Location(c, h.fallback), req)
	if err != nil {
		return entryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *JournalHandler) Update(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}
	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid entry ID")
	}

	var req UpdateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	entry, err := h.journal.UpdateEntry(userID, entryID, session.Location(c, h.fallback), req)
	if err != nil {
		return entryError(c, err)
	}
	return c.JSON(entry)
}

func (h *JournalHandler) Delete(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}
	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid entry ID")
	}

	if err := h.journal.DeleteEntry(userID, entryID); err != nil {
		return entryError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JournalHandler) Heatmap(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	resp, err := h.journal.Heatmap(userID, session.Location(c, h.fallback))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to build heatmap")
	}
	return c.JSON(resp)
}

func (h *JournalHandler) Analytics(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	resp, err := h.journal.Analytics(userID, session.Location(c, h.fallback))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to compute analytics")
	}
	return c.JSON(resp)
}

func (h *JournalHandler) Export(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	buf, err := h.journal.Export(userID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to export journal")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="mindspace-journal-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	return c.Send(buf.Bytes())
}

func (h *JournalHandler) RecordMood(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ms, err := h.journal.RecordSession(userID, req)
	if err != nil {
		return entryError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ms)
}

func (h *JournalHandler) ShouldAsk(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	resp, err := h.journal.ShouldAsk(userID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to check mood prompt")
	}
	return c.JSON(resp)
}

func (h *JournalHandler) Summary(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	ws, err := h.summary.Latest(userID)
	if errors.Is(err, ErrSummaryNotFound) {
		return fail(c, fiber.StatusNotFound, "No weekly summary yet")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch summary")
	}
	return c.JSON(ws)
}

func (h *JournalHandler) RefreshSummary(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	ws, err := h.summary.Generate(c.UserContext(), userID)
	if errors.Is(err, services.ErrLLMUnavailable) {
		return fail(c, fiber.StatusServiceUnavailable, "AI summaries are not configured")
	}
	if err != nil {
		return fail(c, fiber.StatusBadGateway, "Could not generate a summary right now")
	}
	return c.JSON(ws)
}
