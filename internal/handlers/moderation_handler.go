package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ReportFlagThreshold is how many open reports pull a feed post out of the
// feed and into the admin flagged queue.
const ReportFlagThreshold = 3

// Reports is the moderation surface the handler needs.
type Reports interface {
	CreateReport(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error)
	PendingReports(contentType, contentID string) (int64, error)
	ListReports(status, contentType string, limit, offset int) ([]models.Report, int64, error)
	ActionReport(reportID uuid.UUID, req *dto.ActionReportRequest) (*models.Report, error)
	BlockUser(blockerID, blockedID uuid.UUID) error
	UnblockUser(blockerID, blockedID uuid.UUID) error
	BlockedBy(userID uuid.UUID) ([]uuid.UUID, error)
}

// PostFlagger moves a reported feed post into the flagged queue.
type PostFlagger interface {
	FlagReported(postID uuid.UUID, reason string) error
}

type ModerationHandler struct {
	reports Reports
	posts   PostFlagger
}

// NewModerationHandler wires reports and blocks. posts may be nil, in which
// case post reports are only recorded.
func NewModerationHandler(reports Reports, posts PostFlagger) *ModerationHandler {
	return &ModerationHandler{reports: reports, posts: posts}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.reports.CreateReport(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidReport) {
			return badRequest(c, err.Error())
		}
		return internalError(c, "Failed to file report")
	}

	if report.ContentType == models.ReportPost {
		n, err := h.reports.PendingReports(models.ReportPost, report.ContentID)
		switch {
		case err != nil:
			slog.Error("report count failed", "component", "moderation", "post_id", report.ContentID, "error", err)
		case n >= ReportFlagThreshold:
			h.flagPost(report.ContentID, "Reported by members")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) BlockUser(c *fiber.Ctx) error {
	blockerID, err := session.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req dto.BlockUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	err = h.reports.BlockUser(blockerID, req.BlockedID)
	switch {
	case errors.Is(err, services.ErrSelfBlock), errors.Is(err, services.ErrAlreadyBlocked):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case err != nil:
		return internalError(c, "Failed to block user")
	}
	return c.JSON(fiber.Map{"message": "User blocked", "blocked_id": req.BlockedID})
}

func (h *ModerationHandler) UnblockUser(c *fiber.Ctx) error {
	blockerID, err := session.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	blockedID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	if err := h.reports.UnblockUser(blockerID, blockedID); err != nil {
		return internalError(c, "Failed to unblock user")
	}
	return c.JSON(fiber.Map{"message": "User unblocked", "blocked_id": blockedID})
}

func (h *ModerationHandler) ListBlocked(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	ids, err := h.reports.BlockedBy(userID)
	if err != nil {
		return internalError(c, "Failed to fetch blocked users")
	}
	return c.JSON(fiber.Map{"blocked_ids": ids})
}

// ListReports is the admin queue, filterable by status and content_type.
func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset = max(offset, 0)

	reports, total, err := h.reports.ListReports(c.Query("status"), c.Query("content_type"), limit, offset)
	if err != nil {
		return internalError(c, "Failed to fetch reports")
	}
	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// ActionReport settles a report. Actioning a post report also flags the post.
func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID")
	}

	var req dto.ActionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.reports.ActionReport(reportID, &req)
	switch {
	case errors.Is(err, services.ErrReportNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrInvalidReport):
		return badRequest(c, err.Error())
	case err != nil:
		return internalError(c, "Failed to update report")
	}

	if report.Status == models.ReportActioned && report.ContentType == models.ReportPost {
		reason := "Actioned report"
		if req.AdminNote != "" {
			reason = req.AdminNote
		}
		h.flagPost(report.ContentID, reason)
	}
	return c.JSON(report)
}

func (h *ModerationHandler) flagPost(rawID, reason string) {
	if h.posts == nil {
		return
	}
	postID, err := uuid.Parse(rawID)
	if err != nil {
		return
	}
	if err := h.posts.FlagReported(postID, reason); err != nil {
		slog.Warn("could not flag reported post", "component", "moderation", "post_id", rawID, "error", err)
	}
}
