package feed

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FeedHandler struct {
	posts *PostService
}

func NewFeedHandler(posts *PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": true, "message": msg})
}

func postError(c *fiber.Ctx, err error) error {
	var rejected *RejectionError
	switch {
	case errors.As(err, &rejected):
		return fail(c, fiber.StatusUnprocessableEntity, rejected.Message)
	case errors.Is(err, ErrPostNotFound):
		return fail(c, fiber.StatusNotFound, "Post not found")
	case errors.Is(err, ErrNotFlagged):
		return fail(c, fiber.StatusConflict, "Post is not flagged")
	case errors.Is(err, ErrEmptyPost), errors.Is(err, ErrEmptyComment):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, "Something went wrong")
}

func page(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *FeedHandler) Create(c *fiber.Ctx) error {
	viewer, err := session.ViewerFrom(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	post, err := h.posts.Create(viewer, req)
	if err != nil {
		return postError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *FeedHandler) List(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	limit, offset := page(c)
	resp, err := h.posts.List(userID, limit, offset)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch feed")
	}
	return c.JSON(resp)
}

func (h *FeedHandler) ToggleLike(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}

	resp, err := h.posts.ToggleLike(userID, postID)
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(resp)
}

func (h *FeedHandler) AddComment(c *fiber.Ctx) error {
	viewer, err := session.ViewerFrom(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	comment, err := h.posts.AddComment(viewer, postID, req)
	if err != nil {
		return postError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *FeedHandler) ListComments(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}

	comments, err := h.posts.ListComments(postID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch comments")
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// --- Admin ---

func (h *FeedHandler) ListFlagged(c *fiber.Ctx) error {
	limit, offset := page(c)
	posts, total, err := h.posts.ListFlagged(limit, offset)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch flagged posts")
	}
	return c.JSON(fiber.Map{"posts": posts, "total": total, "limit": limit, "offset": offset})
}

func (h *FeedHandler) DeleteFlagged(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	if err := h.posts.DeleteFlagged(postID); err != nil {
		return postError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FeedHandler) RestoreFlagged(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid post ID")
	}
	post, err := h.posts.RestoreFlagged(postID)
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(post)
}

func (h *FeedHandler) Review(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	result, err := h.posts.ReviewPending(c.UserContext(), limit)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Review run failed")
	}
	return c.JSON(result)
}
