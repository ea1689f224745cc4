package feed

import (
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FeedPlugin struct {
	mod Moderator
}

func New(mod Moderator) *FeedPlugin {
	return &FeedPlugin{mod: mod}
}

func (p *FeedPlugin) ID() string { return "feed" }

func (p *FeedPlugin) Models() []interface{} {
	return []interface{}{
		&Post{},
		&Comment{},
	}
}

func (p *FeedPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewFeedHandler(NewPostService(db, p.mod))

	router.Get("/feed/posts", h.List)
	router.Post("/feed/posts", h.Create)
	router.Post("/feed/posts/:id/like", h.ToggleLike)
	router.Get("/feed/posts/:id/comments", h.ListComments)
	router.Post("/feed/posts/:id/comments", h.AddComment)
}

func (p *FeedPlugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewFeedHandler(NewPostService(db, p.mod))

	router.Get("/feed/flagged", h.ListFlagged)
	router.Delete("/feed/flagged/:id", h.DeleteFlagged)
	router.Post("/feed/flagged/:id/restore", h.RestoreFlagged)
	router.Post("/feed/review", h.Review)
}
