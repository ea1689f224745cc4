package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	moderationHandler *handlers.ModerationHandler,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP. Event streams are exempt.
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAccept) == "text/event-stream"
		},
	}))

	api.Get("/health", healthHandler.Check)

	// Auth: stricter rate limit, 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required) - apply middleware to individual routes
	// This prevents JWT middleware from affecting public routes
	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, authHandler.Logout)
	api.Get("/auth/me", jwt, authHandler.Me)
	api.Put("/auth/me", jwt, authHandler.UpdateProfile)
	api.Delete("/auth/account", jwt, authHandler.DeleteAccount)
	api.Get("/mentors", jwt, authHandler.ListMentors)

	// Moderation: member endpoints
	api.Post("/reports", jwt, moderationHandler.CreateReport)
	api.Get("/blocks", jwt, moderationHandler.ListBlocked)
	api.Post("/blocks", jwt, moderationHandler.BlockUser)
	api.Delete("/blocks/:id", jwt, moderationHandler.UnblockUser)

	// Admin moderation panel (protected + admin required)
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/moderation/reports", moderationHandler.ListReports)
	admin.Put("/moderation/reports/:id", moderationHandler.ActionReport)

	// Plugin routes share one protected group mounted directly under /api, so
	// unknown /api paths answer 401 rather than 404 for anonymous callers.
	protected := api.Group("", jwt)
	for _, p := range plugins {
		p.RegisterRoutes(protected, db, cfg)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, db, cfg)
		}
	}
}
