package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps/aichat"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps/chat"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps/feed"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps/journal"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps/wellness"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// Redis (presence + chat fan-out)
	if err := database.ConnectRedis(context.Background(), cfg); err != nil {
		slog.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetention, cleanupDone)

	// Services
	llm := services.NewLLMClientFromConfig(cfg)
	if !llm.Available() {
		slog.Warn("no AI provider configured; summaries, post review and AI chat will degrade")
	}
	authService := services.NewAuthService(database.DB, cfg)
	moderationService := services.NewModerationService(database.DB, llm)

	plugins := []apps.Plugin{
		journal.New(llm, moderationService),
		feed.New(moderationService),
		chat.New(database.Redis, moderationService, cfg),
		wellness.New(),
		aichat.New(llm),
	}

	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(len(plugins))
	moderationHandler := handlers.NewModerationHandler(moderationService, feed.NewPostService(database.DB, moderationService))

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, moderationHandler, plugins)

	// Background work owned by plugins
	runCtx, stopRunners := context.WithCancel(context.Background())
	var runners sync.WaitGroup
	for _, p := range plugins {
		r, ok := p.(apps.Runner)
		if !ok {
			continue
		}
		runners.Add(1)
		go func() {
			defer runners.Done()
			if err := r.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("plugin runner stopped", "plugin", r.ID(), "error", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stopRunners()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	runners.Wait()

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	database.Close()
	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
