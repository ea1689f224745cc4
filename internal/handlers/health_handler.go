package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	plugins int
}

func NewHealthHandler(plugins int) *HealthHandler {
	return &HealthHandler{plugins: plugins}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}
	redisStatus := "ok"
	if err := database.PingRedis(c.UserContext()); err != nil {
		redisStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Redis:     redisStatus,
		Plugins:   h.plugins,
	})
}
