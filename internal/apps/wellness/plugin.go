package wellness

import (
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/breathing"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WellnessPlugin struct{}

func New() *WellnessPlugin {
	return &WellnessPlugin{}
}

func (p *WellnessPlugin) ID() string { return "wellness" }

func (p *WellnessPlugin) Models() []interface{} {
	return []interface{}{
		&BreathingLog{},
	}
}

func (p *WellnessPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewWellnessHandler(NewBreathingService(db), breathing.SystemScheduler{}, cfg.Location())

	// Exercises
	router.Get("/wellness/exercises", h.Exercises)
	router.Get("/wellness/exercises/:id", h.Exercise)
	router.Get("/wellness/exercises/:id/timeline", h.Timeline)
	router.Get("/wellness/exercises/:id/live", h.Live)

	// Practice log
	router.Post("/wellness/breathing", h.Log)
	router.Get("/wellness/breathing", h.History)
	router.Get("/wellness/overview", h.Overview)
}
