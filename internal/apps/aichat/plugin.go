package aichat

import (
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AIChatPlugin struct {
	llm services.TextGenerator
}

func New(llm services.TextGenerator) *AIChatPlugin {
	return &AIChatPlugin{llm: llm}
}

func (p *AIChatPlugin) ID() string { return "aichat" }

func (p *AIChatPlugin) Models() []interface{} {
	return []interface{}{&Message{}}
}

func (p *AIChatPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := NewAssistantHandler(NewAssistantService(db, p.llm))

	router.Get("/ai-chat/messages", h.History)
	router.Post("/ai-chat/messages", h.Send)
	router.Delete("/ai-chat/messages", h.Clear)
}
