package journal

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type JournalPlugin struct {
	llm    services.TextGenerator
	filter ContentFilter
}

func New(llm services.TextGenerator, filter ContentFilter) *JournalPlugin {
	return &JournalPlugin{llm: llm, filter: filter}
}

func (p *JournalPlugin) ID() string { return "journal" }

func (p *JournalPlugin) Models() []interface{} {
	return []interface{}{
		&Entry{},
		&MoodSession{},
		&WeeklySummary{},
	}
}

func (p *JournalPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	loc := cfg.Location()
	journalService := NewJournalService(db, p.filter)
	summaryService := NewSummaryService(db, journalService, p.llm, loc)
	h := NewJournalHandler(journalService, summaryService, loc)

	// Entries
	router.Get("/journal/entries", h.List)
	router.Post("/journal/entries", h.Create)
	router.Get("/journal/entries/:id", h.Get)
	router.Put("/journal/entries/:id", h.Update)
	router.Delete("/journal/entries/:id", h.Delete)

	// Insights
	router.Get("/journal/heatmap", h.Heatmap)
	router.Get("/journal/analytics", h.Analytics)
	router.Get("/journal/export", h.Export)
	router.Get("/journal/summary", h.Summary)
	router.Post("/journal/summary", h.RefreshSummary)

	// Mood check-ins
	router.Post("/journal/sessions", h.RecordMood)
	router.Get("/journal/sessions/should-ask", h.ShouldAsk)
}

// Summaries builds the batch summarizer used by the jobs binary.
func Summaries(db *gorm.DB, llm services.TextGenerator, loc *time.Location) *SummaryService {
	return NewSummaryService(db, NewJournalService(db, nil), llm, loc)
}
