package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryWindow is how many days of writing a weekly summary covers.
const SummaryWindow = 7

const noEntriesSummary = "No journal entries from the last week to summarize."

var ErrSummaryNotFound = errors.New("no weekly summary yet")

const summaryPrompt = "You write a compassionate and insightful summary of a member's journal entries from the past week. " +
	"Start with the summary itself, no introduction. " +
	"Answer in plain Markdown using paragraphs, bold, italics and bullet lists only. " +
	"Highlight key themes, emotions and potential insights. Be supportive and encouraging."

type SummaryService struct {
	db      *gorm.DB
	journal *JournalService
	llm     services.TextGenerator
	loc     *time.Location
	now     func() time.Time
}

func NewSummaryService(db *gorm.DB, journal *JournalService, llm services.TextGenerator, loc *time.Location) *SummaryService {
	return &SummaryService{db: db, journal: journal, llm: llm, loc: loc, now: time.Now}
}

func (s *SummaryService) Latest(userID uuid.UUID) (*WeeklySummary, error) {
	var ws WeeklySummary
	if err := s.db.First(&ws, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// Generate writes a fresh summary of the last SummaryWindow days. When the
// model fails the previously stored summary is left untouched.
func (s *SummaryService) Generate(ctx context.Context, userID uuid.UUID) (*WeeklySummary, error) {
	today := calendar.DateOf(s.now(), s.loc)
	from := today.AddDays(-(SummaryWindow - 1))

	entries, err := s.journal.EntriesBetween(userID, from, today)
	if err != nil {
		return nil, err
	}

	md := noEntriesSummary
	if len(entries) > 0 {
		md, err = s.llm.Complete(ctx, services.CompletionRequest{
			Messages: []services.ChatMessage{
				{Role: "system", Content: summaryPrompt},
				{Role: "user", Content: "Journal entries:\n\n" + entriesDigest(entries)},
			},
			Temperature: 0.6,
			MaxTokens:   800,
		})
		if err != nil {
			return nil, fmt.Errorf("summary generation failed: %w", err)
		}
		md = services.StripCodeFence(md)
	}

	ws := WeeklySummary{
		UserID:      userID,
		Markdown:    md,
		HTML:        RenderMarkdown(md),
		EntryCount:  len(entries),
		PeriodStart: from.In(s.loc),
		PeriodEnd:   today.In(s.loc),
		GeneratedAt: s.now(),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&ws).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save weekly summary: %w", err)
	}
	return &ws, nil
}

// SummarizeAll regenerates summaries for every member with at least one
// entry, running up to concurrency generations at a time. Individual failures
// are logged and counted rather than aborting the batch.
func (s *SummaryService) SummarizeAll(ctx context.Context, concurrency int) (done, failed int, err error) {
	var users []uuid.UUID
	if err := s.db.Model(&Entry{}).Distinct("user_id").Pluck("user_id", &users).Error; err != nil {
		return 0, 0, err
	}

	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]error, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range users {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			_, results[i] = s.Generate(gctx, id)
			if results[i] != nil {
				slog.Warn("weekly summary failed", "component", "journal", "user_id", id.String(), "error", results[i].Error())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	for _, r := range results {
		if r != nil {
			failed++
		} else {
			done++
		}
	}
	return done, failed, nil
}

// RenderMarkdown converts model output to HTML. Raw HTML in the source is dropped.
func RenderMarkdown(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return strings.TrimSpace(string(markdown.ToHTML([]byte(md), p, r)))
}

func entriesDigest(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		m := e.Mood
		if m == "" {
			m = "N/A"
		}
		fmt.Fprintf(&b, "Date: %s\nMood: %s\n", e.EntryDate, m)
		if e.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", e.Title)
		}
		fmt.Fprintf(&b, "Entry: %s", e.Content)
	}
	return b.String()
}
