package main

import (
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps/feed"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/apps/journal"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
)

type ModerateCmd struct {
	Limit int `help:"Maximum posts to review in one run." default:"500"`
}

func (c *ModerateCmd) Run(env *Env) error {
	if c.Limit < 1 {
		return fmt.Errorf("--limit must be positive")
	}
	posts := feed.NewPostService(database.DB, services.NewModerationService(database.DB, env.LLM))

	result, err := posts.ReviewPending(env.Ctx, c.Limit)
	if result != nil {
		slog.Info("moderation run finished", "reviewed", result.Reviewed, "published", result.Published, "flagged", result.Flagged)
		fmt.Printf("reviewed %d posts: %d published, %d flagged\n", result.Reviewed, result.Published, result.Flagged)
	}
	return err
}

type SummarizeCmd struct {
	Concurrency int `help:"Summaries generated in parallel." default:"4"`
}

func (c *SummarizeCmd) Run(env *Env) error {
	summaries := journal.Summaries(database.DB, env.LLM, env.Cfg.Location())

	done, failed, err := summaries.SummarizeAll(env.Ctx, c.Concurrency)
	if err != nil {
		return err
	}
	slog.Info("weekly summaries written", "done", done, "failed", failed)
	fmt.Printf("summaries: %d written, %d failed\n", done, failed)
	if failed > 0 && done == 0 {
		return fmt.Errorf("every summary failed")
	}
	return nil
}
