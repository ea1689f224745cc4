package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
)

// Env carries what every job needs once configuration is loaded.
type Env struct {
	Ctx context.Context
	Cfg *config.Config
	LLM services.TextGenerator
}

var CLI struct {
	Env string `help:"Optional .env file to load before reading the environment." type:"path" default:".env"`

	Moderate  ModerateCmd  `cmd:"" help:"Review community posts still awaiting moderation."`
	Summarize SummarizeCmd `cmd:"" help:"Write weekly journal summaries for every member."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("mindspace-jobs"),
		kong.Description("Batch jobs for the MindSpace backend"),
		kong.UsageOnError(),
	)

	_ = godotenv.Load(CLI.Env)
	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := database.Connect(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llm := services.NewLLMClientFromConfig(cfg)
	if !llm.Available() {
		slog.Warn("no AI provider configured")
	}

	if err := kctx.Run(&Env{Ctx: ctx, Cfg: cfg, LLM: llm}); err != nil {
		slog.Error("job failed", "command", kctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
