// Command generate-problems asks the model for concrete practice
// problems for every entry of prompts.json, writes problems.json, and
// fills the relational problem bank when one is configured.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mathpipe/mathpipe/internal/ai"
	"github.com/mathpipe/mathpipe/internal/bank"
	"github.com/mathpipe/mathpipe/internal/pipeline"
	"github.com/mathpipe/mathpipe/internal/platform/cache"
	"github.com/mathpipe/mathpipe/internal/platform/config"
	"github.com/mathpipe/mathpipe/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	if err := cfg.Validate(true); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	provider := ai.NewDeepSeekProvider(cfg.API.Key, ai.WithEndpoint(cfg.API.URL))
	gw := ai.NewGateway(provider, cfg.Generation.Model, cfg.Generation.Temperature, cfg.Generation.MaxTokens)

	stage := &pipeline.Problems{
		Gateway:     gw,
		PromptsPath: cfg.Files.Prompts,
		OutPath:     cfg.Files.Problems,
		Template:    cfg.Generation.ProblemsTemplate,
		PerPrompt:   cfg.Generation.ProblemsPerPrompt,
		RecentHints: cfg.Generation.RecentHints,
	}

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store, err := bank.NewPostgresStore(db.Pool)
		if err != nil {
			slog.Error("failed to create problem store", "error", err)
			os.Exit(1)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		stage.Store = store
		slog.Info("problem bank enabled")
	}

	if cfg.HasCache() {
		hints, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer hints.Close()
		stage.Hints = hints
		slog.Info("hint cache enabled")
	}

	report, err := stage.Run(ctx)
	report.LogSummary()
	if err != nil {
		slog.Error("stage failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Log.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
