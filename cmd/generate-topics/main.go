// Command generate-topics asks the model for the flat topic list of the
// configured class and writes topics.json.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mathpipe/mathpipe/internal/ai"
	"github.com/mathpipe/mathpipe/internal/pipeline"
	"github.com/mathpipe/mathpipe/internal/platform/config"
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

	stage := &pipeline.Topics{
		Gateway:  gw,
		Class:    cfg.API.Topic,
		OutPath:  cfg.Files.Topics,
		Template: cfg.Generation.TopicsTemplate,
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
