// Command autobroker-replay runs saved conversation transcripts through
// extraction and email rendering, and optionally delivers them.
//
// Usage:
//
//	autobroker-replay --dir ./transcripts [--lang en] [--extended] [--deliver] [--workers 4]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/autobroker/internal/config"
	"github.com/MikeSquared-Agency/autobroker/internal/email"
	"github.com/MikeSquared-Agency/autobroker/internal/extractor"
	"github.com/MikeSquared-Agency/autobroker/internal/processor"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/replay"
	"github.com/MikeSquared-Agency/autobroker/internal/slack"
	"github.com/MikeSquared-Agency/autobroker/internal/store"
	"github.com/MikeSquared-Agency/autobroker/internal/webhook"
)

func main() {
	dirFlag := flag.String("dir", "", "Directory of .json/.jsonl transcripts")
	fileFlag := flag.String("file", "", "Replay a single transcript file")
	langFlag := flag.String("lang", "fr", "Conversation language (fr or en)")
	extendedFlag := flag.Bool("extended", false, "Transcripts follow the extended question sequence")
	deliverFlag := flag.Bool("deliver", false, "Deliver leads to the webhook instead of a dry run")
	workersFlag := flag.Int("workers", 4, "Transcripts processed concurrently")
	minTurnsFlag := flag.Int("min-turns", 1, "Skip transcripts with fewer user turns")
	stateFlag := flag.String("state", replay.DefaultStatePath, "Progress file for resumable runs")
	flag.Parse()

	if *dirFlag == "" && *fileFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: --dir or --file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hook := webhook.NewClient(cfg.WebhookURL, cfg.WebhookTimeout, logger)
	if *deliverFlag && !hook.Configured() {
		slog.Error("--deliver requires WEBHOOK_URL")
		os.Exit(1)
	}
	proc := processor.New(extractor.New(logger), email.NewGenerator(), hook, logger)

	if *deliverFlag && cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		proc.WithStore(db)
	}

	runner := replay.NewRunner(replay.Config{
		Dir:          *dirFlag,
		SingleFile:   *fileFlag,
		StatePath:    *stateFlag,
		Language:     profile.ParseLanguage(*langFlag),
		Extended:     *extendedFlag,
		Deliver:      *deliverFlag,
		Workers:      *workersFlag,
		MinUserTurns: *minTurnsFlag,
	}, proc, logger)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		runner.WithPoster(slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger))
	}

	results, err := runner.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	for _, res := range results {
		if encErr := enc.Encode(res); encErr != nil {
			slog.Error("failed to write result", "error", encErr)
		}
	}
	if err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}
}
