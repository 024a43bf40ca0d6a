package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/autobroker/internal/anthropic"
	"github.com/MikeSquared-Agency/autobroker/internal/api"
	"github.com/MikeSquared-Agency/autobroker/internal/chat"
	"github.com/MikeSquared-Agency/autobroker/internal/config"
	"github.com/MikeSquared-Agency/autobroker/internal/dedup"
	"github.com/MikeSquared-Agency/autobroker/internal/email"
	"github.com/MikeSquared-Agency/autobroker/internal/extractor"
	"github.com/MikeSquared-Agency/autobroker/internal/gemini"
	"github.com/MikeSquared-Agency/autobroker/internal/hermes"
	"github.com/MikeSquared-Agency/autobroker/internal/processor"
	"github.com/MikeSquared-Agency/autobroker/internal/slack"
	"github.com/MikeSquared-Agency/autobroker/internal/store"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
	"github.com/MikeSquared-Agency/autobroker/internal/trims"
	"github.com/MikeSquared-Agency/autobroker/internal/webhook"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	slog.Info("autobroker starting", "port", cfg.Port, "assistant", cfg.AssistantProvider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Webhook (optional: without a URL leads are persisted but not delivered)
	hook := webhook.NewClient(cfg.WebhookURL, cfg.WebhookTimeout, slog.Default())
	if !hook.Configured() {
		slog.Warn("WEBHOOK_URL not set, leads will not be delivered")
	}

	proc := processor.New(extractor.New(slog.Default()), email.NewGenerator(), hook, slog.Default())

	// Database (optional)
	var (
		archive api.LeadArchive
		deduper api.LeadDeduplicator
	)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		proc.WithStore(db)
		archive = db
		deduper = dedup.New(db.Pool(), slog.Default())
		slog.Info("database connected")
	}

	// NATS/Hermes (optional)
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		proc.WithPublisher(hermesClient)

		if err := hermesClient.Subscribe(hermes.SubjectConversationCompleted, proc.HandleConversationCompleted); err != nil {
			slog.Error("failed to subscribe to completed conversations", "error", err)
			os.Exit(1)
		}
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	// Slack poster (optional)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		proc.WithNotifier(slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default()))
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured, running without lead notifications")
	}

	// Sessions
	var sessions chat.SessionStore = chat.NewMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err := chat.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		sessions = chat.NewRedisStore(rdb, cfg.SessionTTL)
		slog.Info("redis session store ready", "ttl", cfg.SessionTTL)
	} else {
		slog.Warn("REDIS_URL not set, sessions are kept in memory")
	}

	assistant, closeAssistant, err := newAssistant(ctx, cfg)
	if err != nil {
		slog.Error("failed to create assistant", "error", err)
		os.Exit(1)
	}
	defer closeAssistant()

	var chatService api.ChatService
	if assistant != nil {
		chatService = chat.NewDriver(sessions, assistant, proc, transcript.Policy{MaxTurns: cfg.HistoryMaxTurns}, slog.Default())
	} else {
		slog.Warn("no assistant configured, chat endpoints disabled")
	}

	srv := api.NewServer(api.Options{
		Port:      cfg.Port,
		APIToken:  cfg.APIToken,
		Assistant: cfg.AssistantProvider,
		Chat:      chatService,
		Leads:     proc,
		Archive:   archive,
		Dedup:     deduper,
		Trims:     trims.NewTracker(),
		Logger:    slog.Default(),
	})

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("autobroker ready", "port", cfg.Port)

	if err := g.Wait(); err != nil {
		slog.Error("autobroker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("autobroker stopped")
}

// newAssistant builds the configured chat assistant. A nil assistant with a
// nil error means no API key is set.
func newAssistant(ctx context.Context, cfg config.Config) (chat.Assistant, func(), error) {
	noop := func() {}
	switch cfg.AssistantProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, noop, nil
		}
		p, err := gemini.NewProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		slog.Info("gemini assistant ready", "model", cfg.GeminiModel)
		return p, func() { p.Close() }, nil
	case "anthropic", "":
		if cfg.AnthropicAPIKey == "" {
			return nil, noop, nil
		}
		slog.Info("anthropic assistant ready", "model", cfg.AnthropicModel)
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown assistant provider %q", cfg.AssistantProvider)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
