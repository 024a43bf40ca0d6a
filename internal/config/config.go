package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port              int
	LogLevel          string
	NatsURL           string
	NatsToken         string
	DatabaseURL       string
	RedisURL          string
	AssistantProvider string
	AnthropicAPIKey   string
	AnthropicModel    string
	GeminiAPIKey      string
	GeminiModel       string
	WebhookURL        string
	WebhookTimeout    time.Duration
	SlackBotToken     string
	SlackChannel      string
	HistoryMaxTurns   int
	SessionTTL        time.Duration
	APIToken          string
}

// fileConfig mirrors the optional YAML overlay. ${VAR} references are
// expanded before parsing.
type fileConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	NATS     struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"nats"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		URL        string `yaml:"url"`
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"redis"`
	Assistant struct {
		Provider        string `yaml:"provider"`
		AnthropicAPIKey string `yaml:"anthropic_api_key"`
		AnthropicModel  string `yaml:"anthropic_model"`
		GeminiAPIKey    string `yaml:"gemini_api_key"`
		GeminiModel     string `yaml:"gemini_model"`
		HistoryMaxTurns int    `yaml:"history_max_turns"`
	} `yaml:"assistant"`
	Webhook struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"webhook"`
	Slack struct {
		BotToken string `yaml:"bot_token"`
		Channel  string `yaml:"leads_channel"`
	} `yaml:"slack"`
	APIToken string `yaml:"api_token"`
}

// Load builds the configuration from the environment. When AUTOBROKER_CONFIG
// names a YAML file its values replace the built-in defaults; environment
// variables still win over both.
func Load() (Config, error) {
	var f fileConfig
	if path := os.Getenv("AUTOBROKER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	webhookTimeout, err := fileDuration(f.Webhook.Timeout, 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("webhook.timeout: %w", err)
	}
	sessionTTL, err := fileDuration(f.Redis.SessionTTL, 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("redis.session_ttl: %w", err)
	}

	return Config{
		Port:              envInt("AUTOBROKER_PORT", orInt(f.Port, 8760)),
		LogLevel:          envStr("LOG_LEVEL", or(f.LogLevel, "info")),
		NatsURL:           envStr("NATS_URL", f.NATS.URL),
		NatsToken:         envStr("NATS_TOKEN", f.NATS.Token),
		DatabaseURL:       envStr("DATABASE_URL", f.Database.URL),
		RedisURL:          envStr("REDIS_URL", f.Redis.URL),
		AssistantProvider: envStr("ASSISTANT_PROVIDER", or(f.Assistant.Provider, "anthropic")),
		AnthropicAPIKey:   envStr("ANTHROPIC_API_KEY", f.Assistant.AnthropicAPIKey),
		AnthropicModel:    envStr("AUTOBROKER_MODEL", or(f.Assistant.AnthropicModel, "claude-sonnet-4-20250514")),
		GeminiAPIKey:      envStr("GEMINI_API_KEY", f.Assistant.GeminiAPIKey),
		GeminiModel:       envStr("GEMINI_MODEL", or(f.Assistant.GeminiModel, "gemini-1.5-flash")),
		WebhookURL:        envStr("WEBHOOK_URL", f.Webhook.URL),
		WebhookTimeout:    envDuration("WEBHOOK_TIMEOUT", webhookTimeout),
		SlackBotToken:     envStr("SLACK_BOT_TOKEN", f.Slack.BotToken),
		SlackChannel:      envStr("SLACK_LEADS_CHANNEL", f.Slack.Channel),
		HistoryMaxTurns:   envInt("HISTORY_MAX_TURNS", orInt(f.Assistant.HistoryMaxTurns, 50)),
		SessionTTL:        envDuration("SESSION_TTL", sessionTTL),
		APIToken:          envStr("AUTOBROKER_API_TOKEN", f.APIToken),
	}, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func fileDuration(v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func orInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}
