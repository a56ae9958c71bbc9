package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime configuration for the relay.
type Config struct {
	// Server
	Port        int      `env:"PORT" envDefault:"5000" validate:"min=1,max=65535"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string   `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Topic filter
	TopicName     string   `env:"TOPIC_NAME" envDefault:"astronomy"`
	TopicKeywords []string `env:"TOPIC_KEYWORDS" envSeparator:","` // empty means the built-in astronomy list

	// Upstream
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"gemini" validate:"oneof=gemini genai openai"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY" validate:"required_unless=LLMProvider openai"`
	GeminiBaseURL   string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta" validate:"required,url"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIKey       string        `env:"OPENAI_API_KEY" validate:"required_if=LLMProvider openai"`
	OpenAIModel     string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"0s" validate:"min=0s"` // 0 disables the timeout
	RecordTimeout   time.Duration `env:"RECORD_TIMEOUT" envDefault:"2s" validate:"min=0s"`   // bounds history writes and event publishes

	// Kept for parity with older deployments; only logged.
	ProjectID string `env:"PROJECT_ID"`
	Location  string `env:"LOCATION" envDefault:"global"`

	// Answer cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"none" validate:"oneof=none redis"`
	RedisAddr     string        `env:"REDIS_ADDR" validate:"required_if=CacheProvider redis"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h" validate:"min=0s"`

	// History
	HistoryProvider string `env:"HISTORY_PROVIDER" envDefault:"none" validate:"oneof=none postgres"`
	DBURL           string `env:"DB_URL" validate:"required_if=HistoryProvider postgres"`

	// Events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none" validate:"oneof=none nats"`
	NATSURL        string `env:"NATS_URL" validate:"required_if=EventsProvider nats"`
	EventsSubject  string `env:"EVENTS_SUBJECT" envDefault:"relay.asks"`
}

var validate = validator.New()

// Load reads configuration from environment variables with defaults.
// A malformed value is an error rather than a silent zero.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks provider choices and the settings each provider requires.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
