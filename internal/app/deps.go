package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"astro-relay/internal/cache"
	"astro-relay/internal/config"
	"astro-relay/internal/events"
	"astro-relay/internal/history"
	"astro-relay/internal/llm"
	"astro-relay/internal/logger"
	"astro-relay/internal/topic"
)

// Deps bundles the runtime dependencies of the relay.
type Deps struct {
	Config  config.Config
	Log     *slog.Logger
	Topic   *topic.Filter
	LLM     llm.Client
	Cache   cache.Cache
	History history.Store
	Events  events.Publisher
}

// Close releases the connections held by optional components.
func (d Deps) Close() error {
	var errs []error
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.History != nil {
		errs = append(errs, d.History.Close())
	}
	if d.Events != nil {
		errs = append(errs, d.Events.Close())
	}
	return errors.Join(errs...)
}

// Build loads .env when present, then config, and wires shared components.
func Build(ctx context.Context) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	return BuildWith(ctx, cfg, log)
}

// BuildWith wires components from an already loaded config.
func BuildWith(ctx context.Context, cfg config.Config, log *slog.Logger) (Deps, error) {
	client, err := buildLLM(ctx, cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	h, err := buildHistory(cfg, log)
	if err != nil {
		_ = c.Close()
		return Deps{}, fmt.Errorf("failed to initialize history: %w", err)
	}
	ev, err := buildEvents(cfg, log)
	if err != nil {
		_ = c.Close()
		_ = h.Close()
		return Deps{}, fmt.Errorf("failed to initialize events: %w", err)
	}
	if cfg.ProjectID != "" {
		log.Info("deployment", "project_id", cfg.ProjectID, "location", cfg.Location)
	}
	return Deps{
		Config:  cfg,
		Log:     log,
		Topic:   buildTopic(cfg),
		LLM:     client,
		Cache:   c,
		History: h,
		Events:  ev,
	}, nil
}

func buildTopic(cfg config.Config) *topic.Filter {
	if len(cfg.TopicKeywords) == 0 {
		return topic.New(cfg.TopicName, topic.DefaultKeywords)
	}
	return topic.New(cfg.TopicName, cfg.TopicKeywords)
}

// UpstreamModel names the model answers are produced by; it scopes cache keys.
func UpstreamModel(cfg config.Config) string {
	if cfg.LLMProvider == "openai" {
		return "openai/" + cfg.OpenAIModel
	}
	return "gemini/" + cfg.GeminiModel
}

func buildLLM(ctx context.Context, cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		client, err := llm.NewGeminiClient(llm.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.UpstreamTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		log.Info("using Gemini REST client", "model", client.Model())
		return client, nil
	case "genai":
		client, err := llm.NewGenAIClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.UpstreamTimeout)
		if err != nil {
			return nil, err
		}
		log.Info("using GenAI SDK client", "model", cfg.GeminiModel)
		return client, nil
	case "openai":
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.OpenAIModel), cfg.UpstreamTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.OpenAIModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: gemini, genai, openai)", cfg.LLMProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "", "none":
		return cache.NewNoOpCache(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when CACHE_PROVIDER=redis")
		}
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		log.Info("using Redis answer cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}

func buildHistory(cfg config.Config, log *slog.Logger) (history.Store, error) {
	switch cfg.HistoryProvider {
	case "", "none":
		return history.NoOpStore{}, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when HISTORY_PROVIDER=postgres")
		}
		st, err := history.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres history store")
		return st, nil
	default:
		return nil, fmt.Errorf("invalid HISTORY_PROVIDER: %s (valid options: none, postgres)", cfg.HistoryProvider)
	}
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsProvider {
	case "", "none":
		return events.NoOpPublisher{}, nil
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when EVENTS_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("astro-relay"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS events", "subject", cfg.EventsSubject)
		return events.NewNATS(log, nc, cfg.EventsSubject), nil
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}
