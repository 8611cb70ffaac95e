// File: cmd/server/providers.go
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iyunix/go-lifexia/internal/config"
	"github.com/iyunix/go-lifexia/internal/factstore"
	"github.com/iyunix/go-lifexia/internal/handlers"
	"github.com/iyunix/go-lifexia/internal/intent"
	"github.com/iyunix/go-lifexia/internal/ratelimit"
	"github.com/iyunix/go-lifexia/internal/repository/conversation"
	"github.com/iyunix/go-lifexia/internal/resolver"
	"github.com/iyunix/go-lifexia/internal/services"
	"github.com/iyunix/go-lifexia/internal/services/ai"
	chatservice "github.com/iyunix/go-lifexia/internal/services/chat"
	"github.com/iyunix/go-lifexia/internal/services/engine"
	"github.com/iyunix/go-lifexia/internal/services/generation"
	"github.com/iyunix/go-lifexia/internal/services/vectorindex"
	"github.com/iyunix/go-lifexia/internal/services/whatsapp"
)

// Application aggregates what main needs to serve and shut down.
type Application struct {
	Config  *config.Config
	Logger  services.Logger
	Routes  *handlers.Routes
	Limiter *ratelimit.MemoryRateLimiter
}

func ProvideZap(cfg *config.Config) (*zap.Logger, func(), error) {
	z, err := services.BuildZap(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return z, func() { _ = z.Sync() }, nil
}

func ProvideLogger(z *zap.Logger) services.Logger {
	return services.NewZapLogger(z, "lifexia")
}

func ProvideHandlerLogger(z *zap.Logger) handlers.Logger {
	return services.NewZapLogger(z, "lifexia").Named("http")
}

// ProvideFactStore loads FACTSTORE_PATH when set, else the embedded dataset.
func ProvideFactStore(cfg *config.Config, logger services.Logger) (*factstore.Store, error) {
	var (
		store *factstore.Store
		err   error
	)
	if cfg.FactstorePath != "" {
		store, err = factstore.LoadFile(cfg.FactstorePath)
	} else {
		store, err = factstore.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load drug dataset: %w", err)
	}
	logger.Info("drug dataset loaded", "drugs", store.Len(), "path", cfg.FactstorePath)
	return store, nil
}

func ProvideAIConfig(cfg *config.Config) *ai.Config {
	aiConfig := ai.DefaultConfig()
	aiConfig.LLMKey = cfg.LLMAPIKey
	aiConfig.LLMBaseURL = cfg.LLMBaseURL
	aiConfig.LLMModel = cfg.LLMModel
	aiConfig.Timeout = cfg.LLMTimeout
	aiConfig.EmbeddingKey = cfg.EmbeddingAPIKey
	aiConfig.EmbeddingBaseURL = cfg.EmbeddingBaseURL
	aiConfig.EmbeddingModel = cfg.EmbeddingModelName
	return aiConfig
}

func ProvideIndexConfig(cfg *config.Config) *vectorindex.Config {
	indexConfig := vectorindex.DefaultConfig()
	indexConfig.Provider = cfg.IndexProvider
	switch cfg.IndexProvider {
	case vectorindex.ProviderQdrant:
		indexConfig.Host = cfg.QdrantURL
		indexConfig.APIKey = cfg.QdrantAPIKey
		indexConfig.Collection = cfg.QdrantCollection
		indexConfig.UseTLS = cfg.QdrantUseTLS
	case vectorindex.ProviderPinecone:
		indexConfig.Host = cfg.PineconeIndexHost
		indexConfig.APIKey = cfg.PineconeAPIKey
		indexConfig.Collection = cfg.PineconeNamespace
	}
	return indexConfig
}

func ProvideRetrievalService(indexConfig *vectorindex.Config, aiService *services.AIService, logger services.Logger) (*services.RetrievalService, func(), error) {
	rs, err := services.NewRetrievalService(indexConfig, aiService.Embedder(), logger)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			logger.Warn("closing document index failed", "error", err)
		}
	}, nil
}

func ProvideGenerationConfig(cfg *config.Config) *generation.Config {
	genConfig := generation.DefaultConfig()
	genConfig.TopK = cfg.RetrievalTopK
	genConfig.Timeout = cfg.LLMTimeout
	return genConfig
}

func ProvideGenerator(genConfig *generation.Config, store *factstore.Store, aiService *services.AIService, rs *services.RetrievalService, logger services.Logger) *generation.Service {
	return generation.NewService(genConfig, store, aiService.Completer(), rs.Retriever(), logger)
}

func ProvideEngine(r *resolver.Resolver, c *intent.Classifier, g *generation.Service, logger services.Logger) *engine.Engine {
	return engine.New(r, c, g, logger)
}

func ProvideChatConfig(cfg *config.Config) *chatservice.Config {
	chatConfig := chatservice.DefaultConfig()
	chatConfig.ContextMessages = cfg.ContextTurns
	// Room for retrieval plus generation on top of the model timeout.
	chatConfig.Timeout = cfg.LLMTimeout + 30*time.Second
	return chatConfig
}

// ProvideRedisClient returns nil when REDIS_URL is unset.
func ProvideRedisClient(cfg *config.Config, logger services.Logger) (*redis.Client, func(), error) {
	if cfg.RedisURL == "" {
		return nil, func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("redis connected", "addr", opts.Addr)
	return client, func() { _ = client.Close() }, nil
}

func ProvideConversationRepository(cfg *config.Config, rc *redis.Client, logger services.Logger) (conversation.Repository, func(), error) {
	storeType := conversation.StoreType(cfg.ConversationStore)
	opts := []conversation.Option{conversation.WithLogger(logger), conversation.WithRedisClient(rc)}

	switch storeType {
	case conversation.StoreTypeSQLite, conversation.StoreTypePostgres:
		dsn := cfg.SQLitePath
		if storeType == conversation.StoreTypePostgres {
			dsn = cfg.DatabaseURL
		}
		db, err := conversation.OpenDatabase(storeType, dsn)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, conversation.WithDB(db))
	}

	repo, err := conversation.NewRepository(storeType, opts...)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("conversation store ready", "store", storeType)
	return repo, func() {
		if err := repo.Close(); err != nil {
			logger.Warn("closing conversation store failed", "error", err)
		}
	}, nil
}

func ProvideWhatsAppConfig(cfg *config.Config) *whatsapp.Config {
	waConfig := whatsapp.DefaultConfig()
	waConfig.AccessToken = cfg.WhatsAppAccessToken
	waConfig.PhoneNumberID = cfg.WhatsAppPhoneNumberID
	waConfig.VerifyToken = cfg.WhatsAppVerifyToken
	waConfig.AppSecret = cfg.WhatsAppAppSecret
	waConfig.Window = cfg.WhatsAppWindow
	return waConfig
}

// ProvideWindowTracker stores send windows in redis when a client exists.
func ProvideWindowTracker(waConfig *whatsapp.Config, rc *redis.Client) whatsapp.WindowTracker {
	if rc != nil {
		return whatsapp.NewRedisWindow(rc, waConfig.Window)
	}
	return whatsapp.NewMemoryWindow(waConfig.Window)
}

// ProvideDeduper shares seen message ids through redis when a client exists.
func ProvideDeduper(waConfig *whatsapp.Config, rc *redis.Client) whatsapp.Deduper {
	if rc != nil {
		return whatsapp.NewRedisDeduper(rc, waConfig.DedupeTTL)
	}
	return whatsapp.NewMemoryDeduper(waConfig.DedupeTTL)
}

// ProvideSender returns a nil Sender when outbound WhatsApp is not configured.
func ProvideSender(waConfig *whatsapp.Config, logger services.Logger) whatsapp.Sender {
	if !waConfig.Enabled() {
		logger.Warn("WhatsApp sending disabled: WHATSAPP_ACCESS_TOKEN or WHATSAPP_PHONE_NUMBER_ID not set")
		return nil
	}
	return whatsapp.NewCloudProvider(waConfig, logger)
}

func ProvideHealthHandler(store *factstore.Store, gen *generation.Service, rs *services.RetrievalService) *handlers.HealthHandler {
	checks := map[string]handlers.HealthCheck{
		"document_index": rs.HealthCheck,
		"llm": func(ctx context.Context) error {
			if !gen.Available() {
				return errors.New("not configured, answering from the catalog only")
			}
			return nil
		},
	}
	return handlers.NewHealthHandler(store.Len(), checks)
}

func ProvideRateLimiter(cfg *config.Config) (*ratelimit.MemoryRateLimiter, func()) {
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.ChatConfig(cfg.RateLimitPerMinute))
	return limiter, limiter.Close
}
