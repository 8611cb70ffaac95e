//go:build wireinject
// +build wireinject

// File: cmd/server/wire.go
package main

import (
	"github.com/google/wire"

	"github.com/iyunix/go-lifexia/internal/config"
	"github.com/iyunix/go-lifexia/internal/handlers"
	"github.com/iyunix/go-lifexia/internal/intent"
	"github.com/iyunix/go-lifexia/internal/resolver"
	"github.com/iyunix/go-lifexia/internal/services"
)

func InitializeApplication(cfg *config.Config) (*Application, func(), error) {
	wire.Build(
		// Logging
		ProvideZap,
		ProvideLogger,
		ProvideHandlerLogger,

		// Verified catalog
		ProvideFactStore,
		resolver.New,
		intent.New,

		// Model backends and document index
		ProvideAIConfig,
		services.NewAIService,
		ProvideIndexConfig,
		ProvideRetrievalService,
		ProvideGenerationConfig,
		ProvideGenerator,
		ProvideEngine,

		// Conversation store
		ProvideRedisClient,
		ProvideConversationRepository,
		ProvideChatConfig,
		services.NewConversationService,

		// Core Services
		services.NewChatService,
		services.NewDrugService,

		// WhatsApp
		ProvideWhatsAppConfig,
		ProvideWindowTracker,
		ProvideDeduper,
		ProvideSender,
		services.NewWhatsAppService,

		// Handlers
		handlers.NewChatHandler,
		handlers.NewHistoryHandler,
		handlers.NewWebhookHandler,
		ProvideHealthHandler,
		wire.Struct(new(handlers.Routes), "*"),

		ProvideRateLimiter,

		// Application constructor
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
