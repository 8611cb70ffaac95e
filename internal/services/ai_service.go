// File: internal/services/ai_service.go
package services

import (
	"context"
	"strings"

	"github.com/iyunix/go-lifexia/internal/services/ai"
	"github.com/iyunix/go-lifexia/internal/services/generation"
	"github.com/iyunix/go-lifexia/internal/services/vectorindex"
)

// AIService decides once, at startup, which model backends exist.
type AIService struct {
	config   *ai.Config
	provider *ai.OpenAIProvider
	logger   Logger
}

func NewAIService(config *ai.Config, logger Logger) *AIService {
	s := &AIService{config: config, logger: logger}
	if config.HasLLM() || config.HasEmbedding() {
		s.provider = ai.NewOpenAIProvider(config, logger)
	}
	logger.Info("AI backends configured",
		"llm", config.HasLLM(), "llm_model", config.LLMModel,
		"embedding", config.HasEmbedding(), "embedding_model", config.EmbeddingModel)
	return s
}

// Completer returns nil when no language model is configured.
func (s *AIService) Completer() generation.Completer {
	if s.provider == nil || !s.config.HasLLM() {
		return nil
	}
	return s.provider
}

// Embedder returns nil when no embedding model is configured.
func (s *AIService) Embedder() vectorindex.Embedder {
	if s.provider == nil || !s.config.HasEmbedding() {
		return nil
	}
	return s.provider
}

// HealthCheck sends a minimal prompt to the completion backend.
func (s *AIService) HealthCheck(ctx context.Context) error {
	llm := s.Completer()
	if llm == nil {
		return ai.NewConfigError("LLM backend is not configured")
	}
	out, err := llm.Complete(ctx, "Reply with the single word: ready")
	if err != nil {
		return err
	}
	s.logger.Debug("LLM health check reply", "reply", strings.TrimSpace(out))
	return nil
}
