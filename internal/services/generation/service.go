// File: internal/services/generation/service.go
package generation

import (
	"context"
	"time"

	"github.com/iyunix/go-lifexia/internal/factstore"
)

// Service answers questions the verified store cannot. It never returns an
// error: every failure collapses into SafeFallbackMessage.
type Service struct {
	config    *Config
	names     []string
	llm       Completer
	retriever Retriever
	logger    Logger
}

// NewService takes nil for llm when no model is configured and nil for
// retriever when no document index is configured.
func NewService(config *Config, store *factstore.Store, llm Completer, retriever Retriever, logger Logger) *Service {
	return &Service{
		config:    config,
		names:     store.Names(),
		llm:       llm,
		retriever: retriever,
		logger:    logger,
	}
}

// Available reports whether a language model is configured.
func (s *Service) Available() bool {
	return s.llm != nil
}

func (s *Service) Generate(ctx context.Context, question, conversation string) (answer string) {
	if s.llm == nil {
		return CatalogGuidance(question, s.names)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("generation panicked", "panic", r)
			answer = SafeFallbackMessage
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	start := time.Now()

	var passages []string
	if s.retriever != nil && s.config.TopK > 0 {
		var err error
		passages, err = s.retriever.Retrieve(ctx, question, s.config.TopK)
		if err != nil {
			s.logger.Warn("retrieval failed, continuing without reference context", "error", err)
			passages = nil
		}
	}

	prompt := BuildPrompt(question, conversation, passages, s.config.MaxContextRunes)
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("completion failed", "error", err, "elapsed", time.Since(start).String())
		return SafeFallbackMessage
	}

	cleaned, ok := CleanOutput(raw)
	if !ok {
		s.logger.Warn("model returned unusable output", "raw_length", len(raw))
		return SafeFallbackMessage
	}

	s.logger.Info("generated answer", "passages", len(passages), "elapsed", time.Since(start).String())
	return cleaned
}
