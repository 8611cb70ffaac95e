// File: internal/services/retrieval_service.go
package services

import (
	"context"
	"strings"

	"github.com/iyunix/go-lifexia/internal/services/generation"
	"github.com/iyunix/go-lifexia/internal/services/vectorindex"
)

// RetrievalService owns the optional document index.
type RetrievalService struct {
	index     vectorindex.Index
	retriever *vectorindex.Retriever
	logger    Logger
}

// NewRetrievalService connects to the configured index. With no provider
// or no embedder the service is disabled and Retriever returns nil.
func NewRetrievalService(config *vectorindex.Config, embedder vectorindex.Embedder, logger Logger) (*RetrievalService, error) {
	s := &RetrievalService{logger: logger}
	if !config.Enabled() {
		logger.Info("document index disabled")
		return s, nil
	}
	if embedder == nil {
		logger.Warn("document index configured without an embedding model, retrieval disabled", "provider", config.Provider)
		return s, nil
	}
	if err := config.Validate(); err != nil {
		return nil, vectorindex.NewConfigError(config.Provider, err.Error())
	}

	var (
		index vectorindex.Index
		err   error
	)
	switch strings.ToLower(config.Provider) {
	case vectorindex.ProviderQdrant:
		index, err = vectorindex.NewQdrantIndex(config, logger)
	case vectorindex.ProviderPinecone:
		index, err = vectorindex.NewPineconeIndex(config, logger)
	}
	if err != nil {
		return nil, err
	}

	s.index = index
	s.retriever = vectorindex.NewRetriever(embedder, index, logger)
	logger.Info("document index connected", "provider", config.Provider)
	return s, nil
}

func (s *RetrievalService) Retriever() generation.Retriever {
	if s.retriever == nil {
		return nil
	}
	return s.retriever
}

func (s *RetrievalService) HealthCheck(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	return s.index.HealthCheck(ctx)
}

func (s *RetrievalService) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}
