// File: cmd/diagnostic/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/iyunix/go-lifexia/internal/config"
	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/iyunix/go-lifexia/internal/factstore"
	"github.com/iyunix/go-lifexia/internal/intent"
	"github.com/iyunix/go-lifexia/internal/resolver"
	"github.com/iyunix/go-lifexia/internal/services"
	"github.com/iyunix/go-lifexia/internal/services/ai"
	"github.com/iyunix/go-lifexia/internal/services/engine"
	"github.com/iyunix/go-lifexia/internal/services/generation"
	"github.com/iyunix/go-lifexia/internal/services/vectorindex"
)

func main() {
	question := flag.String("q", "Tell me about Paracetamol", "question to resolve")
	audience := flag.String("audience", "general-public", "general-public or clinical-student")
	checkLLM := flag.Bool("llm", false, "send a test prompt to the configured LLM")
	checkIndex := flag.Bool("index", false, "ping the configured document index")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	logger := services.NewLogger("diagnostic")

	store, err := loadStore(cfg.FactstorePath)
	if err != nil {
		log.Fatalf("❌ Drug dataset: %v", err)
	}
	fmt.Printf("✅ Drug dataset: %d drugs, %d aliases\n", store.Len(), len(store.Aliases()))

	aiConfig := ai.DefaultConfig()
	aiConfig.LLMKey, aiConfig.LLMBaseURL, aiConfig.LLMModel = cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel
	aiConfig.EmbeddingKey, aiConfig.EmbeddingBaseURL, aiConfig.EmbeddingModel = cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModelName
	aiConfig.Timeout = cfg.LLMTimeout
	aiService := services.NewAIService(aiConfig, logger)

	indexConfig := vectorindex.DefaultConfig()
	indexConfig.Provider = cfg.IndexProvider
	if cfg.IndexProvider == vectorindex.ProviderPinecone {
		indexConfig.Host, indexConfig.APIKey, indexConfig.Collection = cfg.PineconeIndexHost, cfg.PineconeAPIKey, cfg.PineconeNamespace
	} else {
		indexConfig.Host, indexConfig.APIKey, indexConfig.Collection = cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection
		indexConfig.UseTLS = cfg.QdrantUseTLS
	}
	retrieval, err := services.NewRetrievalService(indexConfig, aiService.Embedder(), logger)
	if err != nil {
		log.Fatalf("❌ Document index: %v", err)
	}
	defer func() { _ = retrieval.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	failed := false
	if *checkLLM {
		if err := aiService.HealthCheck(ctx); err != nil {
			fmt.Printf("❌ LLM: %v\n", err)
			failed = true
		} else {
			fmt.Printf("✅ LLM %s reachable\n", cfg.LLMModel)
		}
	}
	if *checkIndex {
		if err := retrieval.HealthCheck(ctx); err != nil {
			fmt.Printf("❌ Document index: %v\n", err)
			failed = true
		} else {
			fmt.Printf("✅ Document index (%s) reachable\n", cfg.IndexProvider)
		}
	}

	genConfig := generation.DefaultConfig()
	genConfig.TopK = cfg.RetrievalTopK
	genConfig.Timeout = cfg.LLMTimeout
	gen := generation.NewService(genConfig, store, aiService.Completer(), retrieval.Retriever(), logger)
	eng := engine.New(resolver.New(store), intent.New(store), gen, logger)

	start := time.Now()
	result, err := eng.Resolve(ctx, engine.Query{Question: *question, Audience: domain.ParseAudience(*audience)})
	if err != nil {
		log.Fatalf("❌ Resolve: %v", err)
	}
	fmt.Printf("✅ Branch: %s  drug: %q  stage: %q  intent: %q  (%s)\n",
		result.Branch, result.DrugKey, result.Stage, result.Intent, time.Since(start).Round(time.Millisecond))
	fmt.Println("--------------------------------------------------")
	fmt.Println(result.Text)

	if failed {
		os.Exit(1)
	}
}

func loadStore(path string) (*factstore.Store, error) {
	if path != "" {
		return factstore.LoadFile(path)
	}
	return factstore.Default()
}
