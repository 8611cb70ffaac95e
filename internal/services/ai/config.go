// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	// Completion model
	LLMKey     string
	LLMBaseURL string
	LLMModel   string

	// Embedding model, used only when a document index is configured
	EmbeddingKey     string
	EmbeddingBaseURL string
	EmbeddingModel   string

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	Temperature float32
	TopP        float32
	MaxTokens   int
}

// HasLLM reports whether a completion backend is configured.
func (c *Config) HasLLM() bool {
	return c.LLMKey != "" && c.LLMModel != ""
}

// HasEmbedding reports whether an embedding backend is configured.
func (c *Config) HasEmbedding() bool {
	return c.EmbeddingKey != "" && c.EmbeddingModel != ""
}

func (c *Config) Validate() error {
	if !c.HasLLM() && !c.HasEmbedding() {
		return NewConfigError("neither LLM nor embedding backend is configured")
	}
	if c.Timeout <= 0 {
		return NewConfigError("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return NewConfigError(fmt.Sprintf("max retries cannot be negative, got %d", c.MaxRetries))
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     60 * time.Second,
		MaxRetries:  2,
		RetryDelay:  time.Second,
		Temperature: 0.1,
		TopP:        0.9,
		MaxTokens:   1024,
	}
}
