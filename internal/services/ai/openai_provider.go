// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
)

// OpenAIProvider talks to any OpenAI-compatible endpoint. Completion and
// embedding may live behind different base URLs and keys.
type OpenAIProvider struct {
	config          *Config
	llmClient       *openai.Client
	embeddingClient *openai.Client
	logger          Logger
}

func NewOpenAIProvider(config *Config, logger Logger) *OpenAIProvider {
	p := &OpenAIProvider{config: config, logger: logger}

	if config.LLMKey != "" {
		llmConfig := openai.DefaultConfig(config.LLMKey)
		if config.LLMBaseURL != "" {
			llmConfig.BaseURL = config.LLMBaseURL
		}
		p.llmClient = openai.NewClientWithConfig(llmConfig)
	}

	if config.EmbeddingKey != "" {
		embeddingConfig := openai.DefaultConfig(config.EmbeddingKey)
		if config.EmbeddingBaseURL != "" {
			embeddingConfig.BaseURL = config.EmbeddingBaseURL
		}
		p.embeddingClient = openai.NewClientWithConfig(embeddingConfig)
	}

	return p
}

// Complete sends the prompt as a single user message and returns the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.llmClient == nil {
		return "", NewConfigError("LLM backend is not configured")
	}

	var content string
	err := p.withRetry(ctx, "completion", func(ctx context.Context) error {
		resp, err := p.llmClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.config.LLMModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: p.config.Temperature,
			TopP:        p.config.TopP,
			MaxTokens:   p.config.MaxTokens,
		})
		if err != nil {
			return NewProviderError("completion", "failed to create completion", err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return newEmptyResponseError("completion", p.config.LLMModel)
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	return content, err
}

func (p *OpenAIProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if p.embeddingClient == nil {
		return nil, NewConfigError("embedding backend is not configured")
	}

	var vector []float32
	err := p.withRetry(ctx, "embedding", func(ctx context.Context) error {
		resp, err := p.embeddingClient.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		})
		if err != nil {
			return NewProviderError("embedding", "failed to create embedding", err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return newEmptyResponseError("embedding", p.config.EmbeddingModel)
		}
		vector = resp.Data[0].Embedding
		return nil
	})
	return vector, err
}

// withRetry retries provider failures with exponential backoff. Empty
// responses and context cancellation are returned immediately.
func (p *OpenAIProvider) withRetry(ctx context.Context, operation string, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(uint64(p.config.MaxRetries), retry.NewExponential(p.retryDelay()))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := call(ctx)
		if err == nil {
			return nil
		}
		var aiErr *AIError
		if ctx.Err() != nil || (errors.As(err, &aiErr) && aiErr.Type != ErrTypeProvider) {
			return err
		}
		p.logger.Warn("AI call failed, retrying", "operation", operation, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil && ctx.Err() != nil {
		return &AIError{Type: ErrTypeTimeout, Operation: operation, Message: "deadline exceeded", Cause: err}
	}
	return err
}

func (p *OpenAIProvider) retryDelay() time.Duration {
	if p.config.RetryDelay <= 0 {
		return 500 * time.Millisecond
	}
	return p.config.RetryDelay
}
