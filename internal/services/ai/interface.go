// File: internal/services/ai/interface.go
package ai

import "context"

// Logger matches the service-wide logging contract.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// EmbeddingProvider turns text into a vector for document retrieval.
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CompletionProvider produces free text for a prompt.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
