// File: internal/services/vectorindex/interface.go
package vectorindex

import "context"

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Passage is one retrieved chunk of reference text.
type Passage struct {
	ID      string
	Score   float32
	Text    string
	Source  string
	Heading string
}

// Index is a similarity search over pre-embedded reference passages.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Passage, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// Embedder produces the query vector for a question.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}
