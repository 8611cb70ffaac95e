// File: internal/services/generation/interface.go
package generation

import "context"

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Completer is the language-model backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever supplies reference passages for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]string, error)
}
