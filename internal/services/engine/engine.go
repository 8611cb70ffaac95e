// File: internal/services/engine/engine.go
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/iyunix/go-lifexia/internal/formatter"
	"github.com/iyunix/go-lifexia/internal/intent"
	"github.com/iyunix/go-lifexia/internal/resolver"
)

// ErrEmptyQuestion is the only error Resolve returns.
var ErrEmptyQuestion = errors.New("question is empty")

// Branch names the tier that produced an answer.
type Branch string

const (
	BranchDrug      Branch = "drug"
	BranchIntent    Branch = "intent"
	BranchGenerated Branch = "generated"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Generator answers questions outside the verified store. Implementations
// must always return usable text.
type Generator interface {
	Generate(ctx context.Context, question, conversation string) string
}

// Query is one question plus the caller's context. Sender identifies the
// channel user for logging only.
type Query struct {
	Question string
	Audience domain.Audience
	Context  string
	Sender   string
}

type Result struct {
	Text    string
	Branch  Branch
	DrugKey string
	Stage   resolver.Stage
	Intent  intent.Intent
}

// Engine applies the tiered policy: verified drug facts first, then fixed
// intents, then generation. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	resolver   *resolver.Resolver
	classifier *intent.Classifier
	generator  Generator
	logger     Logger
}

func New(r *resolver.Resolver, c *intent.Classifier, g Generator, logger Logger) *Engine {
	return &Engine{resolver: r, classifier: c, generator: g, logger: logger}
}

func (e *Engine) Resolve(ctx context.Context, q Query) (Result, error) {
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}
	start := time.Now()

	if rec, match, ok := e.resolver.Resolve(question); ok {
		e.logger.Info("resolved verified drug",
			"drug", match.Key, "stage", string(match.Stage), "audience", string(q.Audience), "sender", q.Sender)
		return Result{
			Text:    formatter.Format(rec, q.Audience),
			Branch:  BranchDrug,
			DrugKey: match.Key,
			Stage:   match.Stage,
		}, nil
	}

	if in, text, ok := e.classifier.Match(question); ok {
		e.logger.Info("matched intent", "intent", string(in), "sender", q.Sender)
		return Result{Text: text, Branch: BranchIntent, Intent: in}, nil
	}

	text := e.generator.Generate(ctx, question, q.Context)
	e.logger.Info("generated fallback answer",
		"sender", q.Sender, "elapsed", time.Since(start).String())
	return Result{Text: text, Branch: BranchGenerated}, nil
}
