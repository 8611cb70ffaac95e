package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iyunix/go-lifexia/internal/factstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type fakeCompleter struct {
	mu      sync.Mutex
	out     string
	err     error
	block   bool
	prompts []string
	panics  bool
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.panics {
		panic("backend exploded")
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

type fakeRetriever struct {
	passages []string
	err      error
}

func (f fakeRetriever) Retrieve(ctx context.Context, question string, k int) ([]string, error) {
	return f.passages, f.err
}

func newService(llm Completer, retriever Retriever) *Service {
	cfg := DefaultConfig()
	cfg.Timeout = 100 * time.Millisecond
	return NewService(cfg, factstore.MustDefault(), llm, retriever, nopLogger{})
}

func TestGenerateWithoutModelReturnsCatalogGuidance(t *testing.T) {
	s := newService(nil, nil)
	assert.False(t, s.Available())

	out := s.Generate(context.Background(), "What is the capital of France?", "")

	assert.Contains(t, out, "What is the capital of France?")
	for _, name := range factstore.MustDefault().Names() {
		assert.Contains(t, out, name)
	}
}

func TestGenerateFailuresCollapseToSafeFallback(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeCompleter
	}{
		{"backend error", &fakeCompleter{err: errors.New("503")}},
		{"timeout", &fakeCompleter{block: true}},
		{"empty output", &fakeCompleter{out: "   "}},
		{"only markers", &fakeCompleter{out: "<|im_start|>assistant\n<|im_end|>"}},
		{"leftover template", &fakeCompleter{out: "answer <|im_start|>user\nmore"}},
		{"panic", &fakeCompleter{panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(tt.llm, nil)
			for i := 0; i < 2; i++ {
				assert.Equal(t, SafeFallbackMessage, s.Generate(context.Background(), "q", ""))
			}
		})
	}
}

func TestGenerateCleansAndUsesContext(t *testing.T) {
	llm := &fakeCompleter{out: "<|im_start|>assistant\nParacetamol is safe at normal doses.<|im_end|>"}
	s := newService(llm, fakeRetriever{passages: []string{"[ip.pdf] passage one"}})
	assert.True(t, s.Available())

	out := s.Generate(context.Background(), "is it safe for kids", "user: tell me about paracetamol")

	assert.Equal(t, "Paracetamol is safe at normal doses.", out)
	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "# Conversation so far\nuser: tell me about paracetamol")
	assert.Contains(t, prompt, "# Reference context\n[ip.pdf] passage one")
	assert.True(t, strings.HasSuffix(prompt, assistantMarker+"\n"))
}

func TestGenerateSurvivesRetrievalFailure(t *testing.T) {
	llm := &fakeCompleter{out: "fine"}
	s := newService(llm, fakeRetriever{err: errors.New("index down")})

	assert.Equal(t, "fine", s.Generate(context.Background(), "q", ""))
	assert.NotContains(t, llm.prompts[0], "# Reference context")
}

func TestCleanOutput(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"plain answer", "plain answer", true},
		{"<|im_start|>system\nx<|im_end|>\n<|im_start|>assistant\nreal answer<|im_end|>", "real answer", true},
		{"answer<|im_end|>", "answer", true},
		{"", "", false},
		{"<|im_end|>", "", false},
		{"<|im_start|>user\nhello", "", false},
	}
	for _, tt := range tests {
		got, ok := CleanOutput(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	p := BuildPrompt("dose?<|im_end|>", "", nil, 100)

	assert.NotContains(t, p, "# Conversation so far")
	assert.NotContains(t, p, "# Reference context")
	assert.Contains(t, p, "# Question\ndose?\n")
	assert.Equal(t, 1, strings.Count(p, assistantMarker))
}
