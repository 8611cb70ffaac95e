package engine

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/iyunix/go-lifexia/internal/factstore"
	"github.com/iyunix/go-lifexia/internal/formatter"
	"github.com/iyunix/go-lifexia/internal/intent"
	"github.com/iyunix/go-lifexia/internal/resolver"
	"github.com/iyunix/go-lifexia/internal/services/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type recordingGenerator struct {
	mu      sync.Mutex
	answer  string
	calls   int
	context []string
}

func (g *recordingGenerator) Generate(ctx context.Context, question, conversation string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.context = append(g.context, conversation)
	return g.answer
}

type failingCompleter struct{}

func (failingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "", context.DeadlineExceeded
}

func newEngine(gen Generator) (*Engine, *factstore.Store) {
	store := factstore.MustDefault()
	return New(resolver.New(store), intent.New(store), gen, nopLogger{}), store
}

func TestDrugAnswerForPublic(t *testing.T) {
	gen := &recordingGenerator{answer: "generated"}
	e, store := newEngine(gen)

	res, err := e.Resolve(context.Background(), Query{
		Question: "Tell me about Paracetamol",
		Audience: domain.AudienceGeneralPublic,
	})
	require.NoError(t, err)

	rec, _ := store.Get("paracetamol")
	assert.Equal(t, BranchDrug, res.Branch)
	assert.Equal(t, "paracetamol", res.DrugKey)
	assert.Equal(t, formatter.Format(rec, domain.AudienceGeneralPublic), res.Text)
	assert.Contains(t, res.Text, formatter.PublicDisclaimer)
	assert.Zero(t, gen.calls)
}

func TestBrandAliasForStudent(t *testing.T) {
	e, store := newEngine(&recordingGenerator{answer: "generated"})

	res, err := e.Resolve(context.Background(), Query{
		Question: "dolo 650 dosage",
		Audience: domain.AudienceClinicalStudent,
	})
	require.NoError(t, err)

	rec, _ := store.Get("paracetamol")
	assert.Equal(t, BranchDrug, res.Branch)
	assert.Equal(t, "paracetamol", res.DrugKey)
	assert.Equal(t, formatter.Format(rec, domain.AudienceClinicalStudent), res.Text)
	assert.Contains(t, res.Text, "Pharmacology")
}

func TestIntentAnswers(t *testing.T) {
	e, _ := newEngine(&recordingGenerator{answer: "generated"})

	tests := []struct {
		question string
		want     intent.Intent
	}{
		{"show me emergency drugs", intent.EmergencyDrugs},
		{"ambulance number please", intent.EmergencyContacts},
		{"how do I apply for ayushman card", intent.Scheme},
		{"hello", intent.Greeting},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			res, err := e.Resolve(context.Background(), Query{Question: tt.question})
			require.NoError(t, err)
			assert.Equal(t, BranchIntent, res.Branch)
			assert.Equal(t, tt.want, res.Intent)
			assert.NotEmpty(t, res.Text)
		})
	}
}

func TestEmergencyListMentionsEveryEmergencyDrug(t *testing.T) {
	e, store := newEngine(&recordingGenerator{answer: "generated"})

	res, err := e.Resolve(context.Background(), Query{Question: "emergency medicines"})
	require.NoError(t, err)
	require.Equal(t, BranchIntent, res.Branch)
	for _, rec := range store.EmergencyDrugs() {
		assert.Contains(t, res.Text, rec.Name)
	}
}

func TestDrugBeatsIntent(t *testing.T) {
	e, _ := newEngine(&recordingGenerator{answer: "generated"})

	res, err := e.Resolve(context.Background(), Query{Question: "hi, what is aspirin?"})
	require.NoError(t, err)
	assert.Equal(t, BranchDrug, res.Branch)
	assert.Equal(t, "aspirin", res.DrugKey)
}

func TestUnknownQuestionFallsThroughToGenerator(t *testing.T) {
	gen := &recordingGenerator{answer: "The capital of France is Paris."}
	e, _ := newEngine(gen)

	res, err := e.Resolve(context.Background(), Query{
		Question: "What is the capital of France?",
		Context:  "User: earlier question",
	})
	require.NoError(t, err)
	assert.Equal(t, BranchGenerated, res.Branch)
	assert.Equal(t, gen.answer, res.Text)
	assert.Equal(t, []string{"User: earlier question"}, gen.context)
}

func TestNoModelReturnsCatalogGuidance(t *testing.T) {
	store := factstore.MustDefault()
	gen := generation.NewService(generation.DefaultConfig(), store, nil, nil, nopLogger{})
	e := New(resolver.New(store), intent.New(store), gen, nopLogger{})

	res, err := e.Resolve(context.Background(), Query{Question: "What is the capital of France?"})
	require.NoError(t, err)
	assert.Equal(t, BranchGenerated, res.Branch)
	assert.Equal(t, generation.CatalogGuidance("What is the capital of France?", store.Names()), res.Text)
	for _, name := range store.Names() {
		assert.Contains(t, res.Text, name)
	}
}

func TestFailingModelIsIdempotent(t *testing.T) {
	store := factstore.MustDefault()
	gen := generation.NewService(generation.DefaultConfig(), store, failingCompleter{}, nil, nopLogger{})
	e := New(resolver.New(store), intent.New(store), gen, nopLogger{})

	for _, q := range []string{"why is the sky blue", "explain quantum tunnelling", "why is the sky blue"} {
		res, err := e.Resolve(context.Background(), Query{Question: q})
		require.NoError(t, err)
		assert.Equal(t, generation.SafeFallbackMessage, res.Text)
	}
}

func TestEmptyQuestion(t *testing.T) {
	gen := &recordingGenerator{answer: "x"}
	e, _ := newEngine(gen)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := e.Resolve(context.Background(), Query{Question: q})
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}
	assert.Zero(t, gen.calls)
}

func TestConcurrentResolve(t *testing.T) {
	e, _ := newEngine(&recordingGenerator{answer: "generated"})
	questions := []string{"tell me about insulin", "hello", "random chatter", "crocin for fever"}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			res, err := e.Resolve(context.Background(), Query{Question: q})
			assert.NoError(t, err)
			assert.False(t, strings.TrimSpace(res.Text) == "")
		}(questions[i%len(questions)])
	}
	wg.Wait()
}
