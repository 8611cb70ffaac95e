package vectorindex

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

type fakeIndex struct {
	passages []Passage
	err      error
	gotK     int
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	f.gotK = topK
	return f.passages, f.err
}
func (f *fakeIndex) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeIndex) Close() error                          { return nil }

func TestRetrieverOrdersAndRenders(t *testing.T) {
	idx := &fakeIndex{passages: []Passage{
		{ID: "a", Score: 0.2, Text: "low"},
		{ID: "b", Score: 0.9, Text: "high", Source: "ip2022.pdf", Heading: "Analgesics"},
		{ID: "c", Score: 0.5, Text: "   "},
		{ID: "d", Score: 0.6, Text: "mid", Source: "nlem.pdf"},
	}}
	r := NewRetriever(fakeEmbedder{}, idx, nopLogger{})

	blocks, err := r.Retrieve(context.Background(), "paracetamol dose", 3)

	require.NoError(t, err)
	assert.Equal(t, 3, idx.gotK)
	assert.Equal(t, []string{
		"[ip2022.pdf / Analgesics] high",
		"[nlem.pdf] mid",
		"low",
	}, blocks)
}

func TestRetrieverPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewRetriever(fakeEmbedder{err: boom}, &fakeIndex{}, nopLogger{}).Retrieve(context.Background(), "q", 3)
	assert.ErrorIs(t, err, boom)

	_, err = NewRetriever(fakeEmbedder{}, &fakeIndex{err: boom}, nopLogger{}).Retrieve(context.Background(), "q", 3)
	assert.ErrorIs(t, err, boom)
}

func TestRetrieverTruncatesLongPassages(t *testing.T) {
	idx := &fakeIndex{passages: []Passage{{Score: 1, Text: strings.Repeat("x", maxPassageRunes+50)}}}
	blocks, err := NewRetriever(fakeEmbedder{}, idx, nopLogger{}).Retrieve(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Len(t, blocks[0], maxPassageRunes)
}

func TestQdrantPayloadHelpers(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"text":  {Kind: &qdrant.Value_StringValue{StringValue: "hello"}},
		"page":  {Kind: &qdrant.Value_IntegerValue{IntegerValue: 12}},
		"score": {Kind: &qdrant.Value_DoubleValue{DoubleValue: 0.5}},
		"ok":    {Kind: &qdrant.Value_BoolValue{BoolValue: true}},
	}
	assert.Equal(t, "hello", qdrantString(payload, "text"))
	assert.Equal(t, "12", qdrantString(payload, "page"))
	assert.Equal(t, "0.5", qdrantString(payload, "score"))
	assert.Equal(t, "true", qdrantString(payload, "ok"))
	assert.Equal(t, "", qdrantString(payload, "missing"))

	assert.Equal(t, "42", qdrantPointID(&qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: 42}}))
	assert.Equal(t, "abc", qdrantPointID(&qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: "abc"}}))
	assert.Equal(t, "", qdrantPointID(nil))
}

func TestStructString(t *testing.T) {
	md, err := structpb.NewStruct(map[string]interface{}{
		"text":  "chunk",
		"page":  3,
		"valid": false,
	})
	require.NoError(t, err)

	assert.Equal(t, "chunk", structString(md, "text"))
	assert.Equal(t, "3", structString(md, "page"))
	assert.Equal(t, "false", structString(md, "valid"))
	assert.Equal(t, "", structString(md, "missing"))
	assert.Equal(t, "", structString(nil, "text"))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"disabled", func(c *Config) {}, false},
		{"qdrant ok", func(c *Config) { c.Provider, c.Host, c.Collection = "qdrant", "localhost:6334", "docs" }, false},
		{"qdrant no collection", func(c *Config) { c.Provider, c.Host = "qdrant", "localhost" }, true},
		{"pinecone no key", func(c *Config) { c.Provider, c.Host = "pinecone", "idx.pinecone.io" }, true},
		{"pinecone no host", func(c *Config) { c.Provider, c.APIKey = "pinecone", "k" }, true},
		{"unknown", func(c *Config) { c.Provider = "milvus" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		in   string
		host string
		port int
	}{
		{"localhost", "localhost", defaultQdrantPort},
		{"localhost:7000", "localhost", 7000},
		{"https://abc.cloud.qdrant.io:6334/", "abc.cloud.qdrant.io", 6334},
	}
	for _, tt := range tests {
		host, port, err := splitHostPort(tt.in, defaultQdrantPort)
		require.NoError(t, err)
		assert.Equal(t, tt.host, host)
		assert.Equal(t, tt.port, port)
	}
}
