// File: internal/services/vectorindex/pinecone.go
package vectorindex

import (
	"context"
	"strconv"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeIndex searches a Pinecone serverless index by host.
type PineconeIndex struct {
	conn   *pinecone.IndexConnection
	retry  *RetryService
	logger Logger
}

func NewPineconeIndex(config *Config, logger Logger) (*PineconeIndex, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(ProviderPinecone, err.Error())
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: config.APIKey})
	if err != nil {
		return nil, NewConnectionError(ProviderPinecone, "failed to create client", err)
	}

	conn, err := pc.Index(pinecone.NewIndexConnParams{
		Host:      config.Host,
		Namespace: config.Collection,
	})
	if err != nil {
		return nil, NewConnectionError(ProviderPinecone, "failed to connect to index", err)
	}

	logger.Info("pinecone index initialized", "host", config.Host, "namespace", config.Collection)
	return &PineconeIndex{conn: conn, retry: NewRetryService(config, logger), logger: logger}, nil
}

func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	var resp *pinecone.QueryVectorsResponse
	err := p.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
			Vector:          vector,
			TopK:            uint32(topK),
			IncludeMetadata: true,
		})
		return err
	})
	if err != nil {
		return nil, NewOperationError(ProviderPinecone, "query failed", err)
	}

	passages := make([]Passage, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		passages = append(passages, Passage{
			ID:      m.Vector.Id,
			Score:   m.Score,
			Text:    structString(m.Vector.Metadata, "text"),
			Source:  structString(m.Vector.Metadata, "source_file"),
			Heading: structString(m.Vector.Metadata, "section_heading"),
		})
	}
	return passages, nil
}

func (p *PineconeIndex) HealthCheck(ctx context.Context) error {
	if _, err := p.conn.DescribeIndexStats(ctx); err != nil {
		return NewConnectionError(ProviderPinecone, "health check failed", err)
	}
	return nil
}

func (p *PineconeIndex) Close() error {
	return p.conn.Close()
}

func structString(md *structpb.Struct, key string) string {
	if md == nil {
		return ""
	}
	value, ok := md.GetFields()[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return v.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(v.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(v.BoolValue)
	default:
		return ""
	}
}
