// File: internal/services/vectorindex/qdrant.go
package vectorindex

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

const defaultQdrantPort = 6334

// QdrantIndex searches a Qdrant collection over gRPC.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	retry      *RetryService
	logger     Logger
}

func NewQdrantIndex(config *Config, logger Logger) (*QdrantIndex, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(ProviderQdrant, err.Error())
	}

	host, port, err := splitHostPort(config.Host, defaultQdrantPort)
	if err != nil {
		return nil, NewConfigError(ProviderQdrant, err.Error())
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, NewConnectionError(ProviderQdrant, "failed to create client", err)
	}

	logger.Info("qdrant index initialized", "host", host, "port", port, "collection", config.Collection)
	return &QdrantIndex{
		client:     client,
		collection: config.Collection,
		retry:      NewRetryService(config, logger),
		logger:     logger,
	}, nil
}

func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	limit := uint64(topK)
	var points []*qdrant.ScoredPoint
	err := q.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		points, err = q.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: q.collection,
			Query:          qdrant.NewQuery(vector...),
			Limit:          &limit,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		return err
	})
	if err != nil {
		return nil, NewOperationError(ProviderQdrant, "query failed", err)
	}

	passages := make([]Passage, 0, len(points))
	for _, p := range points {
		if p == nil {
			continue
		}
		passages = append(passages, Passage{
			ID:      qdrantPointID(p.Id),
			Score:   p.Score,
			Text:    qdrantString(p.Payload, "text"),
			Source:  qdrantString(p.Payload, "source_file"),
			Heading: qdrantString(p.Payload, "section_heading"),
		})
	}
	return passages, nil
}

func (q *QdrantIndex) HealthCheck(ctx context.Context) error {
	if _, err := q.client.HealthCheck(ctx); err != nil {
		return NewConnectionError(ProviderQdrant, "health check failed", err)
	}
	return nil
}

func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

func qdrantPointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10)
	case *qdrant.PointId_Uuid:
		return v.Uuid
	default:
		return ""
	}
}

func qdrantString(payload map[string]*qdrant.Value, key string) string {
	value, ok := payload[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.Kind.(type) {
	case *qdrant.Value_StringValue:
		return v.StringValue
	case *qdrant.Value_IntegerValue:
		return strconv.FormatInt(v.IntegerValue, 10)
	case *qdrant.Value_DoubleValue:
		return strconv.FormatFloat(v.DoubleValue, 'f', -1, 64)
	case *qdrant.Value_BoolValue:
		return strconv.FormatBool(v.BoolValue)
	default:
		return ""
	}
}

func splitHostPort(addr string, defaultPort int) (string, int, error) {
	addr = strings.TrimPrefix(strings.TrimPrefix(addr, "https://"), "http://")
	addr = strings.TrimSuffix(addr, "/")
	if !strings.Contains(addr, ":") {
		return addr, defaultPort, nil
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
