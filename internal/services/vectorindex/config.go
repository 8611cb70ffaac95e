// File: internal/services/vectorindex/config.go
package vectorindex

import (
	"errors"
	"strings"
	"time"
)

const (
	ProviderNone     = "none"
	ProviderQdrant   = "qdrant"
	ProviderPinecone = "pinecone"
)

type Config struct {
	Provider string

	// Qdrant: host[:port] of the gRPC endpoint and the collection to search.
	// Pinecone: index host and namespace.
	Host       string
	APIKey     string
	Collection string
	UseTLS     bool

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Provider:   ProviderNone,
		UseTLS:     true,
		Timeout:    15 * time.Second,
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Enabled reports whether a document index should be built at all.
func (c *Config) Enabled() bool {
	p := strings.ToLower(c.Provider)
	return p == ProviderQdrant || p == ProviderPinecone
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "", ProviderNone:
		return nil
	case ProviderQdrant:
		if c.Collection == "" {
			return errors.New("qdrant collection name is required")
		}
	case ProviderPinecone:
		if c.APIKey == "" {
			return errors.New("pinecone API key is required")
		}
	default:
		return errors.New("unknown index provider: " + c.Provider)
	}

	if c.Host == "" {
		return errors.New("index host is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	return nil
}
