// File: internal/repository/conversation/factory.go
package conversation

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// StoreType selects the conversation backend.
type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeSQLite   StoreType = "sqlite"
	StoreTypePostgres StoreType = "postgres"
	StoreTypeRedis    StoreType = "redis"
)

var ErrInvalidConfig = errors.New("conversation store is missing a required client")

type storeConfig struct {
	db          *gorm.DB
	redisClient *redis.Client
	logger      Logger
}

type Option func(*storeConfig)

func WithDB(db *gorm.DB) Option {
	return func(c *storeConfig) { c.db = db }
}

func WithRedisClient(client *redis.Client) Option {
	return func(c *storeConfig) { c.redisClient = client }
}

func WithLogger(logger Logger) Option {
	return func(c *storeConfig) { c.logger = logger }
}

// NewRepository builds the backend named by storeType.
func NewRepository(storeType StoreType, opts ...Option) (Repository, error) {
	cfg := &storeConfig{logger: nopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory, "":
		return NewMemoryRepository(), nil
	case StoreTypeSQLite, StoreTypePostgres:
		if cfg.db == nil {
			return nil, ErrInvalidConfig
		}
		return NewGormRepository(cfg.db, cfg.logger)
	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return NewRedisRepository(cfg.redisClient, cfg.logger), nil
	default:
		return nil, fmt.Errorf("unknown conversation store %q", storeType)
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
