// File: internal/services/generation/config.go
package generation

import (
	"errors"
	"time"
)

type Config struct {
	TopK            int
	Timeout         time.Duration
	MaxContextRunes int
}

func DefaultConfig() *Config {
	return &Config{
		TopK:            3,
		Timeout:         60 * time.Second,
		MaxContextRunes: 2000,
	}
}

func (c *Config) Validate() error {
	if c.TopK < 0 {
		return errors.New("top-k cannot be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("generation timeout must be positive")
	}
	return nil
}
