// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// Conversation context handed to the generative fallback
	ContextMessages     int
	ContextMessageRunes int

	MaxQuestionRunes int
	Timeout          time.Duration
}

func (c *Config) Validate() error {
	if c.ContextMessages < 0 {
		return fmt.Errorf("context_messages cannot be negative")
	}
	if c.ContextMessageRunes <= 0 {
		return fmt.Errorf("context_message_runes must be positive")
	}
	if c.MaxQuestionRunes <= 0 {
		return fmt.Errorf("max_question_runes must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ContextMessages:     5,
		ContextMessageRunes: 200,
		MaxQuestionRunes:    2000,
		Timeout:             90 * time.Second,
	}
}
