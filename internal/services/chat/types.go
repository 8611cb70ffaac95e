// File: internal/services/chat/types.go
package chat

import (
	"time"

	"github.com/iyunix/go-lifexia/internal/domain"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Request is one user question arriving on a channel.
type Request struct {
	Message   string
	Audience  domain.Audience
	SessionID string
	UserID    string
	// Channel names the surface the request came from ("web", "whatsapp").
	Channel string
}

// Reply is what a channel sends back.
type Reply struct {
	Response  string    `json:"response"`
	SessionID string    `json:"session_id"`
	Branch    string    `json:"branch"`
	DrugKey   string    `json:"drug_key,omitempty"`
	Intent    string    `json:"intent,omitempty"`
	// MessageID is the answer's position in its session, not a global id.
	MessageID uint      `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}
