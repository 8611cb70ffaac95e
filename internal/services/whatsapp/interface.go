// File: internal/services/whatsapp/interface.go
package whatsapp

import (
	"context"
	"time"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Sender delivers a plain text message and returns the provider message id.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// WindowStatus describes the free-form reply window for one number.
type WindowStatus struct {
	Open        bool          `json:"window_open"`
	LastMessage time.Time     `json:"last_message,omitempty"`
	Remaining   time.Duration `json:"-"`
}

// WindowTracker records inbound activity per sender.
type WindowTracker interface {
	Record(ctx context.Context, number string) error
	Status(ctx context.Context, number string) (WindowStatus, error)
}
