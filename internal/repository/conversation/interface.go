// File: internal/repository/conversation/interface.go
package conversation

import (
	"context"
	"errors"

	"github.com/iyunix/go-lifexia/internal/domain"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidSession       = errors.New("session id is required")
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Repository is the append-only conversation log. A session id maps to
// exactly one conversation, created on first use. Appends to one session are
// serialized; messages of different sessions never interleave.
type Repository interface {
	GetOrCreate(ctx context.Context, userID, sessionID string) (*domain.Conversation, error)
	// Append stores msgs in order as one atomic batch and returns them with
	// sequence numbers and timestamps filled in.
	Append(ctx context.Context, userID, sessionID string, msgs ...domain.Message) ([]domain.Message, error)
	// List returns the session's messages in insertion order; an unknown
	// session yields an empty list.
	List(ctx context.Context, sessionID string) ([]domain.Message, error)
	Get(ctx context.Context, sessionID string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
	Delete(ctx context.Context, id uint) error
	DeleteBySession(ctx context.Context, sessionID string) error
	Close() error
}
