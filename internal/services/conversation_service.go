// File: internal/services/conversation_service.go
package services

import (
	"context"
	"errors"

	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/iyunix/go-lifexia/internal/repository/conversation"
	chatservice "github.com/iyunix/go-lifexia/internal/services/chat"
)

// ConversationService is the channel-facing view of the conversation store.
type ConversationService struct {
	repo   conversation.Repository
	config *chatservice.Config
	logger Logger
}

func NewConversationService(repo conversation.Repository, config *chatservice.Config, logger Logger) *ConversationService {
	return &ConversationService{repo: repo, config: config, logger: logger}
}

// RecentContext renders the session's last messages for the generative fallback.
func (s *ConversationService) RecentContext(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" || s.config.ContextMessages == 0 {
		return "", nil
	}
	msgs, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return "", chatservice.NewStoreError("recent_context", sessionID, err)
	}
	return chatservice.BuildContext(msgs, s.config.ContextMessages, s.config.ContextMessageRunes), nil
}

// RecordTurn appends a question and its answer as one batch, so no other
// writer can land between them.
func (s *ConversationService) RecordTurn(ctx context.Context, userID, sessionID, question, answer string) ([]domain.Message, error) {
	stored, err := s.repo.Append(ctx, userID, sessionID,
		domain.Message{Role: domain.RoleUser, Content: question},
		domain.Message{Role: domain.RoleAssistant, Content: answer},
	)
	if err != nil {
		return nil, chatservice.NewStoreError("record_turn", sessionID, err)
	}
	return stored, nil
}

func (s *ConversationService) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	msgs, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, chatservice.NewStoreError("history", sessionID, err)
	}
	return msgs, nil
}

// ClearHistory deletes the session's conversation. Clearing an unknown
// session succeeds.
func (s *ConversationService) ClearHistory(ctx context.Context, sessionID string) error {
	err := s.repo.DeleteBySession(ctx, sessionID)
	if err == nil || errors.Is(err, conversation.ErrConversationNotFound) {
		return nil
	}
	return chatservice.NewStoreError("clear_history", sessionID, err)
}

func (s *ConversationService) GetConversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	conv, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, conversation.ErrConversationNotFound) {
		return nil, chatservice.NewNotFoundError("get_conversation", sessionID)
	}
	if err != nil {
		return nil, chatservice.NewStoreError("get_conversation", sessionID, err)
	}
	return conv, nil
}

func (s *ConversationService) ListByUser(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	summaries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, chatservice.NewStoreError("list_by_user", "", err)
	}
	return summaries, nil
}

// Delete removes conversation id when it belongs to userID. A conversation
// owned by someone else is reported as not found.
func (s *ConversationService) Delete(ctx context.Context, userID string, id uint) error {
	summaries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return chatservice.NewStoreError("delete", "", err)
	}
	owned := false
	for _, c := range summaries {
		if c.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		return chatservice.NewNotFoundError("delete", "")
	}

	err = s.repo.Delete(ctx, id)
	if errors.Is(err, conversation.ErrConversationNotFound) {
		return chatservice.NewNotFoundError("delete", "")
	}
	if err != nil {
		return chatservice.NewStoreError("delete", "", err)
	}
	s.logger.Info("conversation deleted", "id", id)
	return nil
}
