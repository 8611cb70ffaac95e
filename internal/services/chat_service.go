// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	chatservice "github.com/iyunix/go-lifexia/internal/services/chat"
	"github.com/iyunix/go-lifexia/internal/services/engine"
)

const anonymousUser = "anonymous"

// ChatService runs one question through the engine and records the turn.
type ChatService struct {
	config        *chatservice.Config
	engine        *engine.Engine
	conversations *ConversationService
	logger        Logger
	newSessionID  func() string
}

func NewChatService(
	config *chatservice.Config,
	eng *engine.Engine,
	conversations *ConversationService,
	logger Logger,
) (*ChatService, error) {
	if eng == nil {
		return nil, chatservice.NewValidationError("constructor", "engine is required")
	}
	if conversations == nil {
		return nil, chatservice.NewValidationError("constructor", "conversation service is required")
	}
	if err := config.Validate(); err != nil {
		return nil, chatservice.NewValidationError("config", err.Error())
	}

	return &ChatService{
		config:        config,
		engine:        eng,
		conversations: conversations,
		logger:        logger,
		newSessionID:  uuid.NewString,
	}, nil
}

// Ask answers req. A missing session id starts a new session. Failing to
// record the turn is logged but does not lose the answer.
func (s *ChatService) Ask(ctx context.Context, req chatservice.Request) (*chatservice.Reply, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, chatservice.NewValidationError("ask", "message is required")
	}
	if utf8.RuneCountInString(question) > s.config.MaxQuestionRunes {
		return nil, chatservice.NewValidationError("ask", "message is too long")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.newSessionID()
	}
	userID := req.UserID
	if userID == "" {
		userID = anonymousUser
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	history, err := s.conversations.RecentContext(ctx, sessionID)
	if err != nil {
		s.logger.Warn("conversation context unavailable", "session_id", sessionID, "error", err)
		history = ""
	}

	result, err := s.engine.Resolve(ctx, engine.Query{
		Question: question,
		Audience: req.Audience,
		Context:  history,
		Sender:   userID,
	})
	if errors.Is(err, engine.ErrEmptyQuestion) {
		return nil, chatservice.NewValidationError("ask", "message is required")
	}
	if err != nil {
		return nil, err
	}

	reply := &chatservice.Reply{
		Response:  result.Text,
		SessionID: sessionID,
		Branch:    string(result.Branch),
		DrugKey:   result.DrugKey,
		Intent:    string(result.Intent),
		Timestamp: time.Now().UTC(),
	}

	// The turn is recorded even when the request deadline has passed.
	storeCtx, storeCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer storeCancel()
	stored, err := s.conversations.RecordTurn(storeCtx, userID, sessionID, question, result.Text)
	if err != nil {
		s.logger.Error("failed to record turn", "session_id", sessionID, "error", err)
		return reply, nil
	}
	reply.MessageID = uint(stored[len(stored)-1].Seq)
	reply.Timestamp = stored[len(stored)-1].CreatedAt

	s.logger.Info("chat turn answered",
		"session_id", sessionID, "channel", req.Channel, "branch", reply.Branch, "drug", reply.DrugKey)
	return reply, nil
}
