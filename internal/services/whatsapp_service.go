// File: internal/services/whatsapp_service.go
package services

import (
	"context"
	"errors"

	"github.com/iyunix/go-lifexia/internal/domain"
	chatservice "github.com/iyunix/go-lifexia/internal/services/chat"
	"github.com/iyunix/go-lifexia/internal/services/whatsapp"
)

var ErrWebhookVerification = errors.New("webhook verification failed")

// WhatsAppSessionPrefix namespaces WhatsApp conversations in the shared store.
const WhatsAppSessionPrefix = "whatsapp:"

// WhatsAppService answers inbound WhatsApp messages through the chat flow.
type WhatsAppService struct {
	config *whatsapp.Config
	chat   *ChatService
	sender whatsapp.Sender
	window whatsapp.WindowTracker
	seen   whatsapp.Deduper
	logger Logger
}

// NewWhatsAppService accepts a nil sender; replies are then recorded but not delivered.
func NewWhatsAppService(
	config *whatsapp.Config,
	chat *ChatService,
	sender whatsapp.Sender,
	window whatsapp.WindowTracker,
	seen whatsapp.Deduper,
	logger Logger,
) *WhatsAppService {
	return &WhatsAppService{config: config, chat: chat, sender: sender, window: window, seen: seen, logger: logger}
}

// Verify answers Meta's subscription handshake and returns the challenge.
func (s *WhatsAppService) Verify(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || s.config.VerifyToken == "" || token != s.config.VerifyToken {
		s.logger.Warn("webhook verification failed", "mode", mode)
		return "", ErrWebhookVerification
	}
	s.logger.Info("webhook verified")
	return challenge, nil
}

// CheckSignature validates the raw body when an app secret is configured.
func (s *WhatsAppService) CheckSignature(body []byte, header string) bool {
	if s.config.AppSecret == "" {
		return true
	}
	return whatsapp.VerifySignature(s.config.AppSecret, body, header)
}

// Handle answers one inbound message. Messages without text only refresh
// the sender's window; a message id already handled is skipped.
func (s *WhatsAppService) Handle(ctx context.Context, in whatsapp.Inbound) error {
	if !s.firstDelivery(ctx, in) {
		s.logger.Debug("skipping redelivered message", "from", in.From, "id", in.ID)
		return nil
	}
	if err := s.window.Record(ctx, in.From); err != nil {
		s.logger.Warn("failed to record send window", "from", in.From, "error", err)
	}
	if in.Text == "" {
		s.logger.Debug("ignoring message without text", "from", in.From, "type", in.Type)
		return nil
	}

	reply, err := s.chat.Ask(ctx, chatservice.Request{
		Message:   in.Text,
		Audience:  domain.AudienceGeneralPublic,
		SessionID: WhatsAppSessionPrefix + in.From,
		UserID:    in.From,
		Channel:   "whatsapp",
	})
	if err != nil {
		return err
	}

	if s.sender == nil {
		s.logger.Warn("whatsapp sender not configured, reply not delivered", "from", in.From)
		return nil
	}
	text := whatsapp.Truncate(whatsapp.CleanForWhatsApp(reply.Response), whatsapp.MaxMessageRunes)
	_, err = s.sender.SendText(ctx, in.From, text)
	return err
}

// firstDelivery fails open: when the seen set is unreachable the message is answered.
func (s *WhatsAppService) firstDelivery(ctx context.Context, in whatsapp.Inbound) bool {
	if s.seen == nil || in.ID == "" {
		return true
	}
	first, err := s.seen.FirstSeen(ctx, in.ID)
	if err != nil {
		s.logger.Warn("failed to check message id", "id", in.ID, "error", err)
		return true
	}
	return first
}

// SendText delivers an operator message. It does not consult the window;
// the Cloud API rejects out-of-window free-form messages itself.
func (s *WhatsAppService) SendText(ctx context.Context, to, message string) (string, error) {
	if s.sender == nil {
		return "", &whatsapp.WhatsAppError{Type: whatsapp.ErrTypeConfig, Message: "sender is not configured"}
	}
	return s.sender.SendText(ctx, to, whatsapp.Truncate(message, whatsapp.MaxMessageRunes))
}

func (s *WhatsAppService) SessionStatus(ctx context.Context, number string) (whatsapp.WindowStatus, error) {
	return s.window.Status(ctx, number)
}
