// File: internal/services/whatsapp/cloud_provider.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sethvargo/go-retry"
)

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// CloudProvider sends messages through the WhatsApp Business Cloud API.
type CloudProvider struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewCloudProvider(config *Config, logger Logger) *CloudProvider {
	return &CloudProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

func (p *CloudProvider) SendText(ctx context.Context, to, body string) (string, error) {
	if !p.config.Enabled() {
		return "", &WhatsAppError{Type: ErrTypeConfig, Message: "sender is not configured"}
	}
	if to == "" || body == "" {
		return "", &WhatsAppError{Type: ErrTypeValidation, Message: "recipient and body are required"}
	}

	msg := textMessage{MessagingProduct: "whatsapp", RecipientType: "individual", To: to, Type: "text"}
	msg.Text.Body = Truncate(body, MaxMessageRunes)
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", &WhatsAppError{Type: ErrTypeValidation, Message: "invalid payload", Cause: err}
	}

	var messageID string
	backoff := retry.WithMaxRetries(uint64(p.config.MaxRetries), retry.NewExponential(p.config.RetryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		id, err := p.post(ctx, payload)
		if err == nil {
			messageID = id
			return nil
		}
		var waErr *WhatsAppError
		if errors.As(err, &waErr) && waErr.Retryable() {
			p.logger.Warn("whatsapp send failed, retrying", "to", to, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		p.logger.Error("whatsapp send failed", "to", to, "error", err)
		return "", err
	}
	p.logger.Info("whatsapp message sent", "to", to, "message_id", messageID)
	return messageID, nil
}

func (p *CloudProvider) post(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.MessagesURL(), bytes.NewReader(payload))
	if err != nil {
		return "", &WhatsAppError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &WhatsAppError{Type: ErrTypeNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &WhatsAppError{Type: ErrTypeRateLimit, Code: resp.StatusCode, Message: "rate limit exceeded"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &WhatsAppError{Type: ErrTypeProvider, Code: resp.StatusCode, Message: string(raw)}
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &WhatsAppError{Type: ErrTypeProvider, Code: resp.StatusCode, Message: "unreadable response", Cause: err}
	}
	if len(out.Messages) == 0 {
		return "", nil
	}
	return out.Messages[0].ID, nil
}

func (p *CloudProvider) HealthCheck(ctx context.Context) error {
	if !p.config.Enabled() {
		return &WhatsAppError{Type: ErrTypeConfig, Message: "sender is not configured"}
	}
	return nil
}
