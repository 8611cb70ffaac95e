// File: internal/services/whatsapp/config.go
package whatsapp

import (
	"fmt"
	"time"
)

type Config struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	// AppSecret enables X-Hub-Signature-256 checks on inbound webhooks.
	AppSecret string

	BaseURL    string
	APIVersion string

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Window is how long after a user's last message free-form replies are allowed.
	Window time.Duration
	// DedupeTTL is how long an inbound message id is remembered.
	DedupeTTL time.Duration
}

// Enabled reports whether outbound sending is configured.
func (c *Config) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("WHATSAPP_ACCESS_TOKEN is required")
	}
	if c.PhoneNumberID == "" {
		return fmt.Errorf("WHATSAPP_PHONE_NUMBER_ID is required")
	}
	if c.VerifyToken == "" {
		return fmt.Errorf("WHATSAPP_VERIFY_TOKEN is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Window <= 0 {
		return fmt.Errorf("send window must be positive")
	}
	if c.DedupeTTL <= 0 {
		return fmt.Errorf("dedupe ttl must be positive")
	}
	return nil
}

// MessagesURL is the Cloud API endpoint for outbound messages.
func (c *Config) MessagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", c.BaseURL, c.APIVersion, c.PhoneNumberID)
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://graph.facebook.com",
		APIVersion: "v21.0",
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		Window:     24 * time.Hour,
		DedupeTTL:  24 * time.Hour,
	}
}
