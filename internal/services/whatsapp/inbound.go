// File: internal/services/whatsapp/inbound.go
package whatsapp

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// WebhookPayload is the subset of the Cloud API notification body we read.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Messages         []Message `json:"messages"`
	Statuses         []Status  `json:"statuses"`
}

type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`

	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Button *struct {
		Text    string `json:"text"`
		Payload string `json:"payload"`
	} `json:"button,omitempty"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *reply `json:"button_reply,omitempty"`
		ListReply   *reply `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
	Image *struct {
		Caption string `json:"caption"`
	} `json:"image,omitempty"`
	Location *struct {
		Latitude  json.Number `json:"latitude"`
		Longitude json.Number `json:"longitude"`
	} `json:"location,omitempty"`
}

type reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// Inbound is one user message reduced to the text the assistant answers.
type Inbound struct {
	From string
	ID   string
	Type string
	Text string
}

// Inbound flattens every message in the payload. Messages without a
// sender are skipped; Text is empty for unsupported types.
func (p *WebhookPayload) Inbound() []Inbound {
	var out []Inbound
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if m.From == "" {
					continue
				}
				out = append(out, Inbound{From: m.From, ID: m.ID, Type: m.Type, Text: ExtractText(m)})
			}
		}
	}
	return out
}

// Statuses returns every delivery status update in the payload.
func (p *WebhookPayload) Statuses() []Status {
	var out []Status
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			out = append(out, change.Value.Statuses...)
		}
	}
	return out
}

// ExtractText returns the text a message carries, by message type.
func ExtractText(m Message) string {
	switch m.Type {
	case "text":
		if m.Text != nil {
			return m.Text.Body
		}
	case "button":
		if m.Button != nil {
			return m.Button.Text
		}
	case "interactive":
		if m.Interactive == nil {
			return ""
		}
		switch m.Interactive.Type {
		case "button_reply":
			if m.Interactive.ButtonReply != nil {
				return m.Interactive.ButtonReply.Title
			}
		case "list_reply":
			if m.Interactive.ListReply != nil {
				return m.Interactive.ListReply.Title
			}
		}
	case "image":
		if m.Image != nil && m.Image.Caption != "" {
			return m.Image.Caption
		}
		return "I sent an image"
	case "location":
		if m.Location == nil {
			return ""
		}
		lat, errLat := strconv.ParseFloat(m.Location.Latitude.String(), 64)
		lng, errLng := strconv.ParseFloat(m.Location.Longitude.String(), 64)
		if errLat != nil || errLng != nil || lat == 0 || lng == 0 {
			return ""
		}
		return fmt.Sprintf("hospitals near me (location: %s,%s)", m.Location.Latitude, m.Location.Longitude)
	}
	return ""
}
