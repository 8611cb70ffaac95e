// File: internal/domain/conversation.go
package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is the ordered message log of one chat session.
type Conversation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	SessionID string    `gorm:"uniqueIndex;not null" json:"session_id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// Message is a single turn. Seq numbers the turns of one conversation from 1
// and is the message id clients see. ID is the SQL row id and stays zero in
// the memory and redis stores.
type Message struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	ConversationID uint      `gorm:"index;not null" json:"-"`
	Seq            int       `gorm:"not null" json:"-"`
	Role           string    `gorm:"not null" json:"role"`
	Content        string    `gorm:"not null" json:"content"`
	CreatedAt      time.Time `json:"timestamp"`
}

// ConversationSummary is the history-list view of a conversation.
type ConversationSummary struct {
	ID          uint      `json:"id"`
	SessionID   string    `json:"session_id"`
	Title       string    `json:"title"`
	LastMessage string    `json:"last_message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summarize builds the history-list entry from a conversation and its messages.
func Summarize(conv Conversation, messages []Message) ConversationSummary {
	summary := ConversationSummary{
		ID:          conv.ID,
		SessionID:   conv.SessionID,
		Title:       "Untitled Chat",
		LastMessage: "No messages",
		CreatedAt:   conv.CreatedAt,
	}
	if len(messages) > 0 {
		summary.Title = truncateRunes(messages[0].Content, 40)
		summary.LastMessage = messages[len(messages)-1].Content
	}
	return summary
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
