package chat

import (
	"errors"
	"strings"
	"testing"

	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"", 5, ""},
		{"hello", 0, ""},
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"नमस्ते", 2, "नम"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateText(tt.in, tt.max))
	}
}

func TestBuildContext(t *testing.T) {
	msgs := []domain.Message{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "reply one"},
		{Role: domain.RoleUser, Content: "second\n\nquestion"},
		{Role: domain.RoleAssistant, Content: strings.Repeat("x", 300)},
	}

	got := BuildContext(msgs, 3, 200)
	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Assistant: reply one", lines[0])
	assert.Equal(t, "User: second question", lines[1])
	assert.Equal(t, "Assistant: "+strings.Repeat("x", 200), lines[2])

	assert.Empty(t, BuildContext(msgs, 0, 200))
	assert.Empty(t, BuildContext(nil, 5, 200))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.ContextMessages)

	cfg.ContextMessageRunes = 0
	assert.Error(t, cfg.Validate())
}

func TestChatError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStoreError("append", "s1", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(err, ErrTypeStore))
	assert.False(t, IsType(err, ErrTypeValidation))
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, IsType(cause, ErrTypeStore))
}
