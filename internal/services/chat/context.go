// File: internal/services/chat/context.go
package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-lifexia/internal/domain"
)

// TruncateText safely truncates a UTF-8 string to maxLen runes
func TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

// CleanWhitespace collapses runs of whitespace into single spaces.
func CleanWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// BuildContext renders the last n messages as "User: ..." and
// "Assistant: ..." lines, each cut to maxRunes.
func BuildContext(messages []domain.Message, n, maxRunes int) string {
	if n <= 0 || len(messages) == 0 {
		return ""
	}
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		label := "User"
		if m.Role == domain.RoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, label+": "+TruncateText(CleanWhitespace(m.Content), maxRunes))
	}
	return strings.Join(lines, "\n")
}
