// File: internal/services/generation/prompt.go
package generation

import (
	"strings"
	"unicode/utf8"
)

const (
	markerStart     = "<|im_start|>"
	markerEnd       = "<|im_end|>"
	assistantMarker = markerStart + "assistant"
)

const systemInstruction = `You are LIFEXIA, a careful medication information assistant for the public and for clinical students.
- Answer only from well-established pharmacological knowledge and the reference context provided.
- Never invent drug names, doses, or interactions. If you are not certain, say so plainly.
- Always recommend consulting a doctor or pharmacist before starting, stopping or changing any medicine.
- For emergencies tell the user to call 108 immediately.
- Reply in concise Markdown.`

// BuildPrompt assembles a chat-template prompt. Empty context sections are omitted.
func BuildPrompt(question, conversation string, passages []string, maxContextRunes int) string {
	var b strings.Builder

	b.WriteString(markerStart + "system\n")
	b.WriteString(systemInstruction)
	b.WriteString("\n" + markerEnd + "\n")

	b.WriteString(markerStart + "user\n")
	if conv := strings.TrimSpace(conversation); conv != "" {
		b.WriteString("# Conversation so far\n")
		b.WriteString(truncateRunes(sanitize(conv), maxContextRunes))
		b.WriteString("\n\n")
	}
	var cleaned []string
	for _, p := range passages {
		if p = sanitize(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) > 0 {
		b.WriteString("# Reference context\n")
		b.WriteString(truncateRunes(strings.Join(cleaned, "\n\n"), maxContextRunes))
		b.WriteString("\n\n")
	}
	b.WriteString("# Question\n")
	b.WriteString(sanitize(question))
	b.WriteString("\n" + markerEnd + "\n")
	b.WriteString(assistantMarker + "\n")
	return b.String()
}

// sanitize strips template markers from any text placed inside the user turn.
// Stored turns and retrieved passages are as untrusted as the question.
func sanitize(s string) string {
	for strings.Contains(s, markerStart) || strings.Contains(s, markerEnd) {
		s = strings.ReplaceAll(s, markerStart, "")
		s = strings.ReplaceAll(s, markerEnd, "")
	}
	return strings.TrimSpace(s)
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
