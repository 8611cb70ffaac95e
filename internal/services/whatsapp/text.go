// File: internal/services/whatsapp/text.go
package whatsapp

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageRunes is the Cloud API limit for a text body.
const MaxMessageRunes = 4096

var whatsappMarkup = strings.NewReplacer(
	"##", "",
	"**", "*",
	"---", strings.Repeat("─", 20),
)

// CleanForWhatsApp rewrites markdown into WhatsApp's formatting dialect.
func CleanForWhatsApp(text string) string {
	return strings.TrimSpace(whatsappMarkup.Replace(text))
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
