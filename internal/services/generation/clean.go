// File: internal/services/generation/clean.go
package generation

import "strings"

// CleanOutput strips chat-template artefacts from raw model output.
// ok is false when nothing usable remains.
func CleanOutput(raw string) (string, bool) {
	out := raw
	if i := strings.LastIndex(out, assistantMarker); i >= 0 {
		out = out[i+len(assistantMarker):]
	}
	out = strings.ReplaceAll(out, markerEnd, "")
	out = strings.TrimSpace(out)

	if out == "" || strings.Contains(out, markerStart) {
		return "", false
	}
	return out, true
}
