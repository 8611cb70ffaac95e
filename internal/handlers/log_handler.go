// File: internal/handlers/log_handler.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// ClientLogPayload is a log event reported by the chat web client.
type ClientLogPayload struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Context   any    `json:"context,omitempty"`
}

func clientLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// LogClientEvent records a browser log line through slog and answers 204.
func LogClientEvent(w http.ResponseWriter, r *http.Request) {
	var payload ClientLogPayload
	if err := decodeJSON(w, r, &payload); err != nil || payload.Message == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	slog.Log(context.Background(), clientLevel(payload.Level), "CLIENT_LOG",
		slog.String("message", payload.Message),
		slog.String("session_id", payload.SessionID),
		slog.Any("context", payload.Context),
	)
	w.WriteHeader(http.StatusNoContent)
}
