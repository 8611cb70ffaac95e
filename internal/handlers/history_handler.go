// File: internal/handlers/history_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/iyunix/go-lifexia/internal/middleware"
	"github.com/iyunix/go-lifexia/internal/services"
	chatservice "github.com/iyunix/go-lifexia/internal/services/chat"
)

type HistoryHandler struct {
	Conversations *services.ConversationService
	Logger        Logger
}

func NewHistoryHandler(conv *services.ConversationService, logger Logger) *HistoryHandler {
	return &HistoryHandler{Conversations: conv, Logger: logger}
}

// caller returns the token subject, writing 401 when there is none.
func (h *HistoryHandler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Authentication required", http.StatusUnauthorized)
	}
	return userID, ok
}

// UserConversations lists a user's conversations, newest first. Users may
// only list their own.
func (h *HistoryHandler) UserConversations(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	userID := mux.Vars(r)["user_id"]
	if userID != caller {
		h.Logger.Warn("history access denied", "user_id", userID, "caller", caller)
		writeError(w, "Forbidden", http.StatusForbidden)
		return
	}
	summaries, err := h.Conversations.ListByUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("could not list conversations", "user_id", userID, "error", err)
		writeError(w, "Could not retrieve conversations", http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []domain.ConversationSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "conversations": summaries})
}

func (h *HistoryHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	sessionID := mux.Vars(r)["session_id"]
	conv, err := h.Conversations.GetConversation(r.Context(), sessionID)
	if chatservice.IsType(err, chatservice.ErrTypeNotFound) {
		writeError(w, "Conversation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("could not load conversation", "session_id", sessionID, "error", err)
		writeError(w, "Could not retrieve conversation", http.StatusInternalServerError)
		return
	}
	if conv.UserID != caller {
		h.Logger.Warn("conversation access denied", "session_id", sessionID, "caller", caller)
		writeError(w, "Forbidden", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "conversation": conv})
}

// Delete removes one of the caller's conversations. Another user's id is
// reported as not found.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	err = h.Conversations.Delete(r.Context(), caller, uint(id))
	if chatservice.IsType(err, chatservice.ErrTypeNotFound) {
		writeError(w, "Conversation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("could not delete conversation", "id", id, "error", err)
		writeError(w, "Could not delete conversation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Conversation deleted"})
}
