// File: internal/handlers/chat_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iyunix/go-lifexia/internal/domain"
	"github.com/iyunix/go-lifexia/internal/formatter"
	"github.com/iyunix/go-lifexia/internal/middleware"
	"github.com/iyunix/go-lifexia/internal/services"
	chatservice "github.com/iyunix/go-lifexia/internal/services/chat"
)

type ChatHandler struct {
	Chat          *services.ChatService
	Drugs         *services.DrugService
	Conversations *services.ConversationService
	Logger        Logger
}

func NewChatHandler(cs *services.ChatService, ds *services.DrugService, conv *services.ConversationService, logger Logger) *ChatHandler {
	return &ChatHandler{Chat: cs, Drugs: ds, Conversations: conv, Logger: logger}
}

type queryRequest struct {
	Message   string `json:"message"`
	UserType  string `json:"user_type"`
	Audience  string `json:"audience"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type queryResponse struct {
	Success   bool      `json:"success"`
	Response  string    `json:"response"`
	HTML      string    `json:"response_html,omitempty"`
	SessionID string    `json:"session_id"`
	Branch    string    `json:"branch"`
	DrugKey   string    `json:"drug_key,omitempty"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	MessageID uint      `json:"message_id"`
}

// Query answers one chat message. ?render=html adds an HTML rendering of
// the markdown response.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	audience := req.UserType
	if audience == "" {
		audience = req.Audience
	}
	userID := req.UserID
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		userID = id
	}

	reply, err := h.Chat.Ask(r.Context(), chatservice.Request{
		Message:   req.Message,
		Audience:  domain.ParseAudience(audience),
		SessionID: req.SessionID,
		UserID:    userID,
		Channel:   "web",
	})
	if err != nil {
		var chatErr *chatservice.ChatError
		if errors.As(err, &chatErr) && chatErr.Type == chatservice.ErrTypeValidation {
			writeError(w, chatErr.Message, http.StatusBadRequest)
			return
		}
		h.Logger.Error("chat query failed", "session_id", req.SessionID, "error", err)
		writeError(w, "Could not process your question", http.StatusInternalServerError)
		return
	}

	resp := queryResponse{
		Success:   true,
		Response:  reply.Response,
		SessionID: reply.SessionID,
		Branch:    reply.Branch,
		DrugKey:   reply.DrugKey,
		Intent:    reply.Intent,
		Timestamp: reply.Timestamp,
		MessageID: reply.MessageID,
	}
	if r.URL.Query().Get("render") == "html" {
		html, err := formatter.ToHTML(reply.Response)
		if err != nil {
			h.Logger.Warn("html rendering failed", "error", err)
		} else {
			resp.HTML = html
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// DrugSearch looks a drug name up directly in the catalog.
func (h *ChatHandler) DrugSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DrugName string `json:"drug_name"`
		UserType string `json:"user_type"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.DrugName)
	if name == "" {
		writeError(w, "drug_name is required", http.StatusBadRequest)
		return
	}

	res := h.Drugs.Search(name, domain.ParseAudience(req.UserType))
	if !res.Found {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"found":   false,
			"message": fmt.Sprintf("No information found for %q. Please check the spelling or try a different drug name.", name),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":            true,
		"found":              true,
		"drug_info":          res.Drug,
		"match_stage":        string(res.Stage),
		"formatted_response": res.Response,
	})
}

func (h *ChatHandler) EmergencyDrugs(w http.ResponseWriter, r *http.Request) {
	catalog := h.Drugs.EmergencyDrugs()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"emergency_drugs": catalog.Drugs,
		"categories":      catalog.Categories,
		"count":           len(catalog.Drugs),
	})
}

func (h *ChatHandler) QuickInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Drugs.QuickInfo(mux.Vars(r)["drug"])
	if err != nil {
		writeError(w, "Drug not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "drug": info})
}

// History returns the messages of ?session_id= in insertion order.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, "session_id is required", http.StatusBadRequest)
		return
	}
	msgs, err := h.Conversations.History(r.Context(), sessionID)
	if err != nil {
		h.Logger.Error("history lookup failed", "session_id", sessionID, "error", err)
		writeError(w, "Could not retrieve history", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"session_id": sessionID,
		"history":    msgs,
	})
}

func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.SessionID == "" {
		writeError(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if err := h.Conversations.ClearHistory(r.Context(), req.SessionID); err != nil {
		h.Logger.Error("clear history failed", "session_id", req.SessionID, "error", err)
		writeError(w, "Could not clear history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Conversation history cleared"})
}

// Feedback records a 1-5 rating of an answer in the service log.
func (h *ChatHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID uint   `json:"message_id"`
		SessionID string `json:"session_id"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}
	h.Logger.Info("feedback received",
		"message_id", req.MessageID,
		"session_id", req.SessionID,
		"rating", req.Rating,
		"comment", req.Comment,
	)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Thank you for your feedback!"})
}
